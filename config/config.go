// Package config holds sleppa's configuration: general behavior flags,
// the release-rule grammar, and terminal IO.
package config

import (
	"errors"
	"fmt"

	"github.com/imdario/mergo"
)

type Config struct {
	Debug         bool       `json:"debug,omitempty"`
	Dryrun        bool       `json:"dryrun,omitempty"`
	Quiet         bool       `json:"quiet,omitempty"`
	InCI          bool       `json:"ci,omitempty"`
	Branches      []string   `json:"branches,omitempty"`
	RepoURL       string     `json:"repo_url,omitempty"`
	ChangelogPath string     `json:"changelog,omitempty"`
	TagTemplate   string     `json:"tag_template,omitempty"`
	Rules         []Rule     `json:"release_rules,omitempty"`
	Term          TerminalIO `json:"-"`
}

func New(overrides *Config) Config {
	return NewWithTerminalIO(overrides, nil)
}

func NewWithTerminalIO(overrides *Config, termio *TerminalIO) Config {
	cfg := GetDefault()
	if termio == nil {
		termio = &DefaultTermIO
	}
	cfg.Term = *termio

	if overrides != nil {
		if err := mergo.Merge(&cfg, overrides, mergo.WithOverride); err != nil {
			panic(err)
		}
	}
	return cfg
}

func (c Config) Validate() error {
	if len(c.Rules) == 0 {
		return errors.New("config: at least one release rule is required")
	}
	for i, rule := range c.Rules {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("config: release rule %d: %w", i, err)
		}
	}
	return nil
}

func (c Config) Printf(msg string, args ...interface{}) {
	if c.Quiet {
		return
	}
	fmt.Fprintf(c.Term.Stdout, msg+"\n", args...)
}

func (c Config) Errorf(msg string, args ...interface{}) {
	fmt.Fprintf(c.Term.Stderr, msg+"\n", args...)
}

func (c Config) Debugf(msg string, args ...interface{}) {
	if !c.Debug {
		return
	}
	c.Printf(msg, args...)
}
