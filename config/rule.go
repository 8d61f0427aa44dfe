package config

import (
	"errors"
	"fmt"
	"regexp"
)

// Rule maps a commit message pattern to a release type and a changelog
// category. Rules are evaluated in the order they are configured: the
// first match wins, so specific patterns must come before general ones.
type Rule struct {
	Pattern     string `json:"pattern"`
	ReleaseType string `json:"release_type"`
	Category    string `json:"category,omitempty"`
}

var validReleaseTypes = []string{"NONE", "PATCH", "MINOR", "MAJOR"}

func (r Rule) Validate() error {
	if r.Pattern == "" {
		return errors.New("pattern is required")
	}
	if _, err := regexp.Compile(r.Pattern); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", r.Pattern, err)
	}
	if !oneOf(r.ReleaseType, validReleaseTypes) {
		return fmt.Errorf("invalid release type %q (must be one of NONE, PATCH, MINOR, MAJOR)", r.ReleaseType)
	}
	return nil
}

func oneOf(s string, l []string) bool {
	for _, cand := range l {
		if s == cand {
			return true
		}
	}
	return false
}
