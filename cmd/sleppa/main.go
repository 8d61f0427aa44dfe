package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	"github.com/imdario/mergo"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/SofairOfficial/sleppa/config"
	"github.com/SofairOfficial/sleppa/runner"
	"github.com/SofairOfficial/sleppa/vcs"
	"github.com/SofairOfficial/sleppa/vcs/gitcli"
	"github.com/SofairOfficial/sleppa/vcs/github"
	"github.com/SofairOfficial/sleppa/vcs/gitsrc"
)

var (
	// overridden by go build -X
	Version string
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(rawArgs []string) error {
	cfg := config.New(nil)

	var help bool
	var version bool
	var cfgFile string
	var githubRepo string
	var checkCommits []string
	var checkCommitsFromGit bool
	var readStats bool
	var printConfig bool
	var printLatest bool
	flags := pflag.NewFlagSet("sleppa", pflag.ExitOnError)
	flags.BoolVarP(&help, "help", "h", false, "show help")
	flags.BoolVarP(&version, "version", "V", false, "print version and exit")
	flags.BoolVarP(&cfg.Dryrun, "dry-run", "n", false, "Don't do destructive operations")
	flags.BoolVar(&cfg.InCI, "ci", false, "Run in CI mode")
	flags.BoolVarP(&readStats, "stats", "S", false, "print classification stats for the release window")
	flags.StringVar(&githubRepo, "github", "", "read the window from a GitHub `owner/repo` instead of the local checkout")
	flags.StringVar(&cfg.RepoURL, "repo-url", "", "repository `url` used for changelog links")
	flags.StringVar(&cfg.ChangelogPath, "changelog", "", "changelog `file` to merge the release section into")
	flags.StringVar(&cfg.TagTemplate, "template", "", "go text/template for tag `format`")
	flags.StringArrayVarP(&cfg.Branches, "branch", "b", []string{"main", "master"}, "set release branch to `name`")
	flags.StringArrayVar(&checkCommits, "check-commit", nil, "only validate provided commit `body`")
	flags.BoolVarP(&checkCommitsFromGit, "check", "C", false, "only validate commits since last release")
	flags.BoolVarP(&cfg.Debug, "verbose", "v", false, "print additional debugging info")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "print as little as necessary")
	flags.StringVarP(&cfgFile, "config", "c", "", "specify config `file`")
	flags.BoolVar(&printConfig, "print-config", false, "Print configuration and exit")
	flags.BoolVar(&printLatest, "latest", false, "Print latest version and exit")

	if err := flags.Parse(rawArgs); err != nil {
		return err
	}

	if help {
		usage(cfg, flags)
		return nil
	}
	if version {
		cfg.Printf("%s", Version)
		return nil
	}
	if !cfg.InCI {
		if env := os.Getenv("CI"); env == "true" || env == "1" || env == "yes" {
			cfg.InCI = true
		}
	}

	sleppaYAML, err := readSleppaYAML(cfgFile)
	if err != nil {
		return err
	}
	if sleppaYAML != nil {
		if err := mergo.Merge(&cfg, sleppaYAML, mergo.WithOverride); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if printConfig {
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		cfg.Printf("%s", string(b))
		return nil
	}
	// done setting up config

	var src vcs.Source
	var pub vcs.Publisher
	if githubRepo != "" {
		ghub, err := github.New(cfg, githubRepo)
		if err != nil {
			return err
		}
		src = ghub
	} else {
		local, err := gitsrc.Open(cfg, ".")
		if err != nil {
			return err
		}
		src = local
		pub = gitcli.New(cfg, "")
	}

	rnr, err := runner.New(cfg, src, pub)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if readStats {
		stats, err := rnr.Stats(ctx)
		if err != nil {
			return err
		}
		return stats.TextSummary(cfg.Term.Stdout)
	}

	shouldCheckCommits := checkCommitsFromGit || flags.Lookup("check-commit").Changed
	if shouldCheckCommits {
		hasPipe := !isatty.IsTerminal(os.Stdin.Fd())
		var err error
		if checkCommitsFromGit {
			_, err = rnr.CheckCommitsFromGit(ctx)
		} else if hasPipe && len(checkCommits) == 1 && checkCommits[0] == "-" {
			_, err = rnr.CheckReadCommits(ctx, os.Stdin)
		} else {
			_, err = rnr.CheckCommitSubjects(ctx, checkCommits)
		}
		if err != nil {
			cf := runner.CheckFailure{}
			if errors.As(err, &cf) {
				if err := cf.WriteFailure(os.Stdout); err != nil {
					fmt.Fprintln(os.Stderr, "failed to write invalid commit information:", err)
				}
			}
			return err
		}
		cfg.Printf("OK")
		return nil
	}

	stdoutfd := os.Stdout.Fd()
	istty := isatty.IsTerminal(stdoutfd)

	if printLatest {
		latest, err := rnr.LatestRelease(ctx)
		if err != nil {
			return err
		}
		if cfg.Quiet || !istty {
			fmt.Fprintf(cfg.Term.Stdout, "%s", latest)
		} else {
			fmt.Fprintln(cfg.Term.Stdout, latest)
		}
		return nil
	}

	if err := rnr.Check(ctx); err != nil {
		return err
	}
	_, err = rnr.Run(ctx)
	return err
}

func usage(cfg config.Config, flags *pflag.FlagSet) {
	cfg.Printf(`%s

Decides whether a squash-and-merge repository is due for a release,
bumps the semantic version, and writes the changelog.

FLAGS
%s

EXAMPLES

# evaluate the window, write the changelog, commit and tag
$ sleppa

# see what would happen
$ sleppa --dry-run

# evaluate a GitHub repository's window
$ sleppa --github myorg/myrepo

# validate commit messages against the release rules
$ sleppa --check
`, os.Args[0], flags.FlagUsages())
}

func readSleppaYAML(p string) (*config.Config, error) {
	if p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		cfg := &config.Config{}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	for {
		candPath := filepath.Join(wd, "sleppa.yaml")
		b, err := os.ReadFile(candPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				wd, _ = filepath.Split(filepath.Clean(wd))
				if wd == "/" {
					break
				}
				continue
			}
			return nil, err
		}

		cfg := &config.Config{}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return nil, nil
}
