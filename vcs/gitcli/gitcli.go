// Package gitcli implements vcs.Publisher using the git commandline
// tool: committing the changelog, creating the release tag, and pushing
// them back.
package gitcli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/SofairOfficial/sleppa/config"
	"github.com/SofairOfficial/sleppa/vcs"
)

// Git implements vcs.Publisher using the git commandline tool.
type Git struct {
	cfg config.Config
	wd  string
}

func New(cfg config.Config, wd string) *Git {
	return &Git{
		cfg: cfg,
		wd:  wd,
	}
}

func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	b, err := g.call(ctx, []string{"rev-parse", "--abbrev-ref", "HEAD"})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// CommitFile stages one file and commits it, e.g. the changelog with a
// "Release v1.2.3" message.
func (g *Git) CommitFile(ctx context.Context, path, message string) error {
	if message == "" {
		return errors.New("gitcli: message is required")
	}
	if g.cfg.InCI {
		if err := g.ensureAuthor(ctx); err != nil {
			return err
		}
	}

	addArgs := []string{"add", path}
	commitArgs := []string{"commit", "-m", message}
	if g.cfg.Dryrun {
		g.cfg.Printf("+ git %s (dryrun)", ArgsString(addArgs))
		g.cfg.Printf("+ git %s (dryrun)", ArgsString(commitArgs))
		return nil
	}
	if _, err := g.call(ctx, addArgs); err != nil {
		return err
	}
	_, err := g.call(ctx, commitArgs)
	return err
}

func (g *Git) CreateTag(ctx context.Context, commit, tag string, opts vcs.TagOpts) error {
	if opts.Message == "" {
		return errors.New("gitcli: message is required")
	}
	if g.cfg.InCI {
		if err := g.ensureAuthor(ctx); err != nil {
			return err
		}
	}

	args := []string{"tag", "-a", tag}
	if commit != "" {
		args = append(args, commit)
	}
	args = append(args, "-m", opts.Message)

	if g.cfg.Dryrun {
		g.cfg.Printf("+ git %s (dryrun)", ArgsString(args))
		return nil
	}
	_, err := g.call(ctx, args)
	return err
}

func (g *Git) Push(ctx context.Context, upstream, ref string, opts vcs.PushOpts) error {
	args := []string{"push"}
	if opts.FollowTags {
		args = append(args, "--follow-tags")
	}
	if opts.Tags {
		args = append(args, "--tags")
	}
	if upstream == "" {
		upstream = "origin"
	}
	args = append(args, upstream, ref)

	if g.cfg.Dryrun {
		g.cfg.Printf("+ git %s (dryrun)", ArgsString(args))
		return nil
	}
	_, err := g.call(ctx, args)
	return err
}

// ensureAuthor sets a committer identity in CI, where none is
// configured.
func (g *Git) ensureAuthor(ctx context.Context) error {
	if _, err := g.call(ctx, []string{"config", "user.name"}); err == nil {
		return nil
	}
	author := "sleppa"
	email := os.Getenv("GIT_COMMITTER_EMAIL")
	if email == "" {
		email = "sleppa-release@example.com"
	}
	return g.setAuthor(ctx, author, email)
}

func (g *Git) setAuthor(ctx context.Context, author, email string) error {
	userArgs := []string{"config", "user.name", author}
	emailArgs := []string{"config", "user.email", email}
	if g.cfg.Dryrun {
		g.cfg.Printf("+ git %s (dryrun)", ArgsString(userArgs))
		g.cfg.Printf("+ git %s (dryrun)", ArgsString(emailArgs))
		return nil
	}
	if _, err := g.call(ctx, userArgs); err != nil {
		return err
	}
	if _, err := g.call(ctx, emailArgs); err != nil {
		return err
	}
	return nil
}
