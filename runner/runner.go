// Package runner manages command-line execution.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/SofairOfficial/sleppa/changelog"
	"github.com/SofairOfficial/sleppa/commit"
	"github.com/SofairOfficial/sleppa/config"
	"github.com/SofairOfficial/sleppa/vcs"
)

type Runner struct {
	cfg      config.Config
	src      vcs.Source
	pub      vcs.Publisher
	analyzer *commit.Analyzer
	grammar  *commit.Grammar
	tag      *commit.Tag
	now      func() time.Time
}

// New builds a Runner. The grammar is compiled here, once: a broken
// rule pattern fails startup instead of a commit classification later.
// pub may be nil when the invocation can't write back (remote sources).
func New(cfg config.Config, src vcs.Source, pub vcs.Publisher) (*Runner, error) {
	grammar, err := commit.NewGrammar(cfg.Rules)
	if err != nil {
		return nil, err
	}
	tag, err := commit.NewTag(cfg.TagTemplate)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:      cfg,
		src:      src,
		pub:      pub,
		grammar:  grammar,
		tag:      tag,
		analyzer: commit.NewAnalyzer(cfg, src, grammar),
		now:      time.Now,
	}, nil
}

// Check verifies the working copy is on a release branch. Dry runs are
// allowed anywhere.
func (r *Runner) Check(ctx context.Context) error {
	if r.pub == nil || len(r.cfg.Branches) == 0 {
		return nil
	}
	currBranch, err := r.pub.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if !inStrs(currBranch, r.cfg.Branches) && !r.cfg.Dryrun {
		return fmt.Errorf("runner: must run on one of branches %v, not %q", r.cfg.Branches, currBranch)
	}
	return nil
}

func (r *Runner) Analyze(ctx context.Context) (*commit.Version, error) {
	return r.analyzer.Analyze(ctx)
}

// Run evaluates the release window end to end: decide, bump, write the
// changelog, and, unless this is a dry run, commit and tag the release.
// Tags are pushed in CI mode only. A nil version with nil error means
// no release was due.
func (r *Runner) Run(ctx context.Context) (*commit.Version, error) {
	ver, err := r.analyzer.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	if ver == nil {
		r.cfg.Printf("no release due")
		return nil, nil
	}

	tag, err := RenderTag(r.cfg, r.tag, ver)
	if err != nil {
		return nil, err
	}
	r.cfg.Printf("-> %s:%s", ver.ShortCommit(), tag)

	if err := r.writeChangelog(ver, tag); err != nil {
		return nil, err
	}
	if r.cfg.Dryrun {
		return ver, nil
	}
	if err := r.publish(ctx, ver, tag); err != nil {
		return ver, err
	}
	return ver, nil
}

func (r *Runner) writeChangelog(ver *commit.Version, tag string) error {
	prevTag := ver.PrevTag
	section := changelog.Synthesize(tag, prevTag, r.cfg.RepoURL, ver.Version, r.now().UTC(), ver.AllCommits, r.grammar.Categories())

	path := r.cfg.ChangelogPath
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	merged, err := changelog.Merge(existing, section)
	if err != nil {
		return err
	}
	if bytes.Equal(merged, existing) {
		r.cfg.Printf("changelog already contains %s", tag)
		return nil
	}
	if r.cfg.Dryrun {
		r.cfg.Printf("would write %s:\n\n%s", path, section.Bytes())
		return nil
	}
	return os.WriteFile(path, merged, 0644)
}

func (r *Runner) publish(ctx context.Context, ver *commit.Version, tag string) error {
	if r.pub == nil {
		return nil
	}
	msg := fmt.Sprintf("Release %s", tag)
	if err := r.pub.CommitFile(ctx, r.cfg.ChangelogPath, msg); err != nil {
		return err
	}

	b := &bytes.Buffer{}
	if err := r.shortlog(b, ver); err != nil {
		return err
	}
	shortlog := b.String()
	r.cfg.Debugf("shortlog:\n\n---\n%s", shortlog)

	r.cfg.Printf("creating tag %q for commit %s...", tag, ver.ShortCommit())
	if err := r.pub.CreateTag(ctx, "", tag, vcs.TagOpts{Message: shortlog}); err != nil {
		return err
	}

	if r.cfg.InCI {
		r.cfg.Printf("Pushing in CI mode...")
		branch, err := r.pub.CurrentBranch(ctx)
		if err != nil {
			return err
		}
		if err := r.pub.Push(ctx, "origin", branch, vcs.PushOpts{FollowTags: true}); err != nil {
			return err
		}
	}
	return nil
}

// LatestRelease returns the latest released tag name.
func (r *Runner) LatestRelease(ctx context.Context) (string, error) {
	tag, _, err := r.analyzer.LatestRelease(ctx)
	if err != nil {
		return "", err
	}
	if tag.Name == "" {
		return "", vcs.NotFoundError{Ref: "tags"}
	}
	return tag.Name, nil
}

func RenderTag(cfg config.Config, t *commit.Tag, ver *commit.Version) (string, error) {
	return t.ExecuteString(commit.TagData{Version: ver})
}

func inStrs(s string, cands []string) bool {
	for _, cand := range cands {
		if s == cand {
			return true
		}
	}
	return false
}
