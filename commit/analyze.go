package commit

import (
	"context"
	"errors"
	"fmt"

	"github.com/blang/semver/v4"

	"github.com/SofairOfficial/sleppa/config"
	"github.com/SofairOfficial/sleppa/model"
	"github.com/SofairOfficial/sleppa/vcs"
)

// Analyzer computes a release decision for the current release window:
// everything since the last release tag, expanded into inner commits,
// classified against the grammar and aggregated into one release type.
type Analyzer struct {
	cfg     config.Config
	src     vcs.Source
	grammar *Grammar
}

func NewAnalyzer(cfg config.Config, src vcs.Source, grammar *Grammar) *Analyzer {
	return &Analyzer{
		cfg:     cfg,
		src:     src,
		grammar: grammar,
	}
}

// Analyze evaluates the release window. It returns nil with no error
// when no release is due: that outcome is a decision, not a failure.
// Fatal errors name the tag or commit that caused them so a failed run
// can be audited.
func (a *Analyzer) Analyze(ctx context.Context) (*Version, error) {
	tag, prev, err := a.LatestRelease(ctx)
	if err != nil {
		return nil, err
	}

	commits, err := a.src.ListCommitsSince(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("commit: reading window since %q: %w", tag.Name, err)
	}

	acs, err := a.expand(ctx, commits)
	if err != nil {
		return nil, err
	}

	rt := acs.Aggregate()
	a.cfg.Debugf("window since %q: %d commits -> %s", tag.Name, len(acs), rt)
	if rt == ReleaseNone {
		return nil, nil
	}

	next, err := NextVersion(prev, rt)
	if err != nil {
		return nil, err
	}

	head := ""
	if len(commits) > 0 {
		head = commits[len(commits)-1].ID
	}
	return &Version{
		Version:    next,
		Prev:       prev,
		PrevTag:    tag.Name,
		Commit:     head,
		AllCommits: acs,
	}, nil
}

func (a *Analyzer) expand(ctx context.Context, commits []*model.Commit) (AnalyzedCommits, error) {
	var acs AnalyzedCommits
	for _, c := range commits {
		inner, err := a.src.ExpandSquashed(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("commit: expanding %s: %w", c.ShortID(), err)
		}
		for _, ic := range inner {
			acs = append(acs, a.grammar.Classify(ic))
		}
	}
	return acs, nil
}

// LatestRelease resolves the latest release tag and its parsed version.
// No tag at all means a first release from 0.0.0; a tag that exists but
// doesn't parse halts the pipeline.
func (a *Analyzer) LatestRelease(ctx context.Context) (vcs.Tag, semver.Version, error) {
	tag, err := a.src.LatestRelease(ctx)
	if err != nil {
		nfe := vcs.NotFoundError{}
		if errors.As(err, &nfe) {
			return vcs.Tag{}, semver.Version{}, nil
		}
		return vcs.Tag{}, semver.Version{}, err
	}
	prev, err := ParseTag(tag.Name)
	if err != nil {
		return vcs.Tag{}, semver.Version{}, err
	}
	return tag, prev, nil
}

// Match classifies a single commit, for checks and stats.
func (a *Analyzer) Match(c *model.Commit) *AnalyzedCommit {
	return a.grammar.Classify(c)
}
