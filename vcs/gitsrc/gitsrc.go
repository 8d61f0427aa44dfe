// Package gitsrc implements vcs.Source for a local checkout using
// go-git, so the release window can be read without shelling out.
package gitsrc

import (
	"context"
	"errors"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/SofairOfficial/sleppa/config"
	"github.com/SofairOfficial/sleppa/model"
	"github.com/SofairOfficial/sleppa/vcs"
)

type Repo struct {
	cfg  config.Config
	repo *git.Repository
}

func Open(cfg config.Config, path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	return &Repo{cfg: cfg, repo: repo}, nil
}

// LatestRelease returns the most recently created tag. Tag refs carry
// no order of their own, so the commit dates of their targets decide.
func (r *Repo) LatestRelease(ctx context.Context) (vcs.Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return vcs.Tag{}, err
	}
	var latest vcs.Tag
	var latestTime time.Time
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		c, err := r.resolveTagCommit(ref.Hash())
		if err != nil {
			return err
		}
		if latest.Name == "" || c.Committer.When.After(latestTime) {
			latest = vcs.Tag{Name: ref.Name().Short(), SHA: c.Hash.String()}
			latestTime = c.Committer.When
		}
		return nil
	})
	if err != nil {
		return vcs.Tag{}, err
	}
	if latest.Name == "" {
		return vcs.Tag{}, vcs.NotFoundError{Ref: "tags"}
	}
	return latest, nil
}

// resolveTagCommit follows an annotated tag to its commit; lightweight
// tags already point at one.
func (r *Repo) resolveTagCommit(h plumbing.Hash) (*object.Commit, error) {
	if tag, err := r.repo.TagObject(h); err == nil {
		return tag.Commit()
	} else if !errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, err
	}
	return r.repo.CommitObject(h)
}

func (r *Repo) ListCommitsSince(ctx context.Context, tag vcs.Tag) ([]*model.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, err
	}
	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, err
	}

	var commits []*model.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if tag.SHA != "" && c.Hash.String() == tag.SHA {
			return storer.ErrStop
		}
		commits = append(commits, toModel(c))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// git log walks newest first; the window is oldest first.
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

// ExpandSquashed recovers inner commits from the squash commit body:
// squash merges record one bullet line per inner commit. A commit
// without bullet lines stands for itself.
func (r *Repo) ExpandSquashed(ctx context.Context, c *model.Commit) ([]*model.Commit, error) {
	var inner []*model.Commit
	for _, line := range strings.Split(c.Body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "* ") && !strings.HasPrefix(line, "- ") {
			continue
		}
		subject := strings.TrimSpace(line[2:])
		if subject == "" {
			continue
		}
		ic := *c
		ic.Subject = subject
		ic.Body = ""
		inner = append(inner, &ic)
	}
	if len(inner) == 0 {
		return []*model.Commit{c}, nil
	}
	return inner, nil
}

func toModel(c *object.Commit) *model.Commit {
	subject, body := splitMessage(c.Message)
	return &model.Commit{
		ID:             c.Hash.String(),
		Author:         c.Author.Name,
		AuthorEmail:    c.Author.Email,
		AuthorDate:     c.Author.When,
		Committer:      c.Committer.Name,
		CommitterEmail: c.Committer.Email,
		CommitterDate:  c.Committer.When,
		Subject:        subject,
		Body:           body,
	}
}

func splitMessage(msg string) (string, string) {
	parts := strings.SplitN(msg, "\n", 2)
	subject := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return subject, ""
	}
	return subject, strings.TrimSpace(parts[1])
}
