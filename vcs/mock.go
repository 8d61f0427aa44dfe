package vcs

import (
	"context"
	"time"

	"github.com/SofairOfficial/sleppa/model"
)

// Mock implements Source and Publisher in memory for tests.
type Mock struct {
	t       time.Time
	tags    []Tag
	commits []*model.Commit
	inner   map[string][]*model.Commit
	branch  string

	CommittedFiles []string
	CreatedTags    []string
	Pushes         int
}

func NewMock() *Mock {
	return &Mock{
		t:      time.Now(),
		inner:  make(map[string][]*model.Commit),
		branch: "main",
	}
}

// SetTags records release tags, oldest first. The last one is the
// latest release.
func (m *Mock) SetTags(tags ...string) *Mock {
	m.tags = m.tags[:0]
	for _, t := range tags {
		m.tags = append(m.tags, Tag{Name: t, SHA: t + "-sha"})
	}
	return m
}

// SetCommits records the squashed commits of the release window, oldest
// first. Commits without dates get descending synthetic ones.
func (m *Mock) SetCommits(commits ...*model.Commit) *Mock {
	finalCommits := make([]*model.Commit, len(commits))
	for i, commit := range commits {
		c := *commit
		if c.AuthorDate.IsZero() {
			c.AuthorDate = m.t
			c.CommitterDate = m.t
			m.t = m.t.Add(time.Minute)
		}
		finalCommits[i] = &c
	}
	m.commits = finalCommits
	return m
}

// SetInner records the inner commits of a squashed commit.
func (m *Mock) SetInner(id string, commits ...*model.Commit) *Mock {
	m.inner[id] = commits
	return m
}

func (m *Mock) SetBranch(name string) *Mock {
	m.branch = name
	return m
}

func (m *Mock) LatestRelease(ctx context.Context) (Tag, error) {
	if len(m.tags) == 0 {
		return Tag{}, NotFoundError{Ref: "tags"}
	}
	return m.tags[len(m.tags)-1], nil
}

func (m *Mock) ListCommitsSince(ctx context.Context, tag Tag) ([]*model.Commit, error) {
	return m.commits, nil
}

func (m *Mock) ExpandSquashed(ctx context.Context, c *model.Commit) ([]*model.Commit, error) {
	if inner, ok := m.inner[c.ID]; ok {
		return inner, nil
	}
	return []*model.Commit{c}, nil
}

func (m *Mock) CurrentBranch(ctx context.Context) (string, error) {
	return m.branch, nil
}

func (m *Mock) CommitFile(ctx context.Context, path, message string) error {
	m.CommittedFiles = append(m.CommittedFiles, path)
	return nil
}

func (m *Mock) CreateTag(ctx context.Context, commit, tag string, opts TagOpts) error {
	m.CreatedTags = append(m.CreatedTags, tag)
	return nil
}

func (m *Mock) Push(ctx context.Context, upstream, ref string, opts PushOpts) error {
	m.Pushes++
	return nil
}
