// Package vcs abstracts the repository hosting a project's commits and
// tags. Reading the release window and publishing a release are separate
// capabilities: a Source supplies commits and tags, a Publisher writes
// the release back.
package vcs

import (
	"context"
	"fmt"

	"github.com/SofairOfficial/sleppa/model"
)

// NotFoundError is returned by a Source when no release tag exists yet.
type NotFoundError struct {
	Ref string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("vcs: ref %q not found", e.Ref)
}

// Tag names a release tag and the commit it points at.
type Tag struct {
	Name string
	SHA  string
}

// Source supplies the commits of a release window. Implementations must
// return commits in chronological order (oldest first), both for the
// squashed commits on the main line and for the inner commits of each
// squashed unit. Network and auth failures are returned unchanged; no
// retries happen at this layer.
type Source interface {
	// LatestRelease returns the most recent release tag, or a
	// NotFoundError when the repository has never been released.
	LatestRelease(ctx context.Context) (Tag, error)
	// ListCommitsSince returns the commits after the given tag, up to
	// the current evaluation point. A zero Tag means the whole history.
	ListCommitsSince(ctx context.Context, tag Tag) ([]*model.Commit, error)
	// ExpandSquashed returns the inner commits that were squashed into
	// the given commit. When the commit cannot be expanded it is
	// returned by itself.
	ExpandSquashed(ctx context.Context, c *model.Commit) ([]*model.Commit, error)
}

// Publisher writes a computed release back to the repository.
type Publisher interface {
	CurrentBranch(ctx context.Context) (string, error)
	CommitFile(ctx context.Context, path, message string) error
	CreateTag(ctx context.Context, commit, tag string, opts TagOpts) error
	Push(ctx context.Context, upstream, ref string, opts PushOpts) error
}

type TagOpts struct {
	Message     string
	Author      string
	AuthorEmail string
}

type PushOpts struct {
	Tags       bool
	FollowTags bool
}
