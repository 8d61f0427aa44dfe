package commit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
)

// ErrNoRelease is returned when a version bump is requested for a
// window whose aggregated release type is NONE. Callers are expected to
// filter that case before asking for a version.
var ErrNoRelease = errors.New("commit: no release action computed")

// Version is a computed release: the next semantic version, the window
// it was computed from, and the commit it should be tagged on.
type Version struct {
	semver.Version
	// PrevTag is the tag the window started from, empty on the first
	// release.
	PrevTag string
	// Prev is the previously released version, 0.0.0 on the first
	// release.
	Prev semver.Version
	// Commit is the newest commit of the window.
	Commit     string
	AllCommits AnalyzedCommits `json:"all_commits"`
}

func (v *Version) String() string { return v.Version.String() }

func (v *Version) ShortCommit() string {
	if len(v.Commit) >= 8 {
		return v.Commit[:8]
	}
	return v.Commit
}

// NextVersion computes the next version from the current one and the
// aggregated release type. A NONE type is an error, not a no-op.
func NextVersion(cur semver.Version, t ReleaseType) (semver.Version, error) {
	switch t {
	case ReleaseMajor:
		return semver.Version{Major: cur.Major + 1}, nil
	case ReleaseMinor:
		return semver.Version{Major: cur.Major, Minor: cur.Minor + 1}, nil
	case ReleasePatch:
		return semver.Version{Major: cur.Major, Minor: cur.Minor, Patch: cur.Patch + 1}, nil
	case ReleaseNone:
		return semver.Version{}, ErrNoRelease
	}
	return semver.Version{}, fmt.Errorf("commit: invalid release type %d", int(t))
}

// ParseTag parses a release tag such as "v3.2.1" or "3.2.1" into a
// semantic version. Malformed tags are a hard failure: the pipeline
// does not guess. Pre-release and build suffixes are rejected since
// released tags never carry them.
func ParseTag(tag string) (semver.Version, error) {
	s := strings.TrimPrefix(tag, "v")
	v, err := semver.Parse(s)
	if err != nil {
		return semver.Version{}, fmt.Errorf("commit: malformed release tag %q: %w", tag, err)
	}
	if len(v.Pre) > 0 || len(v.Build) > 0 {
		return semver.Version{}, fmt.Errorf("commit: malformed release tag %q: unexpected pre-release or build suffix", tag)
	}
	return v, nil
}
