// Package commit contains code for classifying commits and computing
// release versions from them.
package commit

import "fmt"

// ReleaseType is the release magnitude a commit or a release window
// implies. Types are totally ordered: NONE < PATCH < MINOR < MAJOR.
type ReleaseType int

const (
	_ ReleaseType = iota

	ReleaseNone
	ReleasePatch
	ReleaseMinor
	ReleaseMajor
)

func (t ReleaseType) String() string {
	switch t {
	case ReleaseNone:
		return "NONE"
	case ReleasePatch:
		return "PATCH"
	case ReleaseMinor:
		return "MINOR"
	case ReleaseMajor:
		return "MAJOR"
	case 0:
		return "<INVALID>"
	default:
		return "<UNKNOWN>"
	}
}

func ParseReleaseType(s string) (ReleaseType, error) {
	switch s {
	case "NONE":
		return ReleaseNone, nil
	case "PATCH":
		return ReleasePatch, nil
	case "MINOR":
		return ReleaseMinor, nil
	case "MAJOR":
		return ReleaseMajor, nil
	}
	return 0, fmt.Errorf("commit: unknown release type: %q", s)
}
