// Package changelog synthesizes one changelog section per release and
// merges it into the cumulative changelog document, newest section
// first. Rendering is deterministic: the same inputs always produce
// byte-identical output so the changelog commit is reproducible.
package changelog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/blang/semver/v4"

	"github.com/SofairOfficial/sleppa/commit"
)

// Entry is one commit line inside a category group.
type Entry struct {
	ID      string
	Subject string
}

func (e Entry) shortID() string {
	if len(e.ID) < 8 {
		return e.ID
	}
	return e.ID[:8]
}

// Group is an ordered list of entries under one category label.
type Group struct {
	Category string
	Entries  []Entry
}

// Section is the rendered block of changelog content for one release.
// It is built fresh per release and never mutated after synthesis.
type Section struct {
	Version semver.Version
	Tag     string
	PrevTag string
	Date    time.Time
	RepoURL string
	Groups  []Group
}

// Synthesize groups classified commits by their rule's category,
// preserving the order categories first appear in the grammar.
// Within a category commits keep the chronological order the source
// supplied. Commits classified NONE, and commits whose rule declares no
// category, are excluded from the body but never block synthesis.
func Synthesize(tag, prevTag, repoURL string, version semver.Version, date time.Time, commits commit.AnalyzedCommits, categories []string) *Section {
	s := &Section{
		Version: version,
		Tag:     tag,
		PrevTag: prevTag,
		Date:    date,
		RepoURL: repoURL,
	}
	for _, category := range categories {
		group := Group{Category: category}
		for _, ac := range commits {
			if ac.ReleaseType == commit.ReleaseNone || ac.Category != category {
				continue
			}
			group.Entries = append(group.Entries, Entry{ID: ac.ID, Subject: ac.Subject})
		}
		s.Groups = append(s.Groups, group)
	}
	return s
}

// Render writes the section. The layout is:
//
//	## [v1.0.0](https://github.com/user/repo/compare/v0.5.2..v1.0.0) (2023-05-05)
//
//	* **Major changes**
//	 * break(api): remove endpoint ([1ebdf43e](https://github.com/user/repo/commit/1ebdf43e...))
//
// Links are omitted when no repository URL is configured.
func (s *Section) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("## ")
	bw.WriteString(s.headerTag())
	bw.WriteString(fmt.Sprintf(" (%s)\n", s.Date.Format("2006-01-02")))

	for _, group := range s.Groups {
		if len(group.Entries) == 0 {
			continue
		}
		bw.WriteString(fmt.Sprintf("\n* **%s**\n", group.Category))
		for _, e := range group.Entries {
			if s.RepoURL == "" {
				bw.WriteString(fmt.Sprintf(" * %s (%s)\n", e.Subject, e.shortID()))
				continue
			}
			bw.WriteString(fmt.Sprintf(" * %s ([%s](%s/commit/%s))\n", e.Subject, e.shortID(), s.RepoURL, e.ID))
		}
	}

	bw.WriteString("\n")
	return bw.Flush()
}

func (s *Section) headerTag() string {
	if s.RepoURL == "" {
		return s.Tag
	}
	if s.PrevTag == "" {
		return fmt.Sprintf("[%s](%s/commits/%s)", s.Tag, s.RepoURL, s.Tag)
	}
	return fmt.Sprintf("[%s](%s/compare/%s..%s)", s.Tag, s.RepoURL, s.PrevTag, s.Tag)
}

func (s *Section) Bytes() []byte {
	b := &bytes.Buffer{}
	if err := s.Render(b); err != nil {
		panic(err)
	}
	return b.Bytes()
}
