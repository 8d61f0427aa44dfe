package changelog

import (
	"bytes"
	"fmt"
	"regexp"
)

// MergeConflictError reports that the document already holds a section
// for the target tag with different content. That indicates a
// double-run or tampering, so it is fatal rather than overwritten.
type MergeConflictError struct {
	Tag string
}

func (e MergeConflictError) Error() string {
	return fmt.Sprintf("changelog: section for %q already exists with different content", e.Tag)
}

// The topmost "## ..." header names the most recently released tag,
// with or without a link.
var sectionHeaderRE = regexp.MustCompile(`(?m)^## \[?(?P<tag>[^\]\s(]+)`)

// Merge prepends the new section to the existing document. Merging the
// same section twice is a no-op: when the most recent section already
// carries the target tag and identical content, the document is
// returned unchanged. The same tag with different content is a
// MergeConflictError.
func Merge(existing []byte, s *Section) ([]byte, error) {
	rendered := s.Bytes()

	if m := sectionHeaderRE.FindSubmatch(existing); m != nil && string(m[1]) == s.Tag {
		if bytes.HasPrefix(existing, rendered) {
			return existing, nil
		}
		return nil, MergeConflictError{Tag: s.Tag}
	}
	return append(rendered, existing...), nil
}
