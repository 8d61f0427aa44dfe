package commit

import (
	"testing"

	"github.com/blang/semver/v4"
)

func TestTags(t *testing.T) {
	tcs := []struct {
		name   string
		tmpl   string
		semver string
		expect string
	}{
		{
			name:   "default",
			semver: "1.2.3",
			expect: "v1.2.3",
		},
		{
			name:   "no-v",
			semver: "1.2.3",
			tmpl:   `{{ .Version }}`,
			expect: "1.2.3",
		},
		{
			name:   "prefixed",
			semver: "0.1.0",
			tmpl:   `release-{{ .Version }}`,
			expect: "release-0.1.0",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			tag, err := NewTag(tc.tmpl)
			if err != nil {
				t.Fatal(err)
			}

			s, err := tag.ExecuteString(TagData{Version: &Version{Version: semver.MustParse(tc.semver)}})
			if err != nil {
				t.Fatal(err)
			}
			if s != tc.expect {
				t.Fatalf("expected tag %q, got %q", tc.expect, s)
			}
		})
	}
}
