package commit

import (
	"testing"

	"github.com/SofairOfficial/sleppa/config"
	"github.com/SofairOfficial/sleppa/model"
)

func defaultGrammar(t *testing.T) *Grammar {
	t.Helper()
	g, err := NewGrammar(config.GetDefault().Rules)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestClassify(t *testing.T) {
	g := defaultGrammar(t)
	tcs := []struct {
		name       string
		message    string
		expect     ReleaseType
		commitType string
		category   string
	}{
		{
			name:       "major",
			message:    "break: remove the legacy endpoint",
			expect:     ReleaseMajor,
			commitType: "break",
			category:   "Major changes",
		},
		{
			name:       "major-scoped",
			message:    "break(api): remove endpoint",
			expect:     ReleaseMajor,
			commitType: "break",
			category:   "Major changes",
		},
		{
			name:       "minor",
			message:    "feat: add release window stats",
			expect:     ReleaseMinor,
			commitType: "feat",
			category:   "Minor changes",
		},
		{
			name:       "minor-docs",
			message:    "docs: document the grammar",
			expect:     ReleaseMinor,
			commitType: "docs",
			category:   "Minor changes",
		},
		{
			name:       "patch",
			message:    "fix(parser): handle empty bodies",
			expect:     ReleasePatch,
			commitType: "fix",
			category:   "Patch changes",
		},
		{
			name:    "unmatched",
			message: "wip stuff",
			expect:  ReleaseNone,
		},
		{
			name:    "empty",
			message: "",
			expect:  ReleaseNone,
		},
		{
			name:    "whitespace",
			message: "   \n\t  ",
			expect:  ReleaseNone,
		},
		{
			// classification is anchored at the start of the message, so
			// a conventional line inside the body must not match
			name:    "body-no-false-positive",
			message: "update stuff\n\nfix: something in the body",
			expect:  ReleaseNone,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			ac := g.Classify(&model.Commit{ID: "deadbeef", Subject: tc.message})
			if ac.ReleaseType != tc.expect {
				t.Fatalf("expected %s, got %s", tc.expect, ac.ReleaseType)
			}
			if tc.commitType != "" && ac.CommitType != tc.commitType {
				t.Errorf("expected commit type %q, got %q", tc.commitType, ac.CommitType)
			}
			if tc.category != "" && ac.Category != tc.category {
				t.Errorf("expected category %q, got %q", tc.category, ac.Category)
			}
			if tc.expect != ReleaseNone && !ac.Matched {
				t.Error("expected a matched classification")
			}
		})
	}
}

// Configuration order decides between overlapping patterns: the first
// match wins, it is not the most specific one. A general rule before a
// specific one shadows it.
func TestClassifyFirstMatchWins(t *testing.T) {
	g, err := NewGrammar([]config.Rule{
		{Pattern: `^feat`, ReleaseType: "MINOR", Category: "Minor changes"},
		{Pattern: `^feat\(core\)`, ReleaseType: "MAJOR", Category: "Major changes"},
	})
	if err != nil {
		t.Fatal(err)
	}

	ac := g.Classify(&model.Commit{Subject: "feat(core): x"})
	if ac.ReleaseType != ReleaseMinor {
		t.Fatalf("expected MINOR (first rule wins), got %s", ac.ReleaseType)
	}
}

func TestNewGrammarInvalid(t *testing.T) {
	tcs := []struct {
		name  string
		rules []config.Rule
	}{
		{name: "empty", rules: nil},
		{
			name:  "bad-pattern",
			rules: []config.Rule{{Pattern: `^(feat`, ReleaseType: "MINOR"}},
		},
		{
			name:  "bad-type",
			rules: []config.Rule{{Pattern: `^feat`, ReleaseType: "HUGE"}},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewGrammar(tc.rules); err == nil {
				t.Fatal("expected grammar compile error")
			}
		})
	}
}

func TestGrammarCategories(t *testing.T) {
	g, err := NewGrammar([]config.Rule{
		{Pattern: `^docs`, ReleaseType: "NONE", Category: "Documentation"},
		{Pattern: `^feat`, ReleaseType: "MINOR", Category: "Production"},
		{Pattern: `^fix`, ReleaseType: "PATCH", Category: "Production"},
		{Pattern: `^chore`, ReleaseType: "NONE"},
	})
	if err != nil {
		t.Fatal(err)
	}

	cats := g.Categories()
	expect := []string{"Documentation", "Production"}
	if len(cats) != len(expect) {
		t.Fatalf("expected %d categories, got %d (%v)", len(expect), len(cats), cats)
	}
	for i, c := range expect {
		if cats[i] != c {
			t.Errorf("expected category %d to be %q, got %q", i, c, cats[i])
		}
	}
}
