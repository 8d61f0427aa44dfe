package commit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SofairOfficial/sleppa/config"
	"github.com/SofairOfficial/sleppa/model"
)

// Grammar is the compiled, immutable form of the configured release
// rules. Rules keep their configured order and the first match wins, so
// a general pattern configured before a specific one shadows it.
type Grammar struct {
	rules      []grammarRule
	categories []string
}

type grammarRule struct {
	re          *regexp.Regexp
	releaseType ReleaseType
	category    string
}

// NewGrammar compiles configured rules into a Grammar. Patterns are
// anchored at the start of the message so commit bodies can't produce
// false positives. Compilation failures are fatal here, not deferred to
// classification time.
func NewGrammar(rules []config.Rule) (*Grammar, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("commit: grammar needs at least one rule")
	}
	g := &Grammar{}
	for i, rule := range rules {
		re, err := regexp.Compile(`^(?:` + rule.Pattern + `)`)
		if err != nil {
			return nil, fmt.Errorf("commit: rule %d: invalid pattern %q: %w", i, rule.Pattern, err)
		}
		rt, err := ParseReleaseType(rule.ReleaseType)
		if err != nil {
			return nil, fmt.Errorf("commit: rule %d: %w", i, err)
		}
		g.rules = append(g.rules, grammarRule{re: re, releaseType: rt, category: rule.Category})
		if rule.Category != "" && !inStrs(rule.Category, g.categories) {
			g.categories = append(g.categories, rule.Category)
		}
	}
	return g, nil
}

// Categories returns category labels in the order they first appear in
// the grammar. The changelog preserves this order.
func (g *Grammar) Categories() []string {
	return g.categories
}

// AnalyzedCommit is a commit together with its classification.
type AnalyzedCommit struct {
	*model.Commit
	ReleaseType ReleaseType
	CommitType  string
	Category    string
	// Matched reports whether any rule matched at all. A commit can
	// classify as NONE either because no rule matched or because a NONE
	// rule did.
	Matched bool
}

type AnalyzedCommits []*AnalyzedCommit

func (acs AnalyzedCommits) ReleaseTypes() []ReleaseType {
	types := make([]ReleaseType, len(acs))
	for i, ac := range acs {
		types[i] = ac.ReleaseType
	}
	return types
}

// Classify matches a commit's subject line against the grammar. It is a
// pure function of the subject and the grammar: rules are tried in order
// and the first match decides. The body is ignored so a conventional
// line buried in it can't reclassify the commit. Empty and unmatched
// subjects classify NONE.
func (g *Grammar) Classify(c *model.Commit) *AnalyzedCommit {
	msg := c.Subject
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if strings.TrimSpace(msg) == "" {
		return &AnalyzedCommit{Commit: c, ReleaseType: ReleaseNone}
	}
	for _, rule := range g.rules {
		m := rule.re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		ac := &AnalyzedCommit{
			Commit:      c,
			ReleaseType: rule.releaseType,
			Category:    rule.category,
			Matched:     true,
		}
		if i := rule.re.SubexpIndex("type"); i >= 0 && i < len(m) {
			ac.CommitType = m[i]
		}
		return ac
	}
	return &AnalyzedCommit{Commit: c, ReleaseType: ReleaseNone}
}

func inStrs(s string, cands []string) bool {
	for _, cand := range cands {
		if s == cand {
			return true
		}
	}
	return false
}
