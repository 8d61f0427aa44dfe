package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/SofairOfficial/sleppa/commit"
	"github.com/SofairOfficial/sleppa/model"
)

type CheckFailure struct {
	Failures []FailureEntry
}

type FailureEntry struct {
	rawLine     string
	commitID    string
	commitTitle string
	err         error
}

func (cf CheckFailure) Error() string {
	return fmt.Sprintf("%d check(s) failed", len(cf.Failures))
}

func (cf CheckFailure) Is(other error) bool {
	_, ok := other.(CheckFailure)
	return ok
}

func (cf CheckFailure) WriteFailure(w io.Writer) error {
	if len(cf.Failures) == 0 {
		return nil
	}
	bw := bufio.NewWriter(w)
	for _, failure := range cf.Failures {
		title := failure.commitTitle
		if title == "" {
			title = failure.rawLine
		}
		bw.WriteString(title)
		bw.WriteString("\n")
		bw.WriteString("  ")
		bw.WriteString(failure.err.Error())
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// CheckCommitSubjects validates raw commit messages against the
// grammar. A message that matches no rule at all is a failure; matching
// a NONE rule is fine, that's an explicit "no release" classification.
func (r *Runner) CheckCommitSubjects(ctx context.Context, commits []string) (commit.AnalyzedCommits, error) {
	var failures []FailureEntry
	var acs commit.AnalyzedCommits
	for _, c := range commits {
		mc := parseCommit(c)
		ac := r.analyzer.Match(mc)
		acs = append(acs, ac)
		if !ac.Matched {
			failures = append(failures, FailureEntry{
				rawLine:     c,
				commitID:    mc.ID,
				commitTitle: mc.Subject,
				err:         fmt.Errorf("message does not match any release rule"),
			})
		}
	}
	if len(failures) > 0 {
		return nil, CheckFailure{Failures: failures}
	}
	return acs, nil
}

// CheckReadCommits validates one commit message read from rdr,
// typically stdin via a commit-msg hook.
func (r *Runner) CheckReadCommits(ctx context.Context, rdr io.Reader) (commit.AnalyzedCommits, error) {
	raw, err := io.ReadAll(rdr)
	if err != nil {
		return nil, err
	}
	return r.CheckCommitSubjects(ctx, []string{string(raw)})
}

// CheckCommitsFromGit validates every inner commit since the last
// release.
func (r *Runner) CheckCommitsFromGit(ctx context.Context) (commit.AnalyzedCommits, error) {
	tag, _, err := r.analyzer.LatestRelease(ctx)
	if err != nil {
		return nil, err
	}
	commits, err := r.src.ListCommitsSince(ctx, tag)
	if err != nil {
		return nil, err
	}

	var failures []FailureEntry
	var acs commit.AnalyzedCommits
	for _, c := range commits {
		inner, err := r.src.ExpandSquashed(ctx, c)
		if err != nil {
			return nil, err
		}
		for _, ic := range inner {
			ac := r.analyzer.Match(ic)
			acs = append(acs, ac)
			if !ac.Matched {
				failures = append(failures, FailureEntry{
					commitID:    ic.ID,
					commitTitle: ic.Subject,
					err:         fmt.Errorf("message does not match any release rule"),
				})
			}
		}
	}
	if len(failures) > 0 {
		return nil, CheckFailure{Failures: failures}
	}
	return acs, nil
}

// parseCommit reads a raw commit message, dropping comment lines the
// way git commit does.
func parseCommit(s string) *model.Commit {
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return &model.Commit{Subject: s}
	}
	var cleaned []string
	for _, line := range lines[2:] {
		if strings.HasPrefix(line, "#") {
			continue
		}
		cleaned = append(cleaned, line)
	}
	body := strings.Join(cleaned, "\n")
	return &model.Commit{Subject: lines[0], Body: body}
}
