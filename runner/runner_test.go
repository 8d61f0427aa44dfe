package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SofairOfficial/sleppa/config"
	"github.com/SofairOfficial/sleppa/model"
	"github.com/SofairOfficial/sleppa/vcs"
)

var testNow = func() time.Time {
	return time.Date(2023, 5, 5, 12, 0, 0, 0, time.UTC)
}

func testConfig(t *testing.T, overrides *config.Config) (config.Config, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	cfg := config.NewWithTerminalIO(overrides, &config.TerminalIO{
		Stdin:  strings.NewReader(""),
		Stdout: out,
		Stderr: out,
	})
	if cfg.ChangelogPath == "CHANGELOG.md" {
		cfg.ChangelogPath = filepath.Join(t.TempDir(), "CHANGELOG.md")
	}
	return cfg, out
}

func newTestRunner(t *testing.T, cfg config.Config, m *vcs.Mock) *Runner {
	t.Helper()
	r, err := New(cfg, m, m)
	if err != nil {
		t.Fatal(err)
	}
	r.now = testNow
	return r
}

func TestRunRelease(t *testing.T) {
	ctx := context.Background()
	cfg, out := testConfig(t, nil)
	m := vcs.NewMock().
		SetTags("v0.5.2").
		SetCommits(
			&model.Commit{ID: "aaaa111", Subject: "break(api): remove endpoint"},
			&model.Commit{ID: "bbbb222", Subject: "docs: typo fix"},
		)
	r := newTestRunner(t, cfg, m)

	ver, err := r.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ver == nil {
		t.Fatal("expected a release")
	}
	if got := ver.Version.String(); got != "1.0.0" {
		t.Fatalf("expected version 1.0.0, got %s", got)
	}

	b, err := os.ReadFile(cfg.ChangelogPath)
	if err != nil {
		t.Fatal(err)
	}
	changelog := string(b)
	if !strings.Contains(changelog, "## v1.0.0 (2023-05-05)") {
		t.Errorf("changelog missing release header:\n%s", changelog)
	}
	if !strings.Contains(changelog, "break(api): remove endpoint") {
		t.Errorf("changelog missing major entry:\n%s", changelog)
	}

	if len(m.CommittedFiles) != 1 || m.CommittedFiles[0] != cfg.ChangelogPath {
		t.Errorf("expected changelog commit, got %v", m.CommittedFiles)
	}
	if len(m.CreatedTags) != 1 || m.CreatedTags[0] != "v1.0.0" {
		t.Errorf("expected tag v1.0.0, got %v", m.CreatedTags)
	}
	if m.Pushes != 0 {
		t.Errorf("expected no pushes outside CI, got %d", m.Pushes)
	}
	if !strings.Contains(out.String(), "v1.0.0") {
		t.Errorf("expected tag in output:\n%s", out.String())
	}
}

func TestRunNoRelease(t *testing.T) {
	ctx := context.Background()
	cfg, out := testConfig(t, nil)
	m := vcs.NewMock().
		SetTags("v1.0.0").
		SetCommits(&model.Commit{ID: "aaaa111", Subject: "wip stuff"})
	r := newTestRunner(t, cfg, m)

	ver, err := r.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ver != nil {
		t.Fatalf("expected no release, got %s", ver)
	}
	if !strings.Contains(out.String(), "no release due") {
		t.Errorf("expected no-release message, got:\n%s", out.String())
	}
	if _, err := os.Stat(cfg.ChangelogPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("no-release run must not write a changelog")
	}
	if len(m.CreatedTags) != 0 {
		t.Errorf("no-release run must not tag, got %v", m.CreatedTags)
	}
}

func TestRunDryrun(t *testing.T) {
	ctx := context.Background()
	cfg, out := testConfig(t, &config.Config{Dryrun: true})
	m := vcs.NewMock().
		SetTags("v1.0.0").
		SetCommits(&model.Commit{ID: "aaaa111", Subject: "fix: a thing"})
	r := newTestRunner(t, cfg, m)

	ver, err := r.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ver == nil {
		t.Fatal("dry run still decides")
	}
	if got := ver.Version.String(); got != "1.0.1" {
		t.Fatalf("expected version 1.0.1, got %s", got)
	}

	if _, err := os.Stat(cfg.ChangelogPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("dry run must not write the changelog")
	}
	if len(m.CommittedFiles) != 0 || len(m.CreatedTags) != 0 || m.Pushes != 0 {
		t.Error("dry run must not publish")
	}
	if !strings.Contains(out.String(), "would write") {
		t.Errorf("expected dry-run changelog preview, got:\n%s", out.String())
	}
}

func TestRunPushesInCI(t *testing.T) {
	ctx := context.Background()
	cfg, _ := testConfig(t, &config.Config{InCI: true})
	m := vcs.NewMock().
		SetTags("v1.0.0").
		SetCommits(&model.Commit{ID: "aaaa111", Subject: "feat: ship it"})
	r := newTestRunner(t, cfg, m)

	if _, err := r.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Pushes != 1 {
		t.Fatalf("expected one push in CI mode, got %d", m.Pushes)
	}
}

// Re-running after a release changed nothing new must not rewrite the
// changelog or fail.
func TestRunIdempotentChangelog(t *testing.T) {
	ctx := context.Background()
	cfg, out := testConfig(t, nil)
	m := vcs.NewMock().
		SetTags("v1.0.0").
		SetCommits(&model.Commit{ID: "aaaa111", Subject: "fix: a thing"})
	r := newTestRunner(t, cfg, m)

	if _, err := r.Run(ctx); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(cfg.ChangelogPath)
	if err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if _, err := r.Run(ctx); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(cfg.ChangelogPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("second run changed the changelog")
	}
	if !strings.Contains(out.String(), "changelog already contains") {
		t.Errorf("expected idempotent-merge message, got:\n%s", out.String())
	}
}

func TestCheckBranch(t *testing.T) {
	ctx := context.Background()

	t.Run("release-branch", func(t *testing.T) {
		cfg, _ := testConfig(t, nil)
		r := newTestRunner(t, cfg, vcs.NewMock().SetBranch("main"))
		if err := r.Check(ctx); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("feature-branch", func(t *testing.T) {
		cfg, _ := testConfig(t, nil)
		r := newTestRunner(t, cfg, vcs.NewMock().SetBranch("feature/foo"))
		if err := r.Check(ctx); err == nil {
			t.Fatal("expected branch check to fail")
		}
	})

	t.Run("feature-branch-dryrun", func(t *testing.T) {
		cfg, _ := testConfig(t, &config.Config{Dryrun: true})
		r := newTestRunner(t, cfg, vcs.NewMock().SetBranch("feature/foo"))
		if err := r.Check(ctx); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLatestRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("has-releases", func(t *testing.T) {
		cfg, _ := testConfig(t, nil)
		r := newTestRunner(t, cfg, vcs.NewMock().SetTags("v1.0.0", "v1.1.0"))
		latest, err := r.LatestRelease(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if latest != "v1.1.0" {
			t.Fatalf("expected v1.1.0, got %q", latest)
		}
	})

	t.Run("no-releases", func(t *testing.T) {
		cfg, _ := testConfig(t, nil)
		r := newTestRunner(t, cfg, vcs.NewMock())
		_, err := r.LatestRelease(ctx)
		nfe := vcs.NotFoundError{}
		if !errors.As(err, &nfe) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})
}
