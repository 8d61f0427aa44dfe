// Package github implements vcs.Source against the GitHub REST API.
//
// In a squash-and-merge workflow the squashed subject ends with the
// pull request number, e.g. "Fix the flux capacitor (#42)"; the inner
// commits of a squashed unit are the commits of that pull request.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SofairOfficial/sleppa/config"
	"github.com/SofairOfficial/sleppa/model"
	"github.com/SofairOfficial/sleppa/vcs"
)

const DefaultBaseURL = "https://api.github.com"

type Repository struct {
	cfg   config.Config
	owner string
	repo  string

	// BaseURL and Client can be overridden, mainly by tests.
	BaseURL string
	Client  *http.Client
	Token   string
}

// New builds a GitHub-backed Source for "owner/repo". The token is read
// from GITHUB_TOKEN; an empty token still works for public
// repositories.
func New(cfg config.Config, ownerRepo string) (*Repository, error) {
	parts := strings.SplitN(ownerRepo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("github: invalid repository %q (want owner/repo)", ownerRepo)
	}
	return &Repository{
		cfg:     cfg,
		owner:   parts[0],
		repo:    parts[1],
		BaseURL: DefaultBaseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Token:   os.Getenv("GITHUB_TOKEN"),
	}, nil
}

type apiTag struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type apiCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string       `json:"message"`
		Author  apiSignature `json:"author"`
	} `json:"commit"`
}

type apiSignature struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// LatestRelease returns the newest tag in the tags listing, which the
// API orders most recent first.
func (r *Repository) LatestRelease(ctx context.Context) (vcs.Tag, error) {
	var tags []apiTag
	if err := r.get(ctx, fmt.Sprintf("/repos/%s/%s/tags", r.owner, r.repo), &tags); err != nil {
		return vcs.Tag{}, err
	}
	if len(tags) == 0 {
		return vcs.Tag{}, vcs.NotFoundError{Ref: "tags"}
	}
	return vcs.Tag{Name: tags[0].Name, SHA: tags[0].Commit.SHA}, nil
}

// ListCommitsSince walks the commit listing (newest first) until it
// reaches the tagged commit, then returns the window oldest first.
func (r *Repository) ListCommitsSince(ctx context.Context, tag vcs.Tag) ([]*model.Commit, error) {
	var raw []apiCommit
	if err := r.get(ctx, fmt.Sprintf("/repos/%s/%s/commits", r.owner, r.repo), &raw); err != nil {
		return nil, err
	}

	var commits []*model.Commit
	for _, c := range raw {
		if tag.SHA != "" && c.SHA == tag.SHA {
			break
		}
		commits = append(commits, toModel(c))
	}
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

var prNumberRE = regexp.MustCompile(`\(#(?P<number>[0-9]+)\)\s*$`)

// ExpandSquashed fetches the pull request commits named by the squash
// subject. A subject without a pull request number can't be expanded
// and stands for itself.
func (r *Repository) ExpandSquashed(ctx context.Context, c *model.Commit) ([]*model.Commit, error) {
	m := prNumberRE.FindStringSubmatch(c.Subject)
	if m == nil {
		return []*model.Commit{c}, nil
	}
	number, err := strconv.ParseUint(m[prNumberRE.SubexpIndex("number")], 10, 64)
	if err != nil {
		return []*model.Commit{c}, nil
	}

	var raw []apiCommit
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/commits", r.owner, r.repo, number)
	if err := r.get(ctx, path, &raw); err != nil {
		return nil, err
	}
	// the pull request listing is already chronological
	commits := make([]*model.Commit, len(raw))
	for i, rc := range raw {
		commits[i] = toModel(rc)
	}
	return commits, nil
}

func (r *Repository) get(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("github: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("github: GET %s: %s: %s", path, resp.Status, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func toModel(c apiCommit) *model.Commit {
	subject, body := splitMessage(c.Commit.Message)
	return &model.Commit{
		ID:          c.SHA,
		Author:      c.Commit.Author.Name,
		AuthorEmail: c.Commit.Author.Email,
		AuthorDate:  c.Commit.Author.Date,
		Subject:     subject,
		Body:        body,
	}
}

func splitMessage(msg string) (string, string) {
	parts := strings.SplitN(msg, "\n", 2)
	subject := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return subject, ""
	}
	return subject, strings.TrimSpace(parts[1])
}
