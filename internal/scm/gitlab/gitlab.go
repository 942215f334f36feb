package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hoojinguyen/ai-pr-review/internal/scm"
	"github.com/xanzy/go-gitlab"
)

// Client implements scm.Client for GitLab.
type Client struct {
	client *gitlab.Client
	token  string

	mu   sync.Mutex
	rate scm.RateLimit
}

// Option configures the GitLab client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for self-hosted instances and testing).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.client, _ = gitlab.NewClient(c.token, gitlab.WithBaseURL(baseURL+"/api/v4"))
	}
}

// New creates a new GitLab client.
func New(token string, opts ...Option) *Client {
	client, _ := gitlab.NewClient(token)
	c := &Client{client: client, token: token}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the forge name.
func (c *Client) Name() string {
	return "gitlab"
}

// projectPath encodes owner/repo for the GitLab API.
func projectPath(owner, repo string) string {
	return url.PathEscape(owner + "/" + repo)
}

// GetPullRequest fetches a merge request by IID.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*scm.PullRequest, error) {
	mr, resp, err := c.client.MergeRequests.GetMergeRequest(projectPath(owner, repo), number, nil)
	c.observeRate(resp)
	if err != nil {
		return nil, fmt.Errorf("fetching merge request: %w", err)
	}

	pr := &scm.PullRequest{
		ID:          int64(mr.ID),
		Number:      mr.IID,
		Title:       mr.Title,
		Description: mr.Description,
		HeadRef:     mr.SourceBranch,
		HeadSHA:     mr.SHA,
		BaseRef:     mr.TargetBranch,
		State:       mr.State,
		Author:      mr.Author.Username,
		URL:         mr.WebURL,
	}
	if mr.CreatedAt != nil {
		pr.CreatedAt = *mr.CreatedAt
	}
	if mr.UpdatedAt != nil {
		pr.UpdatedAt = *mr.UpdatedAt
	}
	return pr, nil
}

// GetChangedFiles returns files changed in a merge request.
func (c *Client) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]scm.ChangedFile, error) {
	changes, resp, err := c.client.MergeRequests.GetMergeRequestChanges(projectPath(owner, repo), number, nil)
	c.observeRate(resp)
	if err != nil {
		return nil, fmt.Errorf("fetching merge request changes: %w", err)
	}

	result := make([]scm.ChangedFile, len(changes.Changes))
	for i, ch := range changes.Changes {
		status := "modified"
		if ch.NewFile {
			status = "added"
		} else if ch.DeletedFile {
			status = "removed"
		} else if ch.RenamedFile {
			status = "renamed"
		}

		additions, deletions := countChanges(ch.Diff)
		result[i] = scm.ChangedFile{
			Path:      ch.NewPath,
			Status:    status,
			Patch:     ch.Diff,
			IsBinary:  ch.Diff == "",
			Additions: additions,
			Deletions: deletions,
		}
	}
	return result, nil
}

// countChanges counts added and removed lines in a unified diff.
func countChanges(diff string) (additions, deletions int) {
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			additions++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			deletions++
		}
	}
	return additions, deletions
}

// GetFileContent fetches the raw content of a file at the given ref.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	data, resp, err := c.client.RepositoryFiles.GetRawFile(projectPath(owner, repo), path, &gitlab.GetRawFileOptions{
		Ref: &ref,
	})
	c.observeRate(resp)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, scm.ErrNotFound
		}
		return nil, fmt.Errorf("fetching file content: %w", err)
	}
	return data, nil
}

// CreateComment posts a note on a merge request.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	note, resp, err := c.client.Notes.CreateMergeRequestNote(projectPath(owner, repo), number, &gitlab.CreateMergeRequestNoteOptions{
		Body: &body,
	})
	c.observeRate(resp)
	if err != nil {
		return 0, fmt.Errorf("posting note: %w", err)
	}
	return int64(note.ID), nil
}

// UpdateComment replaces the body of an existing merge request note.
func (c *Client) UpdateComment(ctx context.Context, owner, repo string, number int, commentID int64, body string) error {
	_, resp, err := c.client.Notes.UpdateMergeRequestNote(projectPath(owner, repo), number, int(commentID), &gitlab.UpdateMergeRequestNoteOptions{
		Body: &body,
	})
	c.observeRate(resp)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	return nil
}

// RateLimit returns the most recently observed rate-limit state.
func (c *Client) RateLimit() scm.RateLimit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

func (c *Client) observeRate(resp *gitlab.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	remaining := resp.Header.Get("RateLimit-Remaining")
	if remaining == "" {
		return
	}

	rate := scm.RateLimit{}
	if n, err := strconv.Atoi(remaining); err == nil {
		rate.Remaining = n
	}
	if reset, err := strconv.ParseInt(resp.Header.Get("RateLimit-Reset"), 10, 64); err == nil {
		rate.Reset = time.Unix(reset, 0)
	}

	c.mu.Lock()
	c.rate = rate
	c.mu.Unlock()
}
