package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/go-github/v60/github"
	"github.com/hoojinguyen/ai-pr-review/internal/scm"
)

// Client implements scm.Client for GitHub.
type Client struct {
	client *github.Client
	token  string

	mu   sync.Mutex
	rate scm.RateLimit
}

// Option configures the GitHub client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.client.BaseURL, _ = c.client.BaseURL.Parse(url + "/")
	}
}

// New creates a new GitHub client.
func New(token string, opts ...Option) *Client {
	httpClient := &http.Client{
		Transport: &tokenTransport{token: token},
	}

	c := &Client{
		client: github.NewClient(httpClient),
		token:  token,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// tokenTransport adds the authorization header to requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}

// Name returns the forge name.
func (c *Client) Name() string {
	return "github"
}

// GetPullRequest fetches a pull request by number.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*scm.PullRequest, error) {
	pr, resp, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	c.observeRate(resp)
	if err != nil {
		return nil, fmt.Errorf("fetching pull request: %w", err)
	}

	return &scm.PullRequest{
		ID:          pr.GetID(),
		Number:      pr.GetNumber(),
		Title:       pr.GetTitle(),
		Description: pr.GetBody(),
		HeadRef:     pr.GetHead().GetRef(),
		HeadSHA:     pr.GetHead().GetSHA(),
		BaseRef:     pr.GetBase().GetRef(),
		State:       pr.GetState(),
		Author:      pr.GetUser().GetLogin(),
		URL:         pr.GetHTMLURL(),
		CreatedAt:   pr.GetCreatedAt().Time,
		UpdatedAt:   pr.GetUpdatedAt().Time,
	}, nil
}

// GetChangedFiles returns files changed in a pull request.
func (c *Client) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]scm.ChangedFile, error) {
	files, resp, err := c.client.PullRequests.ListFiles(ctx, owner, repo, number, nil)
	c.observeRate(resp)
	if err != nil {
		return nil, fmt.Errorf("listing changed files: %w", err)
	}

	result := make([]scm.ChangedFile, len(files))
	for i, f := range files {
		result[i] = scm.ChangedFile{
			Path:      f.GetFilename(),
			Status:    f.GetStatus(),
			Patch:     f.GetPatch(),
			IsBinary:  f.Patch == nil,
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
		}
	}
	return result, nil
}

// GetFileContent fetches the decoded content of a file at the given ref.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	file, _, resp, err := c.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	c.observeRate(resp)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return nil, scm.ErrNotFound
		}
		return nil, fmt.Errorf("fetching file content: %w", err)
	}
	if file == nil {
		return nil, scm.ErrNotFound
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding file content: %w", err)
	}
	return []byte(content), nil
}

// CreateComment posts a comment on a pull request.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	comment, resp, err := c.client.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: &body,
	})
	c.observeRate(resp)
	if err != nil {
		return 0, fmt.Errorf("posting comment: %w", err)
	}
	return comment.GetID(), nil
}

// UpdateComment replaces the body of an existing comment.
// GitHub addresses issue comments by ID alone; number is unused.
func (c *Client) UpdateComment(ctx context.Context, owner, repo string, number int, commentID int64, body string) error {
	_, resp, err := c.client.Issues.EditComment(ctx, owner, repo, commentID, &github.IssueComment{
		Body: &body,
	})
	c.observeRate(resp)
	if err != nil {
		return fmt.Errorf("updating comment: %w", err)
	}
	return nil
}

// RateLimit returns the most recently observed rate-limit state.
func (c *Client) RateLimit() scm.RateLimit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

func (c *Client) observeRate(resp *github.Response) {
	if resp == nil {
		return
	}
	c.mu.Lock()
	c.rate = scm.RateLimit{
		Remaining: resp.Rate.Remaining,
		Reset:     resp.Rate.Reset.Time,
	}
	c.mu.Unlock()
}
