package scm

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested resource does not exist on the forge.
var ErrNotFound = errors.New("not found")

// Client defines the interface for source-control forge operations.
type Client interface {
	// Name returns the forge name (github, gitlab).
	Name() string

	// GetPullRequest fetches a pull request by number.
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)

	// GetChangedFiles returns files changed in a pull request.
	GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error)

	// GetFileContent fetches the decoded content of a file at the given ref.
	// Returns ErrNotFound if the file does not exist.
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)

	// CreateComment posts a comment on a pull request and returns its ID.
	CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error)

	// UpdateComment replaces the body of an existing comment.
	UpdateComment(ctx context.Context, owner, repo string, number int, commentID int64, body string) error

	// RateLimit returns the most recently observed rate-limit state.
	RateLimit() RateLimit
}
