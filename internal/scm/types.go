package scm

import "time"

// PullRequest represents a pull request/merge request.
type PullRequest struct {
	ID          int64
	Number      int
	Title       string
	Description string
	HeadRef     string
	HeadSHA     string
	BaseRef     string
	State       string // open, closed, merged
	Author      string
	URL         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChangedFile represents a file changed in a pull request.
type ChangedFile struct {
	Path      string
	Status    string // added, modified, removed, renamed
	Patch     string // unified diff hunk; empty for binary files
	IsBinary  bool
	Additions int
	Deletions int
}

// RateLimit is the forge's reported API headroom, zero-valued when unknown.
type RateLimit struct {
	Remaining int
	Reset     time.Time
}
