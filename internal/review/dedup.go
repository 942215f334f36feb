package review

import (
	"fmt"
	"sync"
	"time"
)

// DefaultCooldown is the minimum time between two reviews of one pull request.
const DefaultCooldown = 5 * time.Minute

// Entry records the last completed review of a pull request.
type Entry struct {
	LastReview time.Time
	CommentID  int64
}

// Deduper suppresses repeat reviews of a pull request within a cool-down
// window. State is per-process and best-effort; it is lost on restart.
type Deduper struct {
	window  time.Duration
	mu      sync.Mutex
	entries map[string]Entry
}

// NewDeduper creates a deduper with the given cool-down window.
func NewDeduper(window time.Duration) *Deduper {
	if window <= 0 {
		window = DefaultCooldown
	}
	return &Deduper{
		window:  window,
		entries: make(map[string]Entry),
	}
}

func key(owner, repo string, number int) string {
	return fmt.Sprintf("%s/%s/%d", owner, repo, number)
}

// ShouldReview reports whether the pull request is eligible: no entry exists,
// or the existing entry is older than the cool-down window. It does not
// record; call Record after the review completes. Two near-simultaneous
// deliveries can both pass this check before either records; a known race,
// accepted given webhook delivery semantics.
func (d *Deduper) ShouldReview(owner, repo string, number int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.entries[key(owner, repo, number)]
	if !ok {
		return true
	}
	return time.Since(entry.LastReview) >= d.window
}

// Record stores the completed review's timestamp and comment ID.
func (d *Deduper) Record(owner, repo string, number int, commentID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries[key(owner, repo, number)] = Entry{
		LastReview: time.Now(),
		CommentID:  commentID,
	}
}

// last returns the recorded entry for a pull request, if any.
func (d *Deduper) last(owner, repo string, number int) (Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.entries[key(owner, repo, number)]
	return entry, ok
}

// Cleanup removes entries older than twice the cool-down window. Nothing
// schedules this by default; callers that care about long-running memory
// growth may run it periodically.
func (d *Deduper) Cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	threshold := time.Now().Add(-d.window * 2)
	for k, entry := range d.entries {
		if entry.LastReview.Before(threshold) {
			delete(d.entries, k)
		}
	}
}
