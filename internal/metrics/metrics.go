package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is a point-in-time view of operational metrics.
type Snapshot struct {
	WebhooksReceived    uint64 `json:"webhooks_received"`
	WebhooksProcessed   uint64 `json:"webhooks_processed"`
	ModelCalls          uint64 `json:"model_calls"`
	ModelCallsSucceeded uint64 `json:"model_calls_succeeded"`
	ModelCallsFailed    uint64 `json:"model_calls_failed"`
	CommentsPosted      uint64 `json:"comments_posted"`
	LastError           string `json:"last_error,omitempty"`
}

// Registry accumulates operational counters. One registry is created at
// startup and handed to each component; tests create their own.
type Registry struct {
	webhooksReceived    uint64
	webhooksProcessed   uint64
	modelCalls          uint64
	modelCallsSucceeded uint64
	modelCallsFailed    uint64
	commentsPosted      uint64

	mu        sync.Mutex
	lastError string

	startTime time.Time
}

// New creates a registry with all counters at zero.
func New() *Registry {
	return &Registry{startTime: time.Now()}
}

// WebhookReceived increments the count of webhook deliveries received.
func (r *Registry) WebhookReceived() { atomic.AddUint64(&r.webhooksReceived, 1) }

// WebhookProcessed increments the count of webhooks that triggered a completed review.
func (r *Registry) WebhookProcessed() { atomic.AddUint64(&r.webhooksProcessed, 1) }

// ModelCall increments the count of model invocation attempts.
func (r *Registry) ModelCall() { atomic.AddUint64(&r.modelCalls, 1) }

// ModelCallSucceeded increments the count of model invocations that returned content.
func (r *Registry) ModelCallSucceeded() { atomic.AddUint64(&r.modelCallsSucceeded, 1) }

// ModelCallFailed increments the count of model invocations that errored.
func (r *Registry) ModelCallFailed() { atomic.AddUint64(&r.modelCallsFailed, 1) }

// CommentPosted increments the count of review comments posted.
func (r *Registry) CommentPosted() { atomic.AddUint64(&r.commentsPosted, 1) }

// SetLastError records the most recent review failure message.
func (r *Registry) SetLastError(msg string) {
	r.mu.Lock()
	r.lastError = msg
	r.mu.Unlock()
}

// Get returns a snapshot of the current metrics.
func (r *Registry) Get() Snapshot {
	r.mu.Lock()
	lastError := r.lastError
	r.mu.Unlock()

	return Snapshot{
		WebhooksReceived:    atomic.LoadUint64(&r.webhooksReceived),
		WebhooksProcessed:   atomic.LoadUint64(&r.webhooksProcessed),
		ModelCalls:          atomic.LoadUint64(&r.modelCalls),
		ModelCallsSucceeded: atomic.LoadUint64(&r.modelCallsSucceeded),
		ModelCallsFailed:    atomic.LoadUint64(&r.modelCallsFailed),
		CommentsPosted:      atomic.LoadUint64(&r.commentsPosted),
		LastError:           lastError,
	}
}

// Uptime returns how long the registry has been live, which tracks process
// uptime when the registry is created at startup.
func (r *Registry) Uptime() time.Duration {
	return time.Since(r.startTime)
}
