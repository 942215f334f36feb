package event

import (
	"context"
	"fmt"
	"log"

	"github.com/hoojinguyen/ai-pr-review/internal/llm"
	"github.com/hoojinguyen/ai-pr-review/internal/metrics"
	"github.com/hoojinguyen/ai-pr-review/internal/policy"
	"github.com/hoojinguyen/ai-pr-review/internal/prompt"
	"github.com/hoojinguyen/ai-pr-review/internal/review"
	"github.com/hoojinguyen/ai-pr-review/internal/scm"
)

// lowRateThreshold is the remaining-request count below which the forge's
// rate limit is logged.
const lowRateThreshold = 100

// Result is the dispatcher's answer to a webhook delivery, serialized as the
// HTTP response body.
type Result struct {
	Processed bool   `json:"processed"`
	Reason    string `json:"reason,omitempty"`
	CommentID int64  `json:"commentId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Dispatcher drives a classified event through dedup, data retrieval, policy
// resolution, model invocation, and comment posting. Each forge gets its own
// policy resolver since policy files live in the reviewed repository.
type Dispatcher struct {
	clients    map[string]scm.Client
	resolvers  map[string]*policy.Resolver
	policyPath string
	manager    *llm.Manager
	builder    *prompt.Builder
	deduper    *review.Deduper
	metrics    *metrics.Registry
	trigger    string

	fallbackEnabled  bool
	fallbackProvider string
}

// NewDispatcher creates a dispatcher. Forge clients are added with
// RegisterClient.
func NewDispatcher(manager *llm.Manager, deduper *review.Deduper, m *metrics.Registry, trigger, policyPath string) *Dispatcher {
	return &Dispatcher{
		clients:    make(map[string]scm.Client),
		resolvers:  make(map[string]*policy.Resolver),
		policyPath: policyPath,
		manager:    manager,
		builder:    prompt.NewBuilder(),
		deduper:    deduper,
		metrics:    m,
		trigger:    trigger,
	}
}

// ConfigureFallback sets the server-wide fallback defaults. A repository
// policy can name its own fallback provider but cannot disable a server-wide
// fallback.
func (d *Dispatcher) ConfigureFallback(enabled bool, provider string) {
	d.fallbackEnabled = enabled
	d.fallbackProvider = provider
}

// RegisterClient adds a forge client to the dispatcher.
func (d *Dispatcher) RegisterClient(c scm.Client) {
	d.clients[c.Name()] = c
	d.resolvers[c.Name()] = policy.NewResolver(c, d.policyPath)
}

// DispatchGitHub classifies and processes a GitHub webhook delivery. A
// non-nil error means the payload could not be parsed; review failures are
// reported inside the Result instead so the sender is not driven into a
// retry loop.
func (d *Dispatcher) DispatchGitHub(ctx context.Context, eventType string, payload []byte) (Result, error) {
	d.metrics.WebhookReceived()

	evt, err := ClassifyGitHub(eventType, payload, d.trigger)
	if err != nil {
		return Result{}, err
	}
	return d.dispatch(ctx, evt), nil
}

// DispatchGitLab classifies and processes a GitLab webhook delivery.
func (d *Dispatcher) DispatchGitLab(ctx context.Context, eventType string, payload []byte) (Result, error) {
	d.metrics.WebhookReceived()

	evt, err := ClassifyGitLab(eventType, payload, d.trigger)
	if err != nil {
		return Result{}, err
	}
	return d.dispatch(ctx, evt), nil
}

func (d *Dispatcher) dispatch(ctx context.Context, evt *Event) Result {
	if !evt.Reviewable {
		log.Printf("[dispatch] skipping %s %s event: %s", evt.Forge, evt.Type, evt.SkipReason)
		return Result{Processed: false, Reason: evt.SkipReason}
	}

	client, ok := d.clients[evt.Forge]
	if !ok {
		log.Printf("[dispatch] no client registered for forge %s", evt.Forge)
		return Result{Processed: false, Error: fmt.Sprintf("forge %s not configured", evt.Forge)}
	}

	if !d.deduper.ShouldReview(evt.Owner, evt.Repo, evt.Number) {
		log.Printf("[dispatch] %s/%s#%d reviewed recently, skipping", evt.Owner, evt.Repo, evt.Number)
		return Result{Processed: false, Reason: "recently processed"}
	}

	result, err := d.runReview(ctx, client, evt)
	if err != nil {
		log.Printf("[dispatch] review of %s/%s#%d failed: %v", evt.Owner, evt.Repo, evt.Number, err)
		d.metrics.SetLastError(err.Error())

		// Surface the failure on the pull request, best effort.
		body := review.FormatFailureComment(err)
		if _, perr := client.CreateComment(ctx, evt.Owner, evt.Repo, evt.Number, body); perr != nil {
			log.Printf("[dispatch] posting failure comment on %s/%s#%d failed: %v", evt.Owner, evt.Repo, evt.Number, perr)
		}

		return Result{Processed: false, Error: err.Error()}
	}

	return result
}

func (d *Dispatcher) runReview(ctx context.Context, client scm.Client, evt *Event) (Result, error) {
	pr, err := client.GetPullRequest(ctx, evt.Owner, evt.Repo, evt.Number)
	if err != nil {
		return Result{}, fmt.Errorf("fetching pull request: %w", err)
	}

	files, err := client.GetChangedFiles(ctx, evt.Owner, evt.Repo, evt.Number)
	if err != nil {
		return Result{}, fmt.Errorf("fetching changed files: %w", err)
	}
	if len(files) == 0 {
		return Result{Processed: false, Reason: "no files changed"}, nil
	}

	pol := d.resolvers[evt.Forge].Resolve(ctx, evt.Owner, evt.Repo, pr.HeadRef)
	if !pol.General.Enabled {
		return Result{Processed: false, Reason: "reviews disabled by repository policy"}, nil
	}

	size := 0
	for _, f := range files {
		size += f.Additions + f.Deletions
	}
	if size < pol.General.MinSize {
		return Result{Processed: false, Reason: "change below minimum review size"}, nil
	}
	if pol.General.MaxSize > 0 && size > pol.General.MaxSize {
		return Result{Processed: false, Reason: "change exceeds maximum review size"}, nil
	}

	snap := &review.Snapshot{
		Owner:  evt.Owner,
		Repo:   evt.Repo,
		Number: pr.Number,
		Title:  pr.Title,
		Body:   pr.Description,
		Files:  make([]review.File, len(files)),
	}
	for i, f := range files {
		snap.Files[i] = review.File{
			Path:      f.Path,
			IsBinary:  f.IsBinary,
			Patch:     f.Patch,
			Additions: f.Additions,
			Deletions: f.Deletions,
		}
	}

	promptText := d.builder.Build(snap, pol)

	opts := llm.Options{
		Provider:         pol.AI.Provider,
		ModelID:          pol.AI.ModelID,
		MaxTokens:        pol.AI.MaxTokens,
		Temperature:      pol.AI.Temperature,
		EnableFallback:   pol.AI.EnableFallback || d.fallbackEnabled,
		FallbackProvider: pol.AI.FallbackProvider,
	}
	if opts.FallbackProvider == "" {
		opts.FallbackProvider = d.fallbackProvider
	}

	invocation, err := d.manager.Invoke(ctx, promptText, opts)
	if err != nil {
		return Result{}, err
	}
	if invocation.UsedFallback {
		log.Printf("[dispatch] %s/%s#%d reviewed via fallback provider %s", evt.Owner, evt.Repo, evt.Number, invocation.Provider)
	}

	body := review.FormatComment(invocation.Content, invocation.Provider, invocation.ModelID)
	commentID, err := client.CreateComment(ctx, evt.Owner, evt.Repo, evt.Number, body)
	if err != nil {
		return Result{}, fmt.Errorf("posting comment: %w", err)
	}

	d.deduper.Record(evt.Owner, evt.Repo, evt.Number, commentID)
	d.metrics.WebhookProcessed()
	d.metrics.CommentPosted()

	if rate := client.RateLimit(); rate.Remaining > 0 && rate.Remaining < lowRateThreshold {
		log.Printf("[dispatch] %s rate limit low: %d remaining, resets %s", client.Name(), rate.Remaining, rate.Reset)
	}

	log.Printf("[dispatch] posted review comment %d on %s/%s#%d", commentID, evt.Owner, evt.Repo, evt.Number)
	return Result{Processed: true, CommentID: commentID}, nil
}
