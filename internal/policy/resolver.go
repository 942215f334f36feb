package policy

import (
	"context"
	"errors"
	"log"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hoojinguyen/ai-pr-review/internal/scm"
)

// FileFetcher reads a file from a repository at a given ref.
type FileFetcher interface {
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
}

// Resolver fetches per-repository policy documents, merges them over the
// defaults, and caches the result per (owner, repo, ref) for the process
// lifetime.
type Resolver struct {
	fetcher FileFetcher
	path    string

	mu    sync.RWMutex
	cache map[string]Policy
}

// NewResolver creates a resolver reading the policy document at path.
func NewResolver(fetcher FileFetcher, path string) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		path:    path,
		cache:   make(map[string]Policy),
	}
}

// Resolve returns the effective policy for the given repository ref. Fetch
// and parse failures degrade to the default policy; either way the result is
// cached so the remote is not re-queried for the same triple.
func (r *Resolver) Resolve(ctx context.Context, owner, repo, ref string) Policy {
	key := owner + "/" + repo + "/" + ref

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	resolved := r.fetch(ctx, owner, repo, ref)

	r.mu.Lock()
	r.cache[key] = resolved
	r.mu.Unlock()

	return resolved
}

func (r *Resolver) fetch(ctx context.Context, owner, repo, ref string) Policy {
	data, err := r.fetcher.GetFileContent(ctx, owner, repo, r.path, ref)
	if errors.Is(err, scm.ErrNotFound) {
		log.Printf("[policy] no %s in %s/%s@%s, using defaults", r.path, owner, repo, ref)
		return Default()
	}
	if err != nil {
		log.Printf("[policy] warning: fetching %s from %s/%s@%s failed, using defaults: %v", r.path, owner, repo, ref, err)
		return Default()
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Printf("[policy] warning: parsing %s from %s/%s@%s failed, using defaults: %v", r.path, owner, repo, ref, err)
		return Default()
	}

	return Merge(Default(), &doc)
}

// ClearCache drops all cached policies.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	r.cache = make(map[string]Policy)
	r.mu.Unlock()
}
