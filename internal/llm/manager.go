package llm

import (
	"context"
	"log"
	"sync"

	"github.com/hoojinguyen/ai-pr-review/internal/metrics"
)

// Manager owns the provider registry, default-provider selection, and
// fallback orchestration.
type Manager struct {
	mu          sync.RWMutex
	providers   map[string]Provider
	defaultName string // configured preference
	current     string // active default
	metrics     *metrics.Registry
}

// NewManager creates a manager whose default provider will be the one named
// defaultName once registered, or the first registration otherwise.
func NewManager(defaultName string, m *metrics.Registry) *Manager {
	return &Manager{
		providers:   make(map[string]Provider),
		defaultName: defaultName,
		metrics:     m,
	}
}

// Register adds a provider to the registry. The first registered provider
// becomes the default; a later registration matching the configured default
// name takes over. Registering a duplicate name replaces the earlier entry.
func (m *Manager) Register(p Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := p.Name()
	m.providers[name] = p

	if m.current == "" || name == m.defaultName {
		m.current = name
	}
}

// ListAvailable returns the names of registered providers whose configuration
// is complete.
func (m *Manager) ListAvailable() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name, p := range m.providers {
		if p.IsAvailable() {
			names = append(names, name)
		}
	}
	return names
}

// Invoke resolves the primary provider, attempts the invocation, and makes a
// single fallback attempt if the options allow one. When the fallback also
// fails, its error (not the primary's) propagates.
func (m *Manager) Invoke(ctx context.Context, prompt string, opts Options) (*Result, error) {
	primary, ok := m.resolve(opts.Provider)
	if !ok {
		return nil, ErrNoProviderAvailable
	}

	content, err := m.attempt(ctx, primary, prompt, opts)
	if err == nil {
		return &Result{
			Content:  content,
			Provider: primary.Name(),
			ModelID:  opts.ModelID,
		}, nil
	}

	log.Printf("[llm] provider %s failed: %v", primary.Name(), err)

	fallback, ok := m.fallbackFor(primary, opts)
	if !ok {
		return nil, err
	}

	content, ferr := m.attempt(ctx, fallback, prompt, opts)
	if ferr != nil {
		log.Printf("[llm] fallback provider %s failed: %v", fallback.Name(), ferr)
		return nil, ferr
	}

	return &Result{
		Content:      content,
		Provider:     fallback.Name(),
		ModelID:      opts.ModelID,
		UsedFallback: true,
	}, nil
}

func (m *Manager) attempt(ctx context.Context, p Provider, prompt string, opts Options) (string, error) {
	log.Printf("[llm] invoking provider %s", p.Name())
	m.metrics.ModelCall()

	content, err := p.Invoke(ctx, prompt, opts)
	if err != nil {
		m.metrics.ModelCallFailed()
		return "", err
	}

	m.metrics.ModelCallSucceeded()
	return content, nil
}

// resolve picks the requested provider if registered, else the current
// default.
func (m *Manager) resolve(name string) (Provider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if name != "" {
		if p, ok := m.providers[name]; ok {
			return p, true
		}
	}
	if p, ok := m.providers[m.current]; ok {
		return p, true
	}
	return nil, false
}

// fallbackFor returns the fallback provider if the options name a distinct
// registered one.
func (m *Manager) fallbackFor(primary Provider, opts Options) (Provider, bool) {
	if !opts.EnableFallback || opts.FallbackProvider == "" || opts.FallbackProvider == primary.Name() {
		return nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.providers[opts.FallbackProvider]
	return p, ok
}
