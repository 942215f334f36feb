package llm

import (
	"context"
	"errors"
	"fmt"
)

// Backend-reasonable fallbacks applied when neither the call options nor the
// provider configuration specify a value.
const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.3
)

// ErrNoProviderAvailable indicates no model provider is registered.
var ErrNoProviderAvailable = errors.New("no model provider available")

// InvocationError wraps a backend failure with the provider that raised it.
type InvocationError struct {
	Provider string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Message is a provider-neutral chat message.
type Message struct {
	Role    string // user, assistant
	Content string
}

// Options control a single model invocation.
type Options struct {
	// Provider selects a registered provider by name; empty means the default.
	Provider string

	// ModelID overrides the provider's configured model.
	ModelID string

	// MaxTokens caps the response length; zero uses the provider default.
	MaxTokens int

	// Temperature controls sampling; nil uses the provider default,
	// so an explicit 0 is honored.
	Temperature *float64

	// EnableFallback permits one attempt on FallbackProvider after a failure.
	EnableFallback   bool
	FallbackProvider string
}

// Result is the outcome of a model invocation.
type Result struct {
	Content      string
	Provider     string
	ModelID      string
	UsedFallback bool
}

// Provider is a named backend capable of turning a prompt into review text.
type Provider interface {
	// Name returns the provider name (anthropic, openai, ollama).
	Name() string

	// IsAvailable reports whether the provider is configured. It never
	// performs a network probe.
	IsAvailable() bool

	// Invoke sends the prompt to the backend and returns the response text.
	Invoke(ctx context.Context, prompt string, opts Options) (string, error)

	// FormatMessages converts neutral messages to the backend-native list.
	FormatMessages(messages []Message) interface{}
}
