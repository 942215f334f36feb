package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/hoojinguyen/ai-pr-review/internal/metrics"
)

// fakeProvider is a scriptable Provider for manager tests.
type fakeProvider struct {
	name      string
	available bool
	content   string
	err       error
	calls     int
}

func (f *fakeProvider) Name() string      { return f.name }
func (f *fakeProvider) IsAvailable() bool { return f.available }

func (f *fakeProvider) Invoke(ctx context.Context, prompt string, opts Options) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func (f *fakeProvider) FormatMessages(messages []Message) interface{} {
	return messages
}

func TestManager_NoProviders(t *testing.T) {
	m := NewManager("anthropic", metrics.New())

	_, err := m.Invoke(context.Background(), "prompt", Options{})
	if !errors.Is(err, ErrNoProviderAvailable) {
		t.Errorf("Invoke() error = %v, want ErrNoProviderAvailable", err)
	}
}

func TestManager_DefaultIsFirstRegistered(t *testing.T) {
	m := NewManager("", metrics.New())
	first := &fakeProvider{name: "openai", available: true, content: "from openai"}
	second := &fakeProvider{name: "ollama", available: true, content: "from ollama"}
	m.Register(first)
	m.Register(second)

	result, err := m.Invoke(context.Background(), "prompt", Options{})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result.Provider != "openai" {
		t.Errorf("Provider = %q, want first registered %q", result.Provider, "openai")
	}
}

func TestManager_ConfiguredDefaultOverridesFirst(t *testing.T) {
	m := NewManager("anthropic", metrics.New())
	m.Register(&fakeProvider{name: "openai", available: true, content: "from openai"})
	m.Register(&fakeProvider{name: "anthropic", available: true, content: "from anthropic"})

	result, err := m.Invoke(context.Background(), "prompt", Options{})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result.Provider != "anthropic" {
		t.Errorf("Provider = %q, want configured default %q", result.Provider, "anthropic")
	}
}

func TestManager_ExplicitProviderOption(t *testing.T) {
	m := NewManager("anthropic", metrics.New())
	m.Register(&fakeProvider{name: "anthropic", available: true, content: "from anthropic"})
	m.Register(&fakeProvider{name: "ollama", available: true, content: "from ollama"})

	result, err := m.Invoke(context.Background(), "prompt", Options{Provider: "ollama"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result.Content != "from ollama" {
		t.Errorf("Content = %q, want %q", result.Content, "from ollama")
	}
}

func TestManager_UnknownProviderFallsBackToDefault(t *testing.T) {
	m := NewManager("", metrics.New())
	m.Register(&fakeProvider{name: "anthropic", available: true, content: "from anthropic"})

	result, err := m.Invoke(context.Background(), "prompt", Options{Provider: "no-such"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result.Provider != "anthropic" {
		t.Errorf("Provider = %q, want default %q", result.Provider, "anthropic")
	}
}

func TestManager_FallbackSucceeds(t *testing.T) {
	m := NewManager("", metrics.New())
	primary := &fakeProvider{name: "anthropic", available: true, err: errors.New("backend down")}
	fallback := &fakeProvider{name: "openai", available: true, content: "fallback review"}
	m.Register(primary)
	m.Register(fallback)

	result, err := m.Invoke(context.Background(), "prompt", Options{
		EnableFallback:   true,
		FallbackProvider: "openai",
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !result.UsedFallback {
		t.Error("UsedFallback = false, want true")
	}
	if result.Content != "fallback review" {
		t.Errorf("Content = %q, want fallback content", result.Content)
	}
	if result.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", result.Provider, "openai")
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, fallback.calls)
	}
}

func TestManager_NoFallbackPropagatesPrimaryError(t *testing.T) {
	m := NewManager("", metrics.New())
	primaryErr := errors.New("backend down")
	m.Register(&fakeProvider{name: "anthropic", available: true, err: primaryErr})

	_, err := m.Invoke(context.Background(), "prompt", Options{})
	if !errors.Is(err, primaryErr) {
		t.Errorf("Invoke() error = %v, want primary error unchanged", err)
	}
}

func TestManager_FallbackErrorPropagates(t *testing.T) {
	m := NewManager("", metrics.New())
	primaryErr := errors.New("primary down")
	fallbackErr := errors.New("fallback down")
	m.Register(&fakeProvider{name: "anthropic", available: true, err: primaryErr})
	m.Register(&fakeProvider{name: "openai", available: true, err: fallbackErr})

	_, err := m.Invoke(context.Background(), "prompt", Options{
		EnableFallback:   true,
		FallbackProvider: "openai",
	})
	if !errors.Is(err, fallbackErr) {
		t.Errorf("Invoke() error = %v, want the fallback provider's error", err)
	}
}

func TestManager_FallbackToSelfIgnored(t *testing.T) {
	m := NewManager("", metrics.New())
	primaryErr := errors.New("backend down")
	primary := &fakeProvider{name: "anthropic", available: true, err: primaryErr}
	m.Register(primary)

	_, err := m.Invoke(context.Background(), "prompt", Options{
		EnableFallback:   true,
		FallbackProvider: "anthropic",
	})
	if !errors.Is(err, primaryErr) {
		t.Errorf("Invoke() error = %v, want primary error", err)
	}
	if primary.calls != 1 {
		t.Errorf("primary.calls = %d, want 1 (no self-fallback)", primary.calls)
	}
}

func TestManager_ListAvailable(t *testing.T) {
	m := NewManager("", metrics.New())
	m.Register(&fakeProvider{name: "anthropic", available: true})
	m.Register(&fakeProvider{name: "openai", available: false})

	names := m.ListAvailable()
	if len(names) != 1 || names[0] != "anthropic" {
		t.Errorf("ListAvailable() = %v, want [anthropic]", names)
	}
}
