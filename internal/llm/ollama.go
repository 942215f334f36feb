package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOllamaHost = "http://localhost:11434"

const defaultOllamaModel = "llama3"

// OllamaProvider implements Provider for Ollama and other OpenAI-compatible
// local servers.
type OllamaProvider struct {
	model   string
	baseURL string
	client  *http.Client
}

// NewOllama creates an Ollama provider. No API key is required.
func NewOllama(host, model string) *OllamaProvider {
	if host == "" {
		host = defaultOllamaHost
	}

	// Normalize host: strip trailing /, /v1, /v1/chat/completions
	host = strings.TrimRight(host, "/")
	host = strings.TrimSuffix(host, "/v1/chat/completions")
	host = strings.TrimSuffix(host, "/v1")

	if model == "" {
		model = defaultOllamaModel
	}

	return &OllamaProvider{
		model:   model,
		baseURL: host + "/v1/chat/completions",
		client:  &http.Client{Timeout: 300 * time.Second},
	}
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string { return "ollama" }

// IsAvailable always reports true; a local server needs no credentials.
func (p *OllamaProvider) IsAvailable() bool { return true }

// Invoke sends the prompt to the local chat completions endpoint.
func (p *OllamaProvider) Invoke(ctx context.Context, prompt string, opts Options) (string, error) {
	model := opts.ModelID
	if model == "" {
		model = p.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := defaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	messages, _ := p.FormatMessages([]Message{{Role: "user", Content: prompt}}).([]chatMessage)

	body := chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", &InvocationError{Provider: p.Name(), Err: fmt.Errorf("marshaling request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", &InvocationError{Provider: p.Name(), Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return "", &InvocationError{Provider: p.Name(), Err: fmt.Errorf("sending request: %w", err)}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", &InvocationError{Provider: p.Name(), Err: fmt.Errorf("reading response: %w", err)}
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", &InvocationError{
			Provider: p.Name(),
			Err:      fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, respBody),
		}
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &InvocationError{Provider: p.Name(), Err: fmt.Errorf("parsing response: %w", err)}
	}

	if len(result.Choices) == 0 {
		return "", nil
	}
	return result.Choices[0].Message.Content, nil
}

// FormatMessages converts neutral messages to chat completion messages.
func (p *OllamaProvider) FormatMessages(messages []Message) interface{} {
	out := make([]chatMessage, len(messages))
	for i, m := range messages {
		out[i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
