package llm

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicProvider implements Provider for Anthropic's API.
type AnthropicProvider struct {
	api    *anthropic.Client
	apiKey string
	model  string
}

// NewAnthropic creates an Anthropic provider with the given API key and
// default model.
func NewAnthropic(apiKey, model string) *AnthropicProvider {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)

	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicProvider{
		api:    &client,
		apiKey: apiKey,
		model:  model,
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// IsAvailable reports whether an API key is configured.
func (p *AnthropicProvider) IsAvailable() bool { return p.apiKey != "" }

// Invoke sends the prompt to the Anthropic messages API and returns the first
// text block of the response. An empty response yields an empty string.
func (p *AnthropicProvider) Invoke(ctx context.Context, prompt string, opts Options) (string, error) {
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

	messages, _ := p.FormatMessages([]Message{{Role: "user", Content: prompt}}).([]anthropic.MessageParam)

	msg, err := p.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		Messages:    messages,
	})
	if err != nil {
		return "", &InvocationError{Provider: p.Name(), Err: err}
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}

// FormatMessages converts neutral messages to Anthropic message params.
func (p *AnthropicProvider) FormatMessages(messages []Message) interface{} {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}
