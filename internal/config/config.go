package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Forges ForgesConfig `yaml:"forges"`
	AI     AIConfig     `yaml:"ai"`
	Review ReviewConfig `yaml:"review"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// ShutdownGraceSeconds bounds how long a stopping server waits
	// for in-flight requests before giving up.
	ShutdownGraceSeconds int `yaml:"shutdown_grace_seconds"`
}

// ForgesConfig holds source-control forge configurations.
type ForgesConfig struct {
	GitHub GitHubConfig `yaml:"github"`
	GitLab GitLabConfig `yaml:"gitlab"`
}

// GitHubConfig holds GitHub-specific settings.
type GitHubConfig struct {
	Token         string `yaml:"token"`
	WebhookSecret string `yaml:"webhook_secret"`
}

// GitLabConfig holds GitLab-specific settings.
type GitLabConfig struct {
	Token         string `yaml:"token"`
	BaseURL       string `yaml:"base_url"`
	WebhookSecret string `yaml:"webhook_secret"`
}

// AIConfig holds model backend settings.
type AIConfig struct {
	DefaultProvider  string          `yaml:"default_provider"`
	EnableFallback   bool            `yaml:"enable_fallback"`
	FallbackProvider string          `yaml:"fallback_provider"`
	Anthropic        AnthropicConfig `yaml:"anthropic"`
	OpenAI           OpenAIConfig    `yaml:"openai"`
	Ollama           OllamaConfig    `yaml:"ollama"`
}

// AnthropicConfig holds Anthropic backend settings.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OpenAIConfig holds OpenAI backend settings.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// OllamaConfig holds Ollama backend settings.
type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// ReviewConfig holds review pipeline settings.
type ReviewConfig struct {
	CooldownSeconds int    `yaml:"cooldown_seconds"`
	TriggerToken    string `yaml:"trigger_token"`
	PolicyPath      string `yaml:"policy_path"`
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                 "0.0.0.0",
			Port:                 8080,
			ShutdownGraceSeconds: 30,
		},
		AI: AIConfig{
			DefaultProvider: "anthropic",
		},
		Review: ReviewConfig{
			CooldownSeconds: 300,
			TriggerToken:    "/ai-review",
			PolicyPath:      ".ai-review.yml",
		},
	}
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Substitute environment variables
	data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})

	// Start with defaults
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}
