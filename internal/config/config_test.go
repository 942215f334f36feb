package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "127.0.0.1"
  port: 9090

forges:
  github:
    token: "ghp_test"
    webhook_secret: "hook-secret"

ai:
  default_provider: "openai"
  openai:
    api_key: "sk-test"
    model: "gpt-4o"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Forges.GitHub.Token != "ghp_test" {
		t.Errorf("Forges.GitHub.Token = %q, want %q", cfg.Forges.GitHub.Token, "ghp_test")
	}
	if cfg.AI.DefaultProvider != "openai" {
		t.Errorf("AI.DefaultProvider = %q, want %q", cfg.AI.DefaultProvider, "openai")
	}
	if cfg.AI.OpenAI.Model != "gpt-4o" {
		t.Errorf("AI.OpenAI.Model = %q, want %q", cfg.AI.OpenAI.Model, "gpt-4o")
	}
}

func TestLoadConfig_DefaultsPreserved(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Only server section specified; review defaults must survive.
	if err := os.WriteFile(configPath, []byte("server:\n  port: 7000\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 7000)
	}
	if cfg.Server.ShutdownGraceSeconds != 30 {
		t.Errorf("Server.ShutdownGraceSeconds = %d, want %d", cfg.Server.ShutdownGraceSeconds, 30)
	}
	if cfg.Review.CooldownSeconds != 300 {
		t.Errorf("Review.CooldownSeconds = %d, want %d", cfg.Review.CooldownSeconds, 300)
	}
	if cfg.Review.TriggerToken != "/ai-review" {
		t.Errorf("Review.TriggerToken = %q, want %q", cfg.Review.TriggerToken, "/ai-review")
	}
	if cfg.Review.PolicyPath != ".ai-review.yml" {
		t.Errorf("Review.PolicyPath = %q, want %q", cfg.Review.PolicyPath, ".ai-review.yml")
	}
}

func TestLoadConfig_EnvSubstitution(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_ANTHROPIC_KEY", "sk-ant-secret")

	configContent := `
ai:
  anthropic:
    api_key: "${TEST_ANTHROPIC_KEY}"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AI.Anthropic.APIKey != "sk-ant-secret" {
		t.Errorf("AI.Anthropic.APIKey = %q, want substituted env value", cfg.AI.Anthropic.APIKey)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for nonexistent file, got nil")
	}
}
