package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hoojinguyen/ai-pr-review/internal/config"
	"github.com/hoojinguyen/ai-pr-review/internal/event"
	"github.com/hoojinguyen/ai-pr-review/internal/llm"
	"github.com/hoojinguyen/ai-pr-review/internal/metrics"
	"github.com/hoojinguyen/ai-pr-review/internal/review"
	"github.com/hoojinguyen/ai-pr-review/internal/scm/github"
	"github.com/hoojinguyen/ai-pr-review/internal/scm/gitlab"
	"github.com/hoojinguyen/ai-pr-review/internal/server"
	"github.com/joho/godotenv"
)

var version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "version":
		fmt.Printf("ai-pr-review v%s\n", version)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: ai-pr-review <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve    Start the webhook server")
	fmt.Println("  version  Print version information")
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to config file")
	envFile := fs.String("env-file", "", "Path to .env file (optional)")
	fs.Parse(args)

	// Load .env file if specified or exists
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Printf("Warning: could not load env file %s: %v", *envFile, err)
		}
	} else {
		// Try default locations
		godotenv.Load(".env")
		godotenv.Load("/etc/ai-pr-review/ai-pr-review.env")
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	m := metrics.New()

	// Model providers
	manager := llm.NewManager(cfg.AI.DefaultProvider, m)
	if cfg.AI.Anthropic.APIKey != "" {
		manager.Register(llm.NewAnthropic(cfg.AI.Anthropic.APIKey, cfg.AI.Anthropic.Model))
	}
	if cfg.AI.OpenAI.APIKey != "" {
		manager.Register(llm.NewOpenAI(cfg.AI.OpenAI.APIKey, cfg.AI.OpenAI.Model, cfg.AI.OpenAI.BaseURL))
	}
	if cfg.AI.Ollama.Host != "" {
		manager.Register(llm.NewOllama(cfg.AI.Ollama.Host, cfg.AI.Ollama.Model))
	}
	available := manager.ListAvailable()
	if len(available) == 0 {
		log.Println("Warning: no model provider configured, reviews will fail")
	} else {
		log.Printf("Model providers: %v", available)
	}

	// Review pipeline
	cooldown := time.Duration(cfg.Review.CooldownSeconds) * time.Second
	deduper := review.NewDeduper(cooldown)
	dispatcher := event.NewDispatcher(manager, deduper, m, cfg.Review.TriggerToken, cfg.Review.PolicyPath)
	dispatcher.ConfigureFallback(cfg.AI.EnableFallback, cfg.AI.FallbackProvider)

	// Forge clients
	if cfg.Forges.GitHub.Token != "" {
		dispatcher.RegisterClient(github.New(cfg.Forges.GitHub.Token))
		log.Println("GitHub client configured")
	}
	if cfg.Forges.GitLab.Token != "" {
		var opts []gitlab.Option
		if cfg.Forges.GitLab.BaseURL != "" {
			opts = append(opts, gitlab.WithBaseURL(cfg.Forges.GitLab.BaseURL))
		}
		dispatcher.RegisterClient(gitlab.New(cfg.Forges.GitLab.Token, opts...))
		log.Println("GitLab client configured")
	}

	srv := server.New(cfg, dispatcher, manager, m)

	log.Printf("Starting ai-pr-review server on %s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := srv.ListenAndServeWithShutdown(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
