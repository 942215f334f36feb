package server

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/hoojinguyen/ai-pr-review/internal/config"
	"github.com/hoojinguyen/ai-pr-review/internal/event"
	"github.com/hoojinguyen/ai-pr-review/internal/llm"
	"github.com/hoojinguyen/ai-pr-review/internal/metrics"
	"github.com/hoojinguyen/ai-pr-review/internal/webhook"
)

// HealthResponse represents the health check response structure.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Uptime  int64                  `json:"uptime_seconds"`
	Checks  map[string]interface{} `json:"checks"`
	Metrics metrics.Snapshot       `json:"metrics"`
}

// Server is the HTTP server for the review service.
type Server struct {
	cfg        *config.Config
	mux        *http.ServeMux
	mu         sync.RWMutex // guards http and listener
	http       *http.Server
	listener   net.Listener
	ready      chan struct{} // closed when server is ready to accept connections
	dispatcher *event.Dispatcher
	manager    *llm.Manager
	metrics    *metrics.Registry
}

// New creates a new Server with the given config, dispatcher, and model
// manager. The manager is consulted by the health check only.
func New(cfg *config.Config, dispatcher *event.Dispatcher, manager *llm.Manager, m *metrics.Registry) *Server {
	s := &Server{
		cfg:        cfg,
		mux:        http.NewServeMux(),
		ready:      make(chan struct{}),
		dispatcher: dispatcher,
		manager:    manager,
		metrics:    m,
	}
	s.routes()
	return s
}

// Ready returns a channel that is closed when the server is ready to accept connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// routes sets up the HTTP routes.
func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/metrics", s.handleMetrics)

	if s.cfg.Forges.GitHub.WebhookSecret != "" {
		githubHandler := webhook.NewGitHubHandler(
			s.cfg.Forges.GitHub.WebhookSecret,
			s.dispatcher.DispatchGitHub,
		)
		s.mux.Handle("/webhook/github", githubHandler)
	}

	if s.cfg.Forges.GitLab.WebhookSecret != "" {
		gitlabHandler := webhook.NewGitLabHandler(
			s.cfg.Forges.GitLab.WebhookSecret,
			s.dispatcher.DispatchGitLab,
		)
		s.mux.Handle("/webhook/gitlab", gitlabHandler)
	}
}

// handleHealth responds with server health status. The server is degraded
// when no model provider is configured.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	providers := s.manager.ListAvailable()

	checks := map[string]interface{}{
		"providers":      providers,
		"github_webhook": s.cfg.Forges.GitHub.WebhookSecret != "",
		"gitlab_webhook": s.cfg.Forges.GitLab.WebhookSecret != "",
	}

	status := "ok"
	if len(providers) == 0 {
		status = "degraded"
	}

	health := HealthResponse{
		Status:  status,
		Uptime:  int64(s.metrics.Uptime().Seconds()),
		Checks:  checks,
		Metrics: s.metrics.Get(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleMetrics responds with current operational metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.metrics.Get()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}
