package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/hoojinguyen/ai-pr-review/internal/event"
)

// Dispatch hands a verified webhook delivery to the review pipeline. The
// error covers unparseable payloads only; review outcomes live in the Result.
type Dispatch func(ctx context.Context, eventType string, payload []byte) (event.Result, error)

// GitHubHandler verifies and routes GitHub webhook requests.
type GitHubHandler struct {
	secret   string
	dispatch Dispatch
}

// NewGitHubHandler creates a new GitHub webhook handler.
func NewGitHubHandler(secret string, dispatch Dispatch) *GitHubHandler {
	return &GitHubHandler{
		secret:   secret,
		dispatch: dispatch,
	}
}

// ServeHTTP implements http.Handler.
func (h *GitHubHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Hub-Signature-256")
	if signature == "" {
		http.Error(w, "missing signature", http.StatusUnauthorized)
		return
	}

	if !h.verifySignature(body, signature) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	result, err := h.dispatch(r.Context(), r.Header.Get("X-GitHub-Event"), body)
	if err != nil {
		http.Error(w, "failed to parse payload", http.StatusBadRequest)
		return
	}

	writeResult(w, result)
}

// verifySignature checks the HMAC-SHA256 payload signature.
func (h *GitHubHandler) verifySignature(payload []byte, signature string) bool {
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	return hmac.Equal(sig, expected)
}

// writeResult answers 200 regardless of review outcome so the forge does not
// retry deliveries whose failure is on our side.
func writeResult(w http.ResponseWriter, result event.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("[webhook] writing response: %v", err)
	}
}
