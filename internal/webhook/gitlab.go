package webhook

import (
	"crypto/subtle"
	"io"
	"net/http"
)

// GitLabHandler verifies and routes GitLab webhook requests.
type GitLabHandler struct {
	secret   string
	dispatch Dispatch
}

// NewGitLabHandler creates a new GitLab webhook handler.
func NewGitLabHandler(secret string, dispatch Dispatch) *GitLabHandler {
	return &GitLabHandler{
		secret:   secret,
		dispatch: dispatch,
	}
}

// ServeHTTP implements http.Handler.
func (h *GitLabHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	token := r.Header.Get("X-Gitlab-Token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	result, err := h.dispatch(r.Context(), r.Header.Get("X-Gitlab-Event"), body)
	if err != nil {
		http.Error(w, "failed to parse payload", http.StatusBadRequest)
		return
	}

	writeResult(w, result)
}
