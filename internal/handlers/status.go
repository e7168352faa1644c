package handlers

import (
	"encoding/json"
	"net/http"

	"openio-assistant/internal/contextutil"
	"openio-assistant/internal/index"
)

// StatusHandler reports whether an index is available.
type StatusHandler struct {
	manager *index.Manager
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(manager *index.Manager) *StatusHandler {
	return &StatusHandler{manager: manager}
}

// StatusResponse represents the index status.
type StatusResponse struct {
	Indexed  bool   `json:"indexed"`
	Chunks   int    `json:"chunks"`
	RootHash string `json:"rootHash,omitempty"`
	Source   string `json:"source,omitempty"`
}

// ServeHTTP reports index availability without triggering a build.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	resp := StatusResponse{}
	if meta, ok := h.manager.Status(); ok {
		resp.Indexed = true
		resp.Chunks = meta.Chunks
		resp.RootHash = meta.RootHash
		resp.Source = meta.Source
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
