package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"openio-assistant/internal/contextutil"
	"openio-assistant/internal/index"
)

// Probe reports whether an external-service client has a usable
// configuration. Both LLM clients satisfy it.
type Probe interface {
	Configured() bool
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	manager  *index.Manager
	embedder index.Embedder
	chat     Probe
	storage  Probe
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(manager *index.Manager, embedder index.Embedder, chat, storage Probe) *HealthHandler {
	return &HealthHandler{
		manager:  manager,
		embedder: embedder,
		chat:     chat,
		storage:  storage,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy" or "degraded"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`
}

// ServeHTTP reports the service's configuration and index state. Everything
// here is observable in-process; no external calls are made, so the check is
// cheap enough for aggressive polling.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	checks := make(map[string]string)
	degraded := false

	if _, ok := h.manager.Status(); ok {
		checks["index"] = "ok"
	} else {
		checks["index"] = "empty"
		degraded = true
	}

	if h.embedder.Degraded() {
		checks["embeddings"] = "degraded"
		degraded = true
	} else {
		checks["embeddings"] = "ok"
	}

	if h.chat.Configured() {
		checks["chat"] = "ok"
	} else {
		checks["chat"] = "degraded"
		degraded = true
	}

	if h.storage.Configured() {
		checks["storage_gateway"] = "ok"
	} else {
		checks["storage_gateway"] = "unconfigured"
	}

	status := "healthy"
	if degraded {
		status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}
