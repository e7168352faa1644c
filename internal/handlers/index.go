package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"openio-assistant/internal/contextutil"
	"openio-assistant/internal/index"
)

// IndexHandler handles HTTP requests for building or rebuilding the index.
type IndexHandler struct {
	manager *index.Manager
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(manager *index.Manager) *IndexHandler {
	return &IndexHandler{manager: manager}
}

// IndexRequest represents the optional request payload for index builds.
// With a root hash the persisted index is fetched from the durable store;
// without one the index is rebuilt fresh from the source document.
type IndexRequest struct {
	RootHash string `json:"rootHash,omitempty"`
}

// IndexResponse represents the response from the index endpoint.
type IndexResponse struct {
	Chunks   int    `json:"chunks"`
	Source   string `json:"source"`
	RootHash string `json:"rootHash,omitempty"`
	Message  string `json:"message"`
}

// ServeHTTP triggers a synchronous index build and reports its outcome.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// The body is optional; an empty body means "rebuild from source".
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	logger.InfoContext(ctx, "index build triggered via API", "root_hash", req.RootHash)

	_, meta, err := h.manager.Rebuild(ctx, req.RootHash)
	if err != nil {
		logger.ErrorContext(ctx, "index build failed", "error", err)
		writeServiceError(w, err, "Indexing failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(IndexResponse{
		Chunks:   meta.Chunks,
		Source:   meta.Source,
		RootHash: meta.RootHash,
		Message:  "RAG index built successfully",
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
