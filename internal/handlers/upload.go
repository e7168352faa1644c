package handlers

import (
	"encoding/json"
	"net/http"

	"openio-assistant/internal/contextutil"
	"openio-assistant/internal/index"
)

// UploadHandler persists the current index to the durable store.
type UploadHandler struct {
	manager *index.Manager
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(manager *index.Manager) *UploadHandler {
	return &UploadHandler{manager: manager}
}

// UploadResponse represents the response from the upload endpoint.
type UploadResponse struct {
	RootHash string `json:"rootHash"`
	Message  string `json:"message"`
}

// ServeHTTP uploads the serialized current index and returns its root hash.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rootHash, err := h.manager.PersistCurrent(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "upload failed", "error", err)
		writeServiceError(w, err, "Upload failed")
		return
	}

	logger.InfoContext(ctx, "index uploaded to durable storage", "root_hash", rootHash)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(UploadResponse{
		RootHash: rootHash,
		Message:  "Index uploaded successfully to durable storage",
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
