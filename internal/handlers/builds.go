package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"openio-assistant/internal/contextutil"
	"openio-assistant/internal/storage"
)

// BuildsHandler lists recent index builds.
type BuildsHandler struct {
	builds storage.BuildStore
}

// NewBuildsHandler creates a new BuildsHandler.
func NewBuildsHandler(builds storage.BuildStore) *BuildsHandler {
	return &BuildsHandler{builds: builds}
}

// BuildResponse represents one build record in the HTTP response.
type BuildResponse struct {
	ID         string    `json:"id"`
	RootHash   string    `json:"rootHash,omitempty"`
	Source     string    `json:"source"`
	Chunks     int       `json:"chunks"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BuildsResponse represents the response from the builds endpoint.
type BuildsResponse struct {
	Builds []BuildResponse `json:"builds"`
}

// ServeHTTP lists recent builds, newest first.
func (h *BuildsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 20
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		n, err := strconv.Atoi(limitParam)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	records, err := h.builds.ListRecent(ctx, limit)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list builds", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list builds")
		return
	}

	resp := BuildsResponse{Builds: make([]BuildResponse, 0, len(records))}
	for _, rec := range records {
		resp.Builds = append(resp.Builds, BuildResponse{
			ID:         rec.ID,
			RootHash:   rec.RootHash,
			Source:     rec.Source,
			Chunks:     rec.Chunks,
			DurationMs: rec.DurationMs,
			CreatedAt:  rec.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
