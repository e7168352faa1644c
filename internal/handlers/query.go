package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"openio-assistant/internal/contextutil"
	"openio-assistant/internal/llm"
	"openio-assistant/internal/rag"
)

// QueryHandler handles HTTP requests for RAG queries.
type QueryHandler struct {
	engine rag.Engine
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(engine rag.Engine) *QueryHandler {
	return &QueryHandler{engine: engine}
}

// QueryRequest represents the HTTP request payload for RAG queries.
// This mirrors rag.QueryRequest but is defined here for HTTP layer separation.
type QueryRequest struct {
	Question string        `json:"question"`
	History  []llm.Message `json:"history,omitempty"`
}

// QueryResponse represents the HTTP response payload for RAG queries.
type QueryResponse struct {
	Answer     string `json:"answer"`
	ChunksUsed int    `json:"chunksUsed"`
}

// ServeHTTP answers a question against the indexed document.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	resp, err := h.engine.Query(ctx, rag.QueryRequest{
		Question: req.Question,
		History:  req.History,
	})
	if err != nil {
		logger.ErrorContext(ctx, "query failed", "error", err)
		writeServiceError(w, err, "Query failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(QueryResponse{
		Answer:     resp.Answer,
		ChunksUsed: resp.ChunksUsed,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
