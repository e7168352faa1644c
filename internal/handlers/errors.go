package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"openio-assistant/internal/service"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// writeServiceError maps the error taxonomy onto HTTP status codes: caller
// mistakes are 400s, absent indexes and handles are 404s, upstream failures
// are 502/503, everything else is a 500 with the fallback message.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidParameter):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoIndex):
		writeError(w, http.StatusNotFound, "Index not built yet. Please index the document first.")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrServiceFailure):
		writeError(w, http.StatusBadGateway, "External service error")
	case errors.Is(err, service.ErrTransport):
		writeError(w, http.StatusServiceUnavailable, "Durable storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
