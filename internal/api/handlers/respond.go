package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/roomshare/roomshare-be/internal/services"
)

// ErrorResponse is the structured error body returned for every failed
// request. Internal details never leave the server; unexpected errors
// are reported opaquely and logged with full context.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError translates a domain error into its HTTP status and the
// structured error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "An unexpected error occurred."

	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrBadRequest):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrUnauthenticated):
		status = http.StatusUnauthorized
		message = err.Error()
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("method", r.Method).Msg("Unhandled error")
	}

	writeJSON(w, status, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	})
}
