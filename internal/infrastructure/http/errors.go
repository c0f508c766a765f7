package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the JSON error envelope of the /api endpoints.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// WriteError writes an ErrorResponse with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, message string, errors []string, log *slog.Logger) {
	WriteJSON(w, statusCode, ErrorResponse{
		Message: message,
		Errors:  errors,
	}, log)
}

// WriteJSON encodes payload as the response body.
func WriteJSON(w http.ResponseWriter, statusCode int, payload any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// status already sent
		if log != nil {
			log.Error("failed to encode response", "error", err)
		}
	}
}
