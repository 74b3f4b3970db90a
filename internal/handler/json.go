package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/art-market/internal/domain"
)

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeError sends a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// readJSON decodes the request body into the given destination.
func readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// errorStatus maps a gateway error onto an HTTP status and a message that
// is safe to show to the client.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "An account with that email already exists."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, domain.ErrNoSession), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Not authenticated."
	case errors.Is(err, domain.ErrPermission):
		return http.StatusForbidden, "You can only change your own artwork."
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found."
	default:
		return http.StatusInternalServerError, "An unexpected error occurred. Please try again."
	}
}

// writeGatewayError writes err as a JSON error, logging unexpected ones.
func writeGatewayError(w http.ResponseWriter, op string, err error) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error(op, "error", err)
	}
	writeError(w, status, msg)
}
