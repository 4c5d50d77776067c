package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/oppkey/leadboard/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API
// endpoints: a machine-readable type plus a human-readable message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and the standard
// error body. Source and schema failures map to 502: the upstream export
// is what's broken, and the render is aborted rather than partial.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrAssetMissing):
			status = http.StatusNotFound
			errorType = "asset_missing"
		case errors.Is(err, apperror.ErrSourceUnavailable):
			status = http.StatusBadGateway
			errorType = "source_unavailable"
		case errors.Is(err, apperror.ErrSchemaMismatch):
			status = http.StatusBadGateway
			errorType = "schema_mismatch"
		}

		writeJSON(w, status, ErrorResponse{Error: errorType, Message: appErr.Message})
		return
	}

	// Untyped errors never leak their internals to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}
