// Package common holds the JSON response helpers shared by all handlers.
// Success bodies are the DTO itself; error bodies are {"error": message}.
package common

import (
	"encoding/json"
	"net/http"

	apperrors "mysre-backend/pkg/errors"
)

// RespondJSON writes payload as the response body with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// RespondError writes {"error": message} with the given status.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]any{"error": message})
}

// RespondAppError maps err through the error taxonomy and writes it.
func RespondAppError(w http.ResponseWriter, err error) {
	status, message := apperrors.Status(err)
	RespondError(w, status, message)
}

// DecodeBody decodes a JSON request body into target, mapping any decode
// failure to a validation error.
func DecodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return apperrors.NewValidationError("request body is required")
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return apperrors.NewValidationError("invalid JSON body")
	}
	return nil
}
