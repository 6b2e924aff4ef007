// Package httpapi is the server-rendered product console.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/product-console/internal/apiclient"
	"github.com/fairyhunter13/product-console/internal/model"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// statusFor maps an API or validation error to the status of the re-rendered page.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apiclient.ErrNoToken), apiclient.IsUnauthorized(err):
		return http.StatusUnauthorized
	case apiclient.StatusCode(err) == http.StatusNotFound:
		return http.StatusNotFound
	case apiclient.StatusCode(err) >= 400 && apiclient.StatusCode(err) < 500:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
