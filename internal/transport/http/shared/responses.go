// Package shared centralizes the JSON envelopes used by every handler so
// error translation and encoding stay consistent across modules.
package shared

import (
	"encoding/json"
	"net/http"

	"taskhub/internal/audit"
	dErrors "taskhub/pkg/domain-errors"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into its HTTP envelope and records
// the message on the request's audit trail so the finalized entry carries
// the real failure cause.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	message := dErrors.MessageOf(err)
	if trail := audit.TrailFrom(r.Context()); trail != nil {
		trail.SetError(message)
	}
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.ToHTTPStatus(code), errorResponse{
		Error:   string(code),
		Message: message,
	})
}
