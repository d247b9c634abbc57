// Package httputil centralizes JSON response writing so every handler emits
// the same envelopes.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "veriflow/pkg/domain-errors"
)

// errorResponse is the wire shape for all failures.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// devMode controls whether internal error descriptions reach response bodies.
// Set once at startup before any requests are served.
var devMode bool

// SetDevMode enables internal error descriptions in responses. Only call this
// during process bootstrap.
func SetDevMode(enabled bool) { devMode = enabled }

// WriteError translates a domain error into its HTTP status and JSON body.
// Internal errors suppress the description so stack details never leak to
// callers outside development mode.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}
	if code != dErrors.CodeInternal || devMode {
		resp.ErrorDescription = dErrors.DescriptionOf(err)
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
