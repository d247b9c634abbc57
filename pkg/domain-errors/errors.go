// Package domainerrors carries machine-readable error codes from domain logic
// to the transport layer so handlers can translate failures without
// inspecting error strings. Conventionally imported as dErrors.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure. Codes are part of the API contract and
// appear verbatim in error response bodies.
type Code string

const (
	// CodeUnauthenticated covers missing, malformed, expired, or revoked
	// bearer credentials.
	CodeUnauthenticated Code = "unauthenticated"
	// CodeForbidden covers authenticated callers lacking the required role
	// or ownership.
	CodeForbidden Code = "forbidden"
	// CodeInvalidUpload covers evidence files failing extension or size checks.
	CodeInvalidUpload Code = "invalid_upload"
	// CodeConflict covers a submission while a pending record already exists.
	CodeConflict Code = "conflict"
	// CodeInvalidState covers state-machine guard violations, e.g. appealing
	// a record that is not rejected.
	CodeInvalidState Code = "invalid_state"
	// CodeInvalidCursor covers stale or unknown pagination cursors.
	CodeInvalidCursor Code = "invalid_cursor"
	// CodeNotFound covers missing records and missing stored files.
	CodeNotFound Code = "not_found"
	// CodeUnavailable covers downstream dependency failures and timeouts.
	CodeUnavailable Code = "unavailable"
	// CodeBadRequest covers malformed request bodies and parameters.
	CodeBadRequest Code = "bad_request"
	// CodeInternal covers everything we did not anticipate.
	CodeInternal Code = "internal_error"
)

// DomainError pairs a code with a human-readable description. The description
// is safe to show to callers except for CodeInternal, where the transport
// layer suppresses it outside development mode.
type DomainError struct {
	Code        Code
	Description string
	wrapped     error
}

func (e *DomainError) Error() string {
	if e.Description == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *DomainError) Unwrap() error { return e.wrapped }

// New builds a DomainError with the given code and description.
func New(code Code, description string) error {
	return &DomainError{Code: code, Description: description}
}

// Wrap attaches a code and description to an underlying cause, preserving the
// chain for errors.Is / errors.As.
func Wrap(code Code, description string, cause error) error {
	return &DomainError{Code: code, Description: description, wrapped: cause}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in domain logic.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DescriptionOf extracts the human-readable description, if any.
func DescriptionOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Description
	}
	return ""
}

// ToHTTPStatus maps a code to its HTTP status. Unknown codes map to 500 so a
// forgotten mapping fails safe rather than leaking a misleading status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInvalidUpload, CodeBadRequest, CodeInvalidCursor:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidState:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
