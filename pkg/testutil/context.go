package testutil

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"veriflow/internal/identity"
	"veriflow/internal/platform/middleware"
)

// WithClaims primes the request context with a verified identity, simulating
// what the auth middleware does for authenticated requests.
func WithClaims(req *http.Request, subjectID, email, role string) *http.Request {
	claims := &identity.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subjectID,
		},
	}
	ctx := context.WithValue(req.Context(), middleware.ContextKeyClaims, claims)
	return req.WithContext(ctx)
}

// WithSubject primes the request context with an ordinary (non-admin) identity.
func WithSubject(req *http.Request, subjectID string) *http.Request {
	return WithClaims(req, subjectID, subjectID+"@example.com", "employee")
}

// WithAdmin primes the request context with an administrator identity.
func WithAdmin(req *http.Request, subjectID string) *http.Request {
	return WithClaims(req, subjectID, subjectID+"@example.com", identity.RoleAdmin)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
