package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"veriflow/internal/identity"
	dErrors "veriflow/pkg/domain-errors"
	"veriflow/pkg/platform/httputil"
)

type contextKeyClaims struct{}

// ContextKeyClaims is exported so tests can prime authenticated contexts.
var ContextKeyClaims = contextKeyClaims{}

// GetClaims retrieves the verified identity from the context. Returns nil for
// unauthenticated requests.
func GetClaims(ctx context.Context) *identity.Claims {
	claims, ok := ctx.Value(ContextKeyClaims).(*identity.Claims)
	if !ok {
		return nil
	}
	return claims
}

// RequireAuth verifies the bearer credential and stores the verified identity
// in the request context. A non-nil revocation checker is consulted after
// signature verification; checker errors fail closed as unauthenticated.
func RequireAuth(verifier *identity.Verifier, revocation identity.RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthenticated request - missing bearer credential",
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "missing or invalid Authorization header"))
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthenticated request - invalid credential",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "invalid or expired token"))
				return
			}

			if revocation != nil {
				revoked, err := revocation.IsTokenRevoked(ctx, claims.ID)
				if err != nil {
					logger.ErrorContext(ctx, "revocation check failed, failing closed",
						"error", err,
						"request_id", GetRequestID(ctx),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "credential could not be verified"))
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthenticated request - token revoked",
						"jti", claims.ID,
						"request_id", GetRequestID(ctx),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "token has been revoked"))
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ContextKeyClaims, claims)))
		})
	}
}

// RequireAdmin gates a route on the administrator role claim. It assumes
// RequireAuth already ran; anything short of a verified admin identity gets a
// uniform forbidden, never a 500.
func RequireAdmin(verifier *identity.Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			claims := GetClaims(ctx)
			if !verifier.IsAdmin(claims) {
				logger.WarnContext(ctx, "forbidden - admin role required",
					"subject_id", claims.SubjectID(),
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "administrator privileges required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
