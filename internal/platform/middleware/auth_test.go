package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veriflow/internal/identity"
)

type stubRevocation struct {
	revoked bool
	err     error
}

func (s stubRevocation) IsTokenRevoked(context.Context, string) (bool, error) {
	return s.revoked, s.err
}

func authFixture(t *testing.T, revocation identity.RevocationChecker) (http.Handler, string, *captureHandler) {
	t.Helper()

	verifier := identity.NewVerifier("auth-test-key", "veriflow")
	token, err := verifier.Mint("subject-1", "person@example.com", "", time.Minute)
	require.NoError(t, err)

	capture := &captureHandler{}
	handler := RequireAuth(verifier, revocation, slog.New(capture))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
	return handler, token, capture
}

func TestRequireAuth(t *testing.T) {
	t.Run("missing header is unauthenticated", func(t *testing.T) {
		handler, _, _ := authFixture(t, nil)

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token reaches the handler with claims", func(t *testing.T) {
		verifier := identity.NewVerifier("auth-test-key", "veriflow")
		token, err := verifier.Mint("subject-1", "person@example.com", "", time.Minute)
		require.NoError(t, err)

		var claims *identity.Claims
		handler := RequireAuth(verifier, nil, slog.New(slog.DiscardHandler))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims = GetClaims(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		require.NotNil(t, claims)
		assert.Equal(t, "subject-1", claims.SubjectID())
	})

	t.Run("revoked token is unauthenticated", func(t *testing.T) {
		handler, token, _ := authFixture(t, stubRevocation{revoked: true})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "unauthenticated")
	})

	t.Run("revocation check failure fails closed", func(t *testing.T) {
		handler, token, capture := authFixture(t, stubRevocation{err: errors.New("redis down")})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		// A broken revocation store must never let a credential through.
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "unauthenticated")

		rec := capture.last(t)
		assert.Equal(t, slog.LevelError, rec.level)
		assert.Equal(t, "revocation check failed, failing closed", rec.msg)
	})

	t.Run("nil checker skips the revocation lookup", func(t *testing.T) {
		handler, token, _ := authFixture(t, nil)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	verifier := identity.NewVerifier("auth-test-key", "veriflow")
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireAdmin(verifier, slog.New(slog.DiscardHandler))(next)

	t.Run("admin role passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), ContextKeyClaims, &identity.Claims{Role: identity.RoleAdmin})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req.WithContext(ctx))

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("missing claims are forbidden, not a 500", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
