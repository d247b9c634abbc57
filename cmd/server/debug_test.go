package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veriflow/internal/identity"
)

type stubRevoker struct {
	jti string
	ttl time.Duration
	err error
}

func (s *stubRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	s.jti, s.ttl = jti, ttl
	return s.err
}

func TestRegisterDebugToken(t *testing.T) {
	verifier := identity.NewVerifier("debug-test-key", "veriflow")
	router := chi.NewRouter()
	registerDebugToken(router, verifier, slog.New(slog.DiscardHandler))

	t.Run("minted token verifies", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/debug/token",
			strings.NewReader(`{"subjectId":"subject-1","email":"person@example.com","role":"admin"}`)))

		require.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))

		claims, err := verifier.Verify(body.Token)
		require.NoError(t, err)
		assert.Equal(t, "subject-1", claims.SubjectID())
		assert.True(t, verifier.IsAdmin(claims))
	})

	t.Run("missing subject is a bad request", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/debug/token",
			strings.NewReader(`{"email":"person@example.com"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRegisterDebugRevoke(t *testing.T) {
	t.Run("revokes with the requested ttl", func(t *testing.T) {
		revoker := &stubRevoker{}
		router := chi.NewRouter()
		registerDebugRevoke(router, revoker, slog.New(slog.DiscardHandler))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/debug/revoke",
			strings.NewReader(`{"jti":"token-1","ttlSeconds":120}`)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "token-1", revoker.jti)
		assert.Equal(t, 2*time.Minute, revoker.ttl)
	})

	t.Run("missing jti is a bad request", func(t *testing.T) {
		revoker := &stubRevoker{}
		router := chi.NewRouter()
		registerDebugRevoke(router, revoker, slog.New(slog.DiscardHandler))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/debug/revoke",
			strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, revoker.jti)
	})

	t.Run("store failure is unavailable", func(t *testing.T) {
		revoker := &stubRevoker{err: errors.New("redis down")}
		router := chi.NewRouter()
		registerDebugRevoke(router, revoker, slog.New(slog.DiscardHandler))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/debug/revoke",
			strings.NewReader(`{"jti":"token-1"}`)))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	// Without a configured revocation backend the check is pure liveness.
	rr := httptest.NewRecorder()
	healthHandler(nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
