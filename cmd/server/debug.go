package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veriflow/internal/identity"
	dErrors "veriflow/pkg/domain-errors"
	"veriflow/pkg/platform/httputil"
)

type debugTokenRequest struct {
	SubjectID string `json:"subjectId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// registerDebugToken mounts the dev-only token minting endpoint so the
// surfaces can be exercised without an external identity provider. Guarded
// by DevMode in run; never reachable in production.
func registerDebugToken(r chi.Router, verifier *identity.Verifier, log *slog.Logger) {
	r.Post("/api/debug/token", func(w http.ResponseWriter, req *http.Request) {
		var body debugTokenRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.SubjectID == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "subjectId is required"))
			return
		}

		token, err := verifier.Mint(body.SubjectID, body.Email, body.Role, time.Hour)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to mint token", err))
			return
		}

		log.Info("debug token minted", "subject_id", body.SubjectID, "role", body.Role)
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
	})
}

// tokenRevoker is the write half of the revocation store.
type tokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type debugRevokeRequest struct {
	JTI        string `json:"jti"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// registerDebugRevoke mounts the dev-only endpoint that marks a token ID
// revoked, so the fail-closed auth path can be exercised end to end. TTL
// defaults to the debug token lifetime.
func registerDebugRevoke(r chi.Router, revoker tokenRevoker, log *slog.Logger) {
	r.Post("/api/debug/revoke", func(w http.ResponseWriter, req *http.Request) {
		var body debugRevokeRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.JTI == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "jti is required"))
			return
		}

		ttl := time.Duration(body.TTLSeconds) * time.Second
		if ttl <= 0 {
			ttl = time.Hour
		}
		if err := revoker.Revoke(req.Context(), body.JTI, ttl); err != nil {
			httputil.WriteError(w, dErrors.Wrap(dErrors.CodeUnavailable, "failed to revoke token", err))
			return
		}

		log.Info("token revoked", "jti", body.JTI, "ttl", ttl.String())
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
	})
}
