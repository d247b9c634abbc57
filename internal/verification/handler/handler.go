package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"veriflow/internal/identity"
	"veriflow/internal/platform/middleware"
	"veriflow/internal/verification/models"
	"veriflow/internal/verification/service"
	dErrors "veriflow/pkg/domain-errors"
	"veriflow/pkg/platform/httputil"
)

// Service is the slice of the verification service the subject surface needs.
type Service interface {
	Submit(ctx context.Context, subjectID, email string, sub service.Submission) (*models.Record, error)
	Latest(ctx context.Context, subjectID string) (*models.Record, error)
	Appeal(ctx context.Context, subjectID, message string) (*models.Appeal, error)
}

// EvidenceVault opens stored evidence after an ownership check.
type EvidenceVault interface {
	Open(ctx context.Context, requesterSubjectID string, requesterIsAdmin bool, subjectID, name string) (io.ReadCloser, string, error)
}

// Handler serves the subject-facing verification endpoints.
type Handler struct {
	service         Service
	vault           EvidenceVault
	verifier        *identity.Verifier
	revocation      identity.RevocationChecker
	logger          *slog.Logger
	maxRequestBytes int64
}

func New(
	svc Service,
	evidenceVault EvidenceVault,
	verifier *identity.Verifier,
	revocation identity.RevocationChecker,
	logger *slog.Logger,
	maxRequestBytes int64,
) *Handler {
	return &Handler{
		service:         svc,
		vault:           evidenceVault,
		verifier:        verifier,
		revocation:      revocation,
		logger:          logger,
		maxRequestBytes: maxRequestBytes,
	}
}

// Register mounts the subject routes. Every route requires a verified
// bearer credential; file retrieval additionally checks ownership.
func (h *Handler) Register(r chi.Router) {
	sub := chi.NewRouter()
	sub.Use(middleware.RequireAuth(h.verifier, h.revocation, h.logger))
	sub.Post("/verification/submit", h.handleSubmit)
	sub.Get("/verification", h.handleLatest)
	sub.Post("/verification/appeal", h.handleAppeal)
	sub.Get("/verification/file/{subjectID}/{name}", h.handleFile)

	r.Mount("/api/employee", sub)
}

type latestResponse struct {
	HasVerification bool           `json:"hasVerification"`
	Verification    *models.Record `json:"verification,omitempty"`
}

type appealRequest struct {
	Message string `json:"message"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.GetClaims(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidUpload, "request body is too large"))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidUpload, "expected a multipart form"))
		return
	}

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	sub := service.Submission{}
	for _, part := range []struct {
		field  string
		target *service.FileUpload
	}{
		{"idDocument", &sub.IDDocument},
		{"proofOfResidence", &sub.ResidencyProof},
		{"selfie", &sub.Selfie},
	} {
		file, header, err := r.FormFile(part.field)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidUpload, part.field+" file is required"))
			return
		}
		closers = append(closers, file)
		*part.target = service.FileUpload{Name: header.Filename, Size: header.Size, Data: file}
	}

	record, err := h.service.Submit(ctx, claims.SubjectID(), claims.Email, sub)
	if err != nil {
		h.logger.WarnContext(ctx, "submission rejected",
			"subject_id", claims.SubjectID(),
			"request_id", middleware.GetRequestID(ctx),
			"error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.GetClaims(ctx)

	record, err := h.service.Latest(ctx, claims.SubjectID())
	if err != nil {
		// No verification yet is a normal state, not an error response.
		if dErrors.Is(err, dErrors.CodeNotFound) {
			httputil.WriteJSON(w, http.StatusOK, latestResponse{HasVerification: false})
			return
		}
		h.logger.ErrorContext(ctx, "failed to load verification",
			"subject_id", claims.SubjectID(),
			"request_id", middleware.GetRequestID(ctx),
			"error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, latestResponse{HasVerification: true, Verification: record})
}

func (h *Handler) handleAppeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.GetClaims(ctx)

	var req appealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "message must not be empty"))
		return
	}

	appeal, err := h.service.Appeal(ctx, claims.SubjectID(), req.Message)
	if err != nil {
		h.logger.WarnContext(ctx, "appeal rejected",
			"subject_id", claims.SubjectID(),
			"request_id", middleware.GetRequestID(ctx),
			"error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, appeal)
}

func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.GetClaims(ctx)
	subjectID := chi.URLParam(r, "subjectID")
	name := chi.URLParam(r, "name")

	file, contentType, err := h.vault.Open(ctx, claims.SubjectID(), h.verifier.IsAdmin(claims), subjectID, name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, file); err != nil {
		h.logger.ErrorContext(ctx, "failed to stream evidence file",
			"subject_id", subjectID,
			"request_id", middleware.GetRequestID(ctx),
			"error", err)
	}
}
