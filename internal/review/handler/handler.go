// Package handler serves the admin review surface. Every route sits behind
// credential verification plus the administrator role gate.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"veriflow/internal/identity"
	"veriflow/internal/platform/middleware"
	"veriflow/internal/review/service"
	"veriflow/internal/verification/models"
	"veriflow/internal/verification/store"
	dErrors "veriflow/pkg/domain-errors"
	"veriflow/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks ReviewService,WorkflowService

// ReviewService reads the review queues.
type ReviewService interface {
	ListVerifications(ctx context.Context, status string, pageSize int, startAfterID string) (*store.RecordPage, error)
	ListAppeals(ctx context.Context, status string, pageSize int, startAfterID string) (*store.AppealPage, error)
	VerificationStats(ctx context.Context) (*service.Stats, error)
	AppealStats(ctx context.Context) (*service.Stats, error)
}

// WorkflowService applies admin decisions.
type WorkflowService interface {
	ReviewVerification(ctx context.Context, actorID, recordID string, approve bool, comment string) (*models.Record, error)
	ReviewAppeal(ctx context.Context, actorID, appealID string, approve bool, comment string) (*models.Appeal, error)
	Delete(ctx context.Context, actorID, recordID string) error
}

// Handler serves the admin endpoints.
type Handler struct {
	review     ReviewService
	workflow   WorkflowService
	verifier   *identity.Verifier
	revocation identity.RevocationChecker
	logger     *slog.Logger
}

func New(
	review ReviewService,
	workflow WorkflowService,
	verifier *identity.Verifier,
	revocation identity.RevocationChecker,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		review:     review,
		workflow:   workflow,
		verifier:   verifier,
		revocation: revocation,
		logger:     logger,
	}
}

// Register mounts the admin routes.
func (h *Handler) Register(r chi.Router) {
	admin := chi.NewRouter()
	admin.Use(middleware.RequireAuth(h.verifier, h.revocation, h.logger))
	admin.Use(middleware.RequireAdmin(h.verifier, h.logger))

	admin.Get("/verifications", h.handleListVerifications)
	admin.Get("/verifications/stats", h.handleVerificationStats)
	admin.Post("/verifications/{id}/approve", h.handleApproveVerification)
	admin.Post("/verifications/{id}/reject", h.handleRejectVerification)
	admin.Delete("/verifications/{id}", h.handleDeleteVerification)

	admin.Get("/appeals", h.handleListAppeals)
	admin.Get("/appeals/stats", h.handleAppealStats)
	admin.Post("/appeals/{id}/approve", h.handleApproveAppeal)
	admin.Post("/appeals/{id}/reject", h.handleRejectAppeal)

	r.Mount("/api/admin", admin)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type approveRequest struct {
	Comment string `json:"comment"`
}

// listParams pulls the queue query parameters. Status defaults to pending,
// pageSize to the service default.
func listParams(r *http.Request) (status string, pageSize int, startAfterID string, err error) {
	status = r.URL.Query().Get("status")
	if status == "" {
		status = string(models.StatusPending)
	}
	startAfterID = r.URL.Query().Get("startAfterId")

	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize <= 0 {
			return "", 0, "", dErrors.New(dErrors.CodeBadRequest, "pageSize must be a positive integer")
		}
	}
	return status, pageSize, startAfterID, nil
}

func (h *Handler) handleListVerifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, pageSize, startAfterID, err := listParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.review.ListVerifications(ctx, status, pageSize, startAfterID)
	if err != nil {
		h.logError(ctx, "failed to list verifications", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleListAppeals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, pageSize, startAfterID, err := listParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.review.ListAppeals(ctx, status, pageSize, startAfterID)
	if err != nil {
		h.logError(ctx, "failed to list appeals", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleVerificationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.review.VerificationStats(r.Context())
	if err != nil {
		h.logError(r.Context(), "failed to count verifications", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleAppealStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.review.AppealStats(r.Context())
	if err != nil {
		h.logError(r.Context(), "failed to count appeals", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleApproveVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req approveRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // comment is optional

	record, err := h.workflow.ReviewVerification(ctx, actorID(ctx), chi.URLParam(r, "id"), true, req.Comment)
	if err != nil {
		h.logError(ctx, "failed to approve verification", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleRejectVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reason, err := decodeReason(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.workflow.ReviewVerification(ctx, actorID(ctx), chi.URLParam(r, "id"), false, reason)
	if err != nil {
		h.logError(ctx, "failed to reject verification", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleDeleteVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.workflow.Delete(ctx, actorID(ctx), chi.URLParam(r, "id")); err != nil {
		h.logError(ctx, "failed to delete verification", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleApproveAppeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req approveRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	appeal, err := h.workflow.ReviewAppeal(ctx, actorID(ctx), chi.URLParam(r, "id"), true, req.Comment)
	if err != nil {
		h.logError(ctx, "failed to approve appeal", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, appeal)
}

func (h *Handler) handleRejectAppeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reason, err := decodeReason(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	appeal, err := h.workflow.ReviewAppeal(ctx, actorID(ctx), chi.URLParam(r, "id"), false, reason)
	if err != nil {
		h.logError(ctx, "failed to reject appeal", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, appeal)
}

// decodeReason enforces the rejection contract: a reason is required so
// subjects always learn why they were turned down.
func decodeReason(r *http.Request) (string, error) {
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "reason must not be empty")
	}
	return req.Reason, nil
}

func actorID(ctx context.Context) string {
	return middleware.GetClaims(ctx).SubjectID()
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err)
}
