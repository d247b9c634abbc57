package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"veriflow/internal/audit"
	"veriflow/internal/platform/metrics"
	"veriflow/internal/vault"
	"veriflow/internal/verification/models"
	"veriflow/internal/verification/store"
	dErrors "veriflow/pkg/domain-errors"
)

// FileVault persists evidence files and hands back stable handles.
type FileVault interface {
	Store(ctx context.Context, subjectID, originalName string, size int64, src io.Reader) (vault.Handle, error)
}

// AuditPublisher records domain transitions. Emission is best-effort and
// must never fail the transition.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// FileUpload carries one evidence file from the transport layer.
type FileUpload struct {
	Name string
	Size int64
	Data io.Reader
}

// Submission bundles the three evidence files a subject provides.
type Submission struct {
	IDDocument     FileUpload
	ResidencyProof FileUpload
	Selfie         FileUpload
}

// Service orchestrates the verification lifecycle: submission, admin
// review, appeal and re-review.
type Service struct {
	records store.RecordStore
	appeals store.AppealStore
	vault   FileVault
	logger  *slog.Logger
	audit   AuditPublisher
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(records store.RecordStore, appeals store.AppealStore, fileVault FileVault, opts ...Option) *Service {
	s := &Service{
		records: records,
		appeals: appeals,
		vault:   fileVault,
		logger:  slog.New(slog.DiscardHandler),
		tracer:  otel.Tracer("veriflow/verification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit stores the evidence files and opens a pending verification. A
// subject may hold at most one pending verification at a time.
func (s *Service) Submit(ctx context.Context, subjectID, email string, sub Submission) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Submit")
	defer span.End()

	latest, err := s.records.LatestBySubject(ctx, subjectID)
	if err != nil && !dErrors.Is(err, dErrors.CodeNotFound) {
		return nil, err
	}
	if err == nil && latest.Status == models.StatusPending {
		return nil, dErrors.New(dErrors.CodeConflict, "a pending verification already exists")
	}

	idDoc, err := s.vault.Store(ctx, subjectID, sub.IDDocument.Name, sub.IDDocument.Size, sub.IDDocument.Data)
	if err != nil {
		return nil, err
	}
	proof, err := s.vault.Store(ctx, subjectID, sub.ResidencyProof.Name, sub.ResidencyProof.Size, sub.ResidencyProof.Data)
	if err != nil {
		return nil, err
	}
	selfie, err := s.vault.Store(ctx, subjectID, sub.Selfie.Name, sub.Selfie.Size, sub.Selfie.Data)
	if err != nil {
		return nil, err
	}

	record := &models.Record{
		ID:           uuid.NewString(),
		SubjectID:    subjectID,
		SubjectEmail: email,
		Evidence: models.EvidenceHandles{
			IDDocument:     idDoc.URLPath(),
			ResidencyProof: proof.URLPath(),
			Selfie:         selfie.URLPath(),
		},
		Status:    models.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	// The store enforces the pending guard transactionally; the earlier
	// read only gives a friendlier fast path.
	if err := s.records.Create(ctx, record); err != nil {
		if dErrors.Is(err, dErrors.CodeConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a pending verification already exists")
		}
		return nil, err
	}

	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionVerificationSubmitted,
		SubjectID: subjectID,
		RecordID:  record.ID,
	})
	if s.metrics != nil {
		s.metrics.SubmissionsTotal.Inc()
		s.metrics.UploadBytes.Observe(float64(sub.IDDocument.Size + sub.ResidencyProof.Size + sub.Selfie.Size))
	}
	s.logger.InfoContext(ctx, "verification submitted",
		"record_id", record.ID,
		"subject_id", subjectID)

	return record, nil
}

// Latest returns the subject's most recent verification.
func (s *Service) Latest(ctx context.Context, subjectID string) (*models.Record, error) {
	return s.records.LatestBySubject(ctx, subjectID)
}

// Appeal contests a rejected verification. It files an appeal record and
// reopens the verification so it re-enters the pending review queue.
func (s *Service) Appeal(ctx context.Context, subjectID, message string) (*models.Appeal, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Appeal")
	defer span.End()

	record, err := s.records.LatestBySubject(ctx, subjectID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no verification found")
		}
		return nil, err
	}
	if record.Status != models.StatusRejected {
		return nil, dErrors.New(dErrors.CodeInvalidState, "only a rejected verification can be appealed")
	}

	now := time.Now().UTC()
	appeal := &models.Appeal{
		ID:             uuid.NewString(),
		SubjectID:      subjectID,
		SubjectEmail:   record.SubjectEmail,
		VerificationID: record.ID,
		Evidence:       record.Evidence,
		Message:        message,
		Status:         models.StatusPending,
		CreatedAt:      now,
	}
	if err := s.appeals.Create(ctx, appeal); err != nil {
		return nil, err
	}

	pending := models.StatusPending
	emptyComment := ""
	if err := s.records.Update(ctx, record.ID, store.RecordUpdate{
		Status:          &pending,
		ClearReviewedAt: true,
		Comment:         &emptyComment,
		AppealMessage:   &message,
		AppealedAt:      &now,
	}); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionAppealFiled,
		SubjectID: subjectID,
		RecordID:  record.ID,
		AppealID:  appeal.ID,
	})
	if s.metrics != nil {
		s.metrics.AppealsFiled.Inc()
	}
	s.logger.InfoContext(ctx, "appeal filed",
		"appeal_id", appeal.ID,
		"record_id", record.ID,
		"subject_id", subjectID)

	return appeal, nil
}

// ReviewVerification applies an admin decision to a pending verification.
func (s *Service) ReviewVerification(ctx context.Context, actorID, recordID string, approve bool, comment string) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "verification.ReviewVerification")
	defer span.End()

	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.Status != models.StatusPending {
		return nil, dErrors.New(dErrors.CodeInvalidState, "verification has already been reviewed")
	}

	status := models.StatusApproved
	action := audit.ActionVerificationApproved
	if !approve {
		status = models.StatusRejected
		action = audit.ActionVerificationRejected
	}
	now := time.Now().UTC()
	if err := s.records.Update(ctx, recordID, store.RecordUpdate{
		Status:     &status,
		ReviewedAt: &now,
		Comment:    &comment,
	}); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, audit.Event{
		Action:    action,
		SubjectID: record.SubjectID,
		RecordID:  recordID,
		ActorID:   actorID,
		Reason:    comment,
	})
	if s.metrics != nil {
		s.metrics.IncReview("verification", string(status))
	}
	s.logger.InfoContext(ctx, "verification reviewed",
		"record_id", recordID,
		"status", status,
		"actor_id", actorID)

	return s.records.FindByID(ctx, recordID)
}

// ReviewAppeal applies an admin decision to a pending appeal, then
// cascades the same outcome onto the linked verification. The appeal
// decision is committed first; a cascade failure is logged and counted
// but does not undo the decision.
func (s *Service) ReviewAppeal(ctx context.Context, actorID, appealID string, approve bool, comment string) (*models.Appeal, error) {
	ctx, span := s.tracer.Start(ctx, "verification.ReviewAppeal")
	defer span.End()

	appeal, err := s.appeals.FindByID(ctx, appealID)
	if err != nil {
		return nil, err
	}
	if appeal.Status != models.StatusPending {
		return nil, dErrors.New(dErrors.CodeInvalidState, "appeal has already been reviewed")
	}

	status := models.StatusApproved
	action := audit.ActionAppealApproved
	if !approve {
		status = models.StatusRejected
		action = audit.ActionAppealRejected
	}
	now := time.Now().UTC()
	if err := s.appeals.Update(ctx, appealID, store.AppealUpdate{
		Status:     &status,
		ReviewedAt: &now,
		Comment:    &comment,
	}); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, audit.Event{
		Action:    action,
		SubjectID: appeal.SubjectID,
		RecordID:  appeal.VerificationID,
		AppealID:  appealID,
		ActorID:   actorID,
		Reason:    comment,
	})
	if s.metrics != nil {
		s.metrics.IncReview("appeal", string(status))
	}

	if err := s.records.Update(ctx, appeal.VerificationID, store.RecordUpdate{
		Status:     &status,
		ReviewedAt: &now,
		Comment:    &comment,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to cascade appeal decision onto verification",
			"appeal_id", appealID,
			"record_id", appeal.VerificationID,
			"error", err)
		s.emitAudit(ctx, audit.Event{
			Action:    audit.ActionCascadeFailed,
			SubjectID: appeal.SubjectID,
			RecordID:  appeal.VerificationID,
			AppealID:  appealID,
			ActorID:   actorID,
			Reason:    err.Error(),
		})
		if s.metrics != nil {
			s.metrics.CascadeFailures.Inc()
		}
	}

	s.logger.InfoContext(ctx, "appeal reviewed",
		"appeal_id", appealID,
		"status", status,
		"actor_id", actorID)

	return s.appeals.FindByID(ctx, appealID)
}

// Delete removes a verification record entirely. Admin-only; the
// evidence files stay in the vault.
func (s *Service) Delete(ctx context.Context, actorID, recordID string) error {
	ctx, span := s.tracer.Start(ctx, "verification.Delete")
	defer span.End()

	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return err
	}
	if err := s.records.Delete(ctx, recordID); err != nil {
		return err
	}

	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionVerificationDeleted,
		SubjectID: record.SubjectID,
		RecordID:  recordID,
		ActorID:   actorID,
	})
	s.logger.InfoContext(ctx, "verification deleted",
		"record_id", recordID,
		"actor_id", actorID)
	return nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, event)
}
