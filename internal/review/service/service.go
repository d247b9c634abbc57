// Package service exposes the admin review queues: status-filtered,
// cursor-paginated listings over verifications and appeals plus queue
// statistics.
package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"veriflow/internal/verification/models"
	"veriflow/internal/verification/store"
)

// DefaultPageSize matches the review console's page length.
const DefaultPageSize = 8

// Stats counts records per review state.
type Stats struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Service reads the review queues. All mutation goes through the
// verification service.
type Service struct {
	records store.RecordStore
	appeals store.AppealStore
	logger  *slog.Logger
}

func New(records store.RecordStore, appeals store.AppealStore, logger *slog.Logger) *Service {
	return &Service{records: records, appeals: appeals, logger: logger}
}

// ListVerifications returns one page of verifications in the given state,
// newest first. An empty startAfterID means the first page.
func (s *Service) ListVerifications(ctx context.Context, status string, pageSize int, startAfterID string) (*store.RecordPage, error) {
	parsed, err := models.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return s.records.ListByStatus(ctx, parsed, pageSize, startAfterID)
}

// ListAppeals returns one page of appeals in the given state, newest first.
func (s *Service) ListAppeals(ctx context.Context, status string, pageSize int, startAfterID string) (*store.AppealPage, error) {
	parsed, err := models.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return s.appeals.ListByStatus(ctx, parsed, pageSize, startAfterID)
}

// VerificationStats counts verifications per state.
func (s *Service) VerificationStats(ctx context.Context) (*Stats, error) {
	return s.stats(ctx, s.records.CountByStatus)
}

// AppealStats counts appeals per state.
func (s *Service) AppealStats(ctx context.Context) (*Stats, error) {
	return s.stats(ctx, s.appeals.CountByStatus)
}

func (s *Service) stats(ctx context.Context, count func(context.Context, models.Status) (int, error)) (*Stats, error) {
	var stats Stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Pending, err = count(ctx, models.StatusPending)
		return err
	})
	g.Go(func() (err error) {
		stats.Approved, err = count(ctx, models.StatusApproved)
		return err
	})
	g.Go(func() (err error) {
		stats.Rejected, err = count(ctx, models.StatusRejected)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
