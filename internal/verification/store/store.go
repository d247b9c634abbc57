// Package store persists verification and appeal records. Stores are
// interface-driven so the state machine and review queue can run against
// in-memory fakes in tests and Postgres in production.
package store

import (
	"context"
	"time"

	"veriflow/internal/verification/models"
)

// RecordUpdate is a partial, last-writer-wins field merge. Nil pointers leave
// the stored value untouched; Clear flags remove it.
type RecordUpdate struct {
	Status          *models.Status
	ReviewedAt      *time.Time
	ClearReviewedAt bool
	Comment         *string
	AppealMessage   *string
	AppealedAt      *time.Time
}

// AppealUpdate mirrors RecordUpdate for appeal records.
type AppealUpdate struct {
	Status     *models.Status
	ReviewedAt *time.Time
	Comment    *string
}

// RecordPage is one page of a status-filtered queue listing, newest first.
type RecordPage struct {
	Items []*models.Record `json:"items"`
	// LastID is the cursor for the next page; empty when the page is empty.
	LastID string `json:"lastId"`
	// HasMore is a heuristic: true iff the page came back full. A full final
	// page costs the caller one extra empty fetch, which we accept over an
	// extra count query per page.
	HasMore bool `json:"hasMore"`
}

// AppealPage is the appeal-queue equivalent of RecordPage.
type AppealPage struct {
	Items   []*models.Appeal `json:"items"`
	LastID  string           `json:"lastId"`
	HasMore bool             `json:"hasMore"`
}

// RecordStore persists verification records. Ordering and pagination always
// use createdAt with id as tie-break; createdAt is assigned once at creation
// and never rewritten.
type RecordStore interface {
	Create(ctx context.Context, record *models.Record) error
	FindByID(ctx context.Context, id string) (*models.Record, error)
	// LatestBySubject returns the subject's most recent record or
	// CodeNotFound when the subject has never submitted.
	LatestBySubject(ctx context.Context, subjectID string) (*models.Record, error)
	Update(ctx context.Context, id string, update RecordUpdate) error
	// ListByStatus pages newest-first through records of one status. A
	// non-empty startAfterID must name a record from a previous page of the
	// same query; an unknown cursor fails with CodeInvalidCursor rather than
	// silently resetting.
	ListByStatus(ctx context.Context, status models.Status, pageSize int, startAfterID string) (*RecordPage, error)
	CountByStatus(ctx context.Context, status models.Status) (int, error)
	// Delete removes a record outside the normal workflow (administrative
	// override only).
	Delete(ctx context.Context, id string) error
}

// AppealStore persists appeal records.
type AppealStore interface {
	Create(ctx context.Context, appeal *models.Appeal) error
	FindByID(ctx context.Context, id string) (*models.Appeal, error)
	Update(ctx context.Context, id string, update AppealUpdate) error
	ListByStatus(ctx context.Context, status models.Status, pageSize int, startAfterID string) (*AppealPage, error)
	CountByStatus(ctx context.Context, status models.Status) (int, error)
}
