package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veriflow/internal/verification/models"
	dErrors "veriflow/pkg/domain-errors"
)

func newRecord(subjectID string, status models.Status) *models.Record {
	return &models.Record{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Status:    status,
	}
}

func TestMemoryRecordStore_CreateAssignsMonotonicCreatedAt(t *testing.T) {
	s := NewMemoryRecordStore()
	ctx := context.Background()

	var previous time.Time
	for i := 0; i < 50; i++ {
		r := newRecord("subject-1", models.StatusApproved)
		require.NoError(t, s.Create(ctx, r))
		assert.True(t, r.CreatedAt.After(previous), "createdAt must strictly increase")
		previous = r.CreatedAt
	}
}

func TestMemoryRecordStore_LatestBySubject(t *testing.T) {
	s := NewMemoryRecordStore()
	ctx := context.Background()

	_, err := s.LatestBySubject(ctx, "subject-1")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))

	first := newRecord("subject-1", models.StatusRejected)
	second := newRecord("subject-1", models.StatusPending)
	other := newRecord("subject-2", models.StatusPending)
	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, second))
	require.NoError(t, s.Create(ctx, other))

	latest, err := s.LatestBySubject(ctx, "subject-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestMemoryRecordStore_UpdateMergesFields(t *testing.T) {
	s := NewMemoryRecordStore()
	ctx := context.Background()

	r := newRecord("subject-1", models.StatusPending)
	require.NoError(t, s.Create(ctx, r))

	rejected := models.StatusRejected
	reviewedAt := time.Now().UTC()
	comment := "too blurry"
	require.NoError(t, s.Update(ctx, r.ID, RecordUpdate{
		Status:     &rejected,
		ReviewedAt: &reviewedAt,
		Comment:    &comment,
	}))

	got, err := s.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Equal(t, "too blurry", got.Comment)
	require.NotNil(t, got.ReviewedAt)

	// Partial merge leaves untouched fields alone and Clear flags remove.
	pending := models.StatusPending
	empty := ""
	require.NoError(t, s.Update(ctx, r.ID, RecordUpdate{
		Status:          &pending,
		ClearReviewedAt: true,
		Comment:         &empty,
	}))

	got, err = s.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.ReviewedAt)
	assert.Empty(t, got.Comment)
	assert.Equal(t, "subject-1", got.SubjectID)

	assert.True(t, dErrors.Is(s.Update(ctx, "missing", RecordUpdate{}), dErrors.CodeNotFound))
}

func TestMemoryRecordStore_FindReturnsCopy(t *testing.T) {
	s := NewMemoryRecordStore()
	ctx := context.Background()

	r := newRecord("subject-1", models.StatusPending)
	require.NoError(t, s.Create(ctx, r))

	got, err := s.FindByID(ctx, r.ID)
	require.NoError(t, err)
	got.Status = models.StatusApproved

	again, err := s.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, again.Status, "mutating a returned record must not touch the store")
}

func TestMemoryRecordStore_Pagination(t *testing.T) {
	s := NewMemoryRecordStore()
	ctx := context.Background()

	// Creation order A,B,C,D; the queue lists newest first.
	a := newRecord("s-a", models.StatusPending)
	b := newRecord("s-b", models.StatusPending)
	c := newRecord("s-c", models.StatusPending)
	d := newRecord("s-d", models.StatusPending)
	for _, r := range []*models.Record{a, b, c, d} {
		require.NoError(t, s.Create(ctx, r))
	}
	// A record in another status must never appear in the page.
	require.NoError(t, s.Create(ctx, newRecord("s-e", models.StatusApproved)))

	page1, err := s.ListByStatus(ctx, models.StatusPending, 2, "")
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.Equal(t, d.ID, page1.Items[0].ID)
	assert.Equal(t, c.ID, page1.Items[1].ID)
	assert.True(t, page1.HasMore)
	assert.Equal(t, c.ID, page1.LastID)

	page2, err := s.ListByStatus(ctx, models.StatusPending, 2, page1.LastID)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, b.ID, page2.Items[0].ID)
	assert.Equal(t, a.ID, page2.Items[1].ID)
	// Heuristic: a full page reports more even at the exact boundary.
	assert.True(t, page2.HasMore)

	page3, err := s.ListByStatus(ctx, models.StatusPending, 2, page2.LastID)
	require.NoError(t, err)
	assert.Empty(t, page3.Items)
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.LastID)
}

func TestMemoryRecordStore_InvalidCursor(t *testing.T) {
	s := NewMemoryRecordStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newRecord("subject-1", models.StatusPending)))

	_, err := s.ListByStatus(ctx, models.StatusPending, 2, "no-such-record")
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidCursor))

	_, err = s.ListByStatus(ctx, models.StatusPending, 0, "")
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestMemoryRecordStore_StatsMatchListing(t *testing.T) {
	s := NewMemoryRecordStore()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, s.Create(ctx, newRecord(fmt.Sprintf("s-%d", i), models.StatusRejected)))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Create(ctx, newRecord(fmt.Sprintf("p-%d", i), models.StatusPending)))
	}

	count, err := s.CountByStatus(ctx, models.StatusRejected)
	require.NoError(t, err)

	// Walk every page and confirm the count covers exactly the listed items.
	listed := 0
	cursor := ""
	for {
		page, err := s.ListByStatus(ctx, models.StatusRejected, 3, cursor)
		require.NoError(t, err)
		listed += len(page.Items)
		if !page.HasMore {
			break
		}
		cursor = page.LastID
	}
	assert.Equal(t, count, listed)
}

func TestMemoryRecordStore_Delete(t *testing.T) {
	s := NewMemoryRecordStore()
	ctx := context.Background()

	r := newRecord("subject-1", models.StatusApproved)
	require.NoError(t, s.Create(ctx, r))
	require.NoError(t, s.Delete(ctx, r.ID))

	_, err := s.FindByID(ctx, r.ID)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	assert.True(t, dErrors.Is(s.Delete(ctx, r.ID), dErrors.CodeNotFound))
}

func TestMemoryRecordStore_ConcurrentCreates(t *testing.T) {
	s := NewMemoryRecordStore()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Create(ctx, newRecord(fmt.Sprintf("s-%d", i), models.StatusPending)))
		}(i)
	}
	wg.Wait()

	count, err := s.CountByStatus(ctx, models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, goroutines, count)

	// Monotonic assignment holds under concurrency: all timestamps distinct.
	seen := map[time.Time]bool{}
	cursor := ""
	for {
		page, err := s.ListByStatus(ctx, models.StatusPending, 10, cursor)
		require.NoError(t, err)
		for _, r := range page.Items {
			assert.False(t, seen[r.CreatedAt], "duplicate createdAt %v", r.CreatedAt)
			seen[r.CreatedAt] = true
		}
		if !page.HasMore {
			break
		}
		cursor = page.LastID
	}
}

func TestMemoryAppealStore(t *testing.T) {
	s := NewMemoryAppealStore()
	ctx := context.Background()

	appeal := &models.Appeal{
		ID:             uuid.NewString(),
		SubjectID:      "subject-1",
		VerificationID: uuid.NewString(),
		Message:        "please look again",
		Status:         models.StatusPending,
	}
	require.NoError(t, s.Create(ctx, appeal))

	got, err := s.FindByID(ctx, appeal.ID)
	require.NoError(t, err)
	assert.Equal(t, "please look again", got.Message)
	assert.False(t, got.CreatedAt.IsZero())

	approved := models.StatusApproved
	reviewedAt := time.Now().UTC()
	require.NoError(t, s.Update(ctx, appeal.ID, AppealUpdate{Status: &approved, ReviewedAt: &reviewedAt}))

	got, err = s.FindByID(ctx, appeal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	require.NotNil(t, got.ReviewedAt)

	count, err := s.CountByStatus(ctx, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = s.ListByStatus(ctx, models.StatusPending, 5, "unknown-cursor")
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidCursor))
}
