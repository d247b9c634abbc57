package service

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veriflow/internal/verification/models"
	"veriflow/internal/verification/store"
	dErrors "veriflow/pkg/domain-errors"
)

func newService(t *testing.T) (*Service, *store.MemoryRecordStore, *store.MemoryAppealStore) {
	t.Helper()
	records := store.NewMemoryRecordStore()
	appeals := store.NewMemoryAppealStore()
	return New(records, appeals, slog.New(slog.DiscardHandler)), records, appeals
}

func seedRecords(t *testing.T, records *store.MemoryRecordStore, status models.Status, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		record := &models.Record{
			ID:        uuid.NewString(),
			SubjectID: fmt.Sprintf("subject-%d", i),
			Status:    status,
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, records.Create(context.Background(), record))
		ids[i] = record.ID
	}
	return ids
}

func TestListVerifications_Pagination(t *testing.T) {
	svc, records, _ := newService(t)
	ids := seedRecords(t, records, models.StatusPending, 5)

	page1, err := svc.ListVerifications(context.Background(), "pending", 2, "")
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.Equal(t, ids[4], page1.Items[0].ID, "newest first")
	assert.True(t, page1.HasMore)

	page2, err := svc.ListVerifications(context.Background(), "pending", 2, page1.LastID)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, ids[2], page2.Items[0].ID)

	page3, err := svc.ListVerifications(context.Background(), "pending", 2, page2.LastID)
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
}

func TestListVerifications_DefaultPageSize(t *testing.T) {
	svc, records, _ := newService(t)
	seedRecords(t, records, models.StatusPending, DefaultPageSize+1)

	page, err := svc.ListVerifications(context.Background(), "pending", 0, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, DefaultPageSize)
	assert.True(t, page.HasMore)
}

func TestListVerifications_InvalidInput(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.ListVerifications(context.Background(), "open", 2, "")
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))

	_, err = svc.ListVerifications(context.Background(), "pending", 2, "no-such-anchor")
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidCursor))
}

func TestVerificationStats(t *testing.T) {
	svc, records, _ := newService(t)
	seedRecords(t, records, models.StatusApproved, 3)
	seedRecords(t, records, models.StatusRejected, 2)
	seedRecords(t, records, models.StatusPending, 1)

	stats, err := svc.VerificationStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Stats{Pending: 1, Approved: 3, Rejected: 2}, stats)
}

func TestAppealStats(t *testing.T) {
	svc, _, appeals := newService(t)
	require.NoError(t, appeals.Create(context.Background(), &models.Appeal{
		ID:        uuid.NewString(),
		SubjectID: "subject-1",
		Status:    models.StatusPending,
		CreatedAt: time.Now().UTC(),
	}))

	stats, err := svc.AppealStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Stats{Pending: 1}, stats)
}
