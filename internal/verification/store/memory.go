package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"veriflow/internal/verification/models"
	dErrors "veriflow/pkg/domain-errors"
)

// MemoryRecordStore holds verification records in process memory. It backs
// development mode and tests; production wires PostgresRecordStore.
type MemoryRecordStore struct {
	mu          sync.RWMutex
	records     map[string]*models.Record
	lastCreated time.Time
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string]*models.Record)}
}

func (s *MemoryRecordStore) Create(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "record id already exists")
	}
	stored := *record
	stored.CreatedAt = s.nextCreatedAt(stored.CreatedAt)
	record.CreatedAt = stored.CreatedAt
	s.records[record.ID] = &stored
	return nil
}

// nextCreatedAt keeps creation timestamps strictly monotonic so queue
// ordering never depends on clock resolution. Caller holds the lock.
func (s *MemoryRecordStore) nextCreatedAt(requested time.Time) time.Time {
	t := requested
	if t.IsZero() {
		t = time.Now().UTC()
	}
	if !t.After(s.lastCreated) {
		t = s.lastCreated.Add(time.Microsecond)
	}
	s.lastCreated = t
	return t
}

func (s *MemoryRecordStore) FindByID(_ context.Context, id string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "verification record not found")
	}
	copied := *record
	return &copied, nil
}

func (s *MemoryRecordStore) LatestBySubject(_ context.Context, subjectID string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.Record
	for _, record := range s.records {
		if record.SubjectID != subjectID {
			continue
		}
		if latest == nil || newerThan(record.CreatedAt, record.ID, latest.CreatedAt, latest.ID) {
			latest = record
		}
	}
	if latest == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no verification record for subject")
	}
	copied := *latest
	return &copied, nil
}

func (s *MemoryRecordStore) Update(_ context.Context, id string, update RecordUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "verification record not found")
	}
	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.ReviewedAt != nil {
		record.ReviewedAt = update.ReviewedAt
	}
	if update.ClearReviewedAt {
		record.ReviewedAt = nil
	}
	if update.Comment != nil {
		record.Comment = *update.Comment
	}
	if update.AppealMessage != nil {
		record.AppealMessage = *update.AppealMessage
	}
	if update.AppealedAt != nil {
		record.AppealedAt = update.AppealedAt
	}
	return nil
}

func (s *MemoryRecordStore) ListByStatus(_ context.Context, status models.Status, pageSize int, startAfterID string) (*RecordPage, error) {
	if pageSize <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "pageSize must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var anchor *models.Record
	if startAfterID != "" {
		a, ok := s.records[startAfterID]
		if !ok {
			return nil, dErrors.New(dErrors.CodeInvalidCursor, "cursor record not found; restart pagination")
		}
		anchor = a
	}

	matched := make([]*models.Record, 0)
	for _, record := range s.records {
		if record.Status != status {
			continue
		}
		if anchor != nil && !newerThan(anchor.CreatedAt, anchor.ID, record.CreatedAt, record.ID) {
			continue
		}
		matched = append(matched, record)
	}
	sort.Slice(matched, func(i, j int) bool {
		return newerThan(matched[i].CreatedAt, matched[i].ID, matched[j].CreatedAt, matched[j].ID)
	})

	if len(matched) > pageSize {
		matched = matched[:pageSize]
	}
	page := &RecordPage{HasMore: len(matched) == pageSize}
	for _, record := range matched {
		copied := *record
		page.Items = append(page.Items, &copied)
	}
	if n := len(page.Items); n > 0 {
		page.LastID = page.Items[n-1].ID
	}
	return page, nil
}

func (s *MemoryRecordStore) CountByStatus(_ context.Context, status models.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.records {
		if record.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *MemoryRecordStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "verification record not found")
	}
	delete(s.records, id)
	return nil
}

// newerThan orders by createdAt descending with id as tie-break.
func newerThan(aCreated time.Time, aID string, bCreated time.Time, bID string) bool {
	if !aCreated.Equal(bCreated) {
		return aCreated.After(bCreated)
	}
	return aID > bID
}

// MemoryAppealStore holds appeal records in process memory.
type MemoryAppealStore struct {
	mu          sync.RWMutex
	appeals     map[string]*models.Appeal
	lastCreated time.Time
}

func NewMemoryAppealStore() *MemoryAppealStore {
	return &MemoryAppealStore{appeals: make(map[string]*models.Appeal)}
}

func (s *MemoryAppealStore) Create(_ context.Context, appeal *models.Appeal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.appeals[appeal.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "appeal id already exists")
	}
	stored := *appeal
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if !stored.CreatedAt.After(s.lastCreated) {
		stored.CreatedAt = s.lastCreated.Add(time.Microsecond)
	}
	s.lastCreated = stored.CreatedAt
	appeal.CreatedAt = stored.CreatedAt
	s.appeals[appeal.ID] = &stored
	return nil
}

func (s *MemoryAppealStore) FindByID(_ context.Context, id string) (*models.Appeal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appeal, ok := s.appeals[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "appeal not found")
	}
	copied := *appeal
	return &copied, nil
}

func (s *MemoryAppealStore) Update(_ context.Context, id string, update AppealUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appeal, ok := s.appeals[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "appeal not found")
	}
	if update.Status != nil {
		appeal.Status = *update.Status
	}
	if update.ReviewedAt != nil {
		appeal.ReviewedAt = update.ReviewedAt
	}
	if update.Comment != nil {
		appeal.Comment = *update.Comment
	}
	return nil
}

func (s *MemoryAppealStore) ListByStatus(_ context.Context, status models.Status, pageSize int, startAfterID string) (*AppealPage, error) {
	if pageSize <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "pageSize must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var anchor *models.Appeal
	if startAfterID != "" {
		a, ok := s.appeals[startAfterID]
		if !ok {
			return nil, dErrors.New(dErrors.CodeInvalidCursor, "cursor record not found; restart pagination")
		}
		anchor = a
	}

	matched := make([]*models.Appeal, 0)
	for _, appeal := range s.appeals {
		if appeal.Status != status {
			continue
		}
		if anchor != nil && !newerThan(anchor.CreatedAt, anchor.ID, appeal.CreatedAt, appeal.ID) {
			continue
		}
		matched = append(matched, appeal)
	}
	sort.Slice(matched, func(i, j int) bool {
		return newerThan(matched[i].CreatedAt, matched[i].ID, matched[j].CreatedAt, matched[j].ID)
	})

	if len(matched) > pageSize {
		matched = matched[:pageSize]
	}
	page := &AppealPage{HasMore: len(matched) == pageSize}
	for _, appeal := range matched {
		copied := *appeal
		page.Items = append(page.Items, &copied)
	}
	if n := len(page.Items); n > 0 {
		page.LastID = page.Items[n-1].ID
	}
	return page, nil
}

func (s *MemoryAppealStore) CountByStatus(_ context.Context, status models.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, appeal := range s.appeals {
		if appeal.Status == status {
			count++
		}
	}
	return count, nil
}
