package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"veriflow/internal/verification/models"
	dErrors "veriflow/pkg/domain-errors"
)

//go:embed schema.sql
var schema string

// uniqueViolation is the Postgres error code for unique index violations.
const uniqueViolation = "23505"

// Migrate applies the workflow schema. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// PostgresRecordStore persists verification records in PostgreSQL.
type PostgresRecordStore struct {
	db *sql.DB
}

func NewPostgresRecordStore(db *sql.DB) *PostgresRecordStore {
	return &PostgresRecordStore{db: db}
}

const recordColumns = `id, subject_id, subject_email, id_document_url, proof_url, selfie_url,
	status, created_at, reviewed_at, comment, appeal_message, appealed_at`

func (s *PostgresRecordStore) Create(ctx context.Context, record *models.Record) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verifications (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		record.ID, record.SubjectID, record.SubjectEmail,
		record.Evidence.IDDocument, record.Evidence.ResidencyProof, record.Evidence.Selfie,
		record.Status, record.CreatedAt, nullTime(record.ReviewedAt),
		record.Comment, record.AppealMessage, nullTime(record.AppealedAt),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			// Either a duplicate id or the one-pending-per-subject index.
			return dErrors.Wrap(dErrors.CodeConflict, "a pending verification already exists for this subject", err)
		}
		return dErrors.Wrap(dErrors.CodeUnavailable, "create verification record", err)
	}
	return nil
}

func (s *PostgresRecordStore) FindByID(ctx context.Context, id string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM verifications WHERE id = $1`, id)
	return scanRecord(row)
}

func (s *PostgresRecordStore) LatestBySubject(ctx context.Context, subjectID string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM verifications
		WHERE subject_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, subjectID)
	return scanRecord(row)
}

func (s *PostgresRecordStore) Update(ctx context.Context, id string, update RecordUpdate) error {
	assignments := make([]string, 0, 6)
	args := make([]any, 0, 7)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.Status != nil {
		assignments = append(assignments, "status = "+arg(*update.Status))
	}
	if update.ClearReviewedAt {
		assignments = append(assignments, "reviewed_at = NULL")
	} else if update.ReviewedAt != nil {
		assignments = append(assignments, "reviewed_at = "+arg(*update.ReviewedAt))
	}
	if update.Comment != nil {
		assignments = append(assignments, "comment = "+arg(*update.Comment))
	}
	if update.AppealMessage != nil {
		assignments = append(assignments, "appeal_message = "+arg(*update.AppealMessage))
	}
	if update.AppealedAt != nil {
		assignments = append(assignments, "appealed_at = "+arg(*update.AppealedAt))
	}
	if len(assignments) == 0 {
		return nil
	}

	query := "UPDATE verifications SET " + strings.Join(assignments, ", ") + " WHERE id = " + arg(id)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUnavailable, "update verification record", err)
	}
	return requireRowAffected(result, "verification record not found")
}

func (s *PostgresRecordStore) ListByStatus(ctx context.Context, status models.Status, pageSize int, startAfterID string) (*RecordPage, error) {
	if pageSize <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "pageSize must be positive")
	}

	var rows *sql.Rows
	var err error
	if startAfterID == "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+recordColumns+` FROM verifications
			WHERE status = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2`, status, pageSize)
	} else {
		var anchorCreated time.Time
		anchorErr := s.db.QueryRowContext(ctx,
			`SELECT created_at FROM verifications WHERE id = $1`, startAfterID,
		).Scan(&anchorCreated)
		if errors.Is(anchorErr, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeInvalidCursor, "cursor record not found; restart pagination")
		}
		if anchorErr != nil {
			return nil, dErrors.Wrap(dErrors.CodeUnavailable, "resolve pagination cursor", anchorErr)
		}
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+recordColumns+` FROM verifications
			WHERE status = $1 AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $4`, status, anchorCreated, startAfterID, pageSize)
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "list verification records", err)
	}
	defer rows.Close()

	page := &RecordPage{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, record)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "list verification records", err)
	}
	page.HasMore = len(page.Items) == pageSize
	if n := len(page.Items); n > 0 {
		page.LastID = page.Items[n-1].ID
	}
	return page, nil
}

func (s *PostgresRecordStore) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM verifications WHERE status = $1`, status,
	).Scan(&count)
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeUnavailable, "count verification records", err)
	}
	return count, nil
}

func (s *PostgresRecordStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM verifications WHERE id = $1`, id)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUnavailable, "delete verification record", err)
	}
	return requireRowAffected(result, "verification record not found")
}

// rowScanner lets scanRecord work for both QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var record models.Record
	var reviewedAt, appealedAt sql.NullTime
	err := row.Scan(
		&record.ID, &record.SubjectID, &record.SubjectEmail,
		&record.Evidence.IDDocument, &record.Evidence.ResidencyProof, &record.Evidence.Selfie,
		&record.Status, &record.CreatedAt, &reviewedAt,
		&record.Comment, &record.AppealMessage, &appealedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "verification record not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "scan verification record", err)
	}
	if reviewedAt.Valid {
		record.ReviewedAt = &reviewedAt.Time
	}
	if appealedAt.Valid {
		record.AppealedAt = &appealedAt.Time
	}
	return &record, nil
}

func requireRowAffected(result sql.Result, notFoundMsg string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUnavailable, "check affected rows", err)
	}
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

// PostgresAppealStore persists appeal records in PostgreSQL.
type PostgresAppealStore struct {
	db *sql.DB
}

func NewPostgresAppealStore(db *sql.DB) *PostgresAppealStore {
	return &PostgresAppealStore{db: db}
}

const appealColumns = `id, subject_id, subject_email, verification_id,
	id_document_url, proof_url, selfie_url, message, status, created_at, reviewed_at, comment`

func (s *PostgresAppealStore) Create(ctx context.Context, appeal *models.Appeal) error {
	if appeal.CreatedAt.IsZero() {
		appeal.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO appeals (`+appealColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		appeal.ID, appeal.SubjectID, appeal.SubjectEmail, appeal.VerificationID,
		appeal.Evidence.IDDocument, appeal.Evidence.ResidencyProof, appeal.Evidence.Selfie,
		appeal.Message, appeal.Status, appeal.CreatedAt, nullTime(appeal.ReviewedAt), appeal.Comment,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return dErrors.Wrap(dErrors.CodeConflict, "appeal id already exists", err)
		}
		return dErrors.Wrap(dErrors.CodeUnavailable, "create appeal", err)
	}
	return nil
}

func (s *PostgresAppealStore) FindByID(ctx context.Context, id string) (*models.Appeal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+appealColumns+` FROM appeals WHERE id = $1`, id)
	return scanAppeal(row)
}

func (s *PostgresAppealStore) Update(ctx context.Context, id string, update AppealUpdate) error {
	assignments := make([]string, 0, 3)
	args := make([]any, 0, 4)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.Status != nil {
		assignments = append(assignments, "status = "+arg(*update.Status))
	}
	if update.ReviewedAt != nil {
		assignments = append(assignments, "reviewed_at = "+arg(*update.ReviewedAt))
	}
	if update.Comment != nil {
		assignments = append(assignments, "comment = "+arg(*update.Comment))
	}
	if len(assignments) == 0 {
		return nil
	}

	query := "UPDATE appeals SET " + strings.Join(assignments, ", ") + " WHERE id = " + arg(id)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUnavailable, "update appeal", err)
	}
	return requireRowAffected(result, "appeal not found")
}

func (s *PostgresAppealStore) ListByStatus(ctx context.Context, status models.Status, pageSize int, startAfterID string) (*AppealPage, error) {
	if pageSize <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "pageSize must be positive")
	}

	var rows *sql.Rows
	var err error
	if startAfterID == "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+appealColumns+` FROM appeals
			WHERE status = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2`, status, pageSize)
	} else {
		var anchorCreated time.Time
		anchorErr := s.db.QueryRowContext(ctx,
			`SELECT created_at FROM appeals WHERE id = $1`, startAfterID,
		).Scan(&anchorCreated)
		if errors.Is(anchorErr, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeInvalidCursor, "cursor record not found; restart pagination")
		}
		if anchorErr != nil {
			return nil, dErrors.Wrap(dErrors.CodeUnavailable, "resolve pagination cursor", anchorErr)
		}
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+appealColumns+` FROM appeals
			WHERE status = $1 AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $4`, status, anchorCreated, startAfterID, pageSize)
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "list appeals", err)
	}
	defer rows.Close()

	page := &AppealPage{}
	for rows.Next() {
		appeal, err := scanAppeal(rows)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, appeal)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "list appeals", err)
	}
	page.HasMore = len(page.Items) == pageSize
	if n := len(page.Items); n > 0 {
		page.LastID = page.Items[n-1].ID
	}
	return page, nil
}

func (s *PostgresAppealStore) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appeals WHERE status = $1`, status,
	).Scan(&count)
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeUnavailable, "count appeals", err)
	}
	return count, nil
}

func scanAppeal(row rowScanner) (*models.Appeal, error) {
	var appeal models.Appeal
	var reviewedAt sql.NullTime
	err := row.Scan(
		&appeal.ID, &appeal.SubjectID, &appeal.SubjectEmail, &appeal.VerificationID,
		&appeal.Evidence.IDDocument, &appeal.Evidence.ResidencyProof, &appeal.Evidence.Selfie,
		&appeal.Message, &appeal.Status, &appeal.CreatedAt, &reviewedAt, &appeal.Comment,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "appeal not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "scan appeal", err)
	}
	if reviewedAt.Valid {
		appeal.ReviewedAt = &reviewedAt.Time
	}
	return &appeal, nil
}
