package compliance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-dms/vantage-dms/internal/shared"
)

// ErrIllegalTransition indicates a status change outside the allowed
// lifecycle.
var ErrIllegalTransition = errors.New("compliance: illegal status transition")

// Repository defines persistence operations for document records.
type Repository interface {
	Create(ctx context.Context, record DocumentRecord) (DocumentRecord, error)
	Get(ctx context.Context, id uuid.UUID) (DocumentRecord, error)
	ListByEntity(ctx context.Context, entityID int64) ([]DocumentRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const recordColumns = `id, entity_id, doc_type, status, file_name, size_bytes, uploaded_at`

// Create inserts a new pending record.
func (r *PGRepository) Create(ctx context.Context, record DocumentRecord) (DocumentRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Status = StatusPending
	_, err := r.pool.Exec(ctx, `
		INSERT INTO document_records (id, entity_id, doc_type, status, file_name, size_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.EntityID, string(record.Type), string(record.Status),
		record.FileName, record.SizeBytes,
		pgtype.Timestamptz{Time: record.UploadedAt.UTC(), Valid: true},
	)
	if err != nil {
		return DocumentRecord{}, err
	}
	return record, nil
}

// Get fetches one record by id.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (DocumentRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM document_records WHERE id = $1`, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DocumentRecord{}, shared.ErrNotFound
		}
		return DocumentRecord{}, err
	}
	return record, nil
}

// ListByEntity returns every record attached to an entity, oldest first.
func (r *PGRepository) ListByEntity(ctx context.Context, entityID int64) ([]DocumentRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+` FROM document_records WHERE entity_id = $1 ORDER BY uploaded_at`, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DocumentRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// UpdateStatus performs the single allowed transition atomically: the UPDATE
// only matches when the row still holds the expected source status.
func (r *PGRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	if !from.CanTransition(to) {
		return ErrIllegalTransition
	}
	tag, err := r.pool.Exec(ctx, `UPDATE document_records SET status = $3 WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIllegalTransition
	}
	return nil
}

func scanRecord(row pgx.Row) (DocumentRecord, error) {
	var record DocumentRecord
	var docType, status string
	var uploadedAt pgtype.Timestamptz
	if err := row.Scan(&record.ID, &record.EntityID, &docType, &status, &record.FileName, &record.SizeBytes, &uploadedAt); err != nil {
		return DocumentRecord{}, err
	}
	record.Type = DocumentType(docType)
	record.Status = Status(status)
	record.UploadedAt = uploadedAt.Time
	return record, nil
}

var _ Repository = (*PGRepository)(nil)
