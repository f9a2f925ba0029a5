package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// ErrRecordNotFound is returned when no record exists for a kind and id.
var ErrRecordNotFound = errors.New("record not found")

// MaxListLimit caps ListRecords page size.
const MaxListLimit = 500

// StoredRecord is one row of the records table. Body holds the record's
// canonical JSON object.
type StoredRecord struct {
	Kind      string
	ID        string
	Body      []byte
	BodyHash  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveRecord inserts rec or replaces the body of an existing row with the
// same kind and id. CreatedAt and UpdatedAt are filled from the database.
func (r *Repository) SaveRecord(ctx context.Context, rec *StoredRecord) error {
	query := `
		INSERT INTO records (kind, id, body, body_hash, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, NOW(), NOW())
		ON CONFLICT (kind, id) DO UPDATE
		SET body = EXCLUDED.body,
			body_hash = EXCLUDED.body_hash,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		rec.Kind,
		rec.ID,
		string(rec.Body),
		rec.BodyHash,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save record %s/%s: %w", rec.Kind, rec.ID, err)
	}

	return nil
}

// GetRecord retrieves a record by kind and id.
func (r *Repository) GetRecord(ctx context.Context, kind, id string) (*StoredRecord, error) {
	query := `
		SELECT kind, id, body, body_hash, created_at, updated_at
		FROM records
		WHERE kind = $1 AND id = $2
	`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, kind, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record %s/%s: %w", kind, id, err)
	}
	return rec, nil
}

// GetRecords retrieves the records of one kind with the given ids. Missing
// ids are skipped; the result follows id order.
func (r *Repository) GetRecords(ctx context.Context, kind string, ids []string) ([]*StoredRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT kind, id, body, body_hash, created_at, updated_at
		FROM records
		WHERE kind = $1 AND id = ANY($2::text[])
		ORDER BY array_position($2::text[], id)
	`

	rows, err := r.pool.Query(ctx, query, kind, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}
	return collectRecords(rows)
}

// ListRecords returns up to limit records of kind, most recently updated
// first.
func (r *Repository) ListRecords(ctx context.Context, kind string, limit int) ([]*StoredRecord, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `
		SELECT kind, id, body, body_hash, created_at, updated_at
		FROM records
		WHERE kind = $1
		ORDER BY updated_at DESC, id
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return collectRecords(rows)
}

// DeleteRecord removes a record.
func (r *Repository) DeleteRecord(ctx context.Context, kind, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM records WHERE kind = $1 AND id = $2`, kind, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s/%s: %w", kind, id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (*StoredRecord, error) {
	var rec StoredRecord
	if err := row.Scan(
		&rec.Kind,
		&rec.ID,
		&rec.Body,
		&rec.BodyHash,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func collectRecords(rows pgx.Rows) ([]*StoredRecord, error) {
	defer rows.Close()

	var out []*StoredRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return out, nil
}
