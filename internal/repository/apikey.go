package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// ErrAPIKeyNotFound is returned when no active key secret matches.
var ErrAPIKeyNotFound = errors.New("API key not found")

// APIKeySecret is the verification material of an issued key. It lives
// apart from the APIKey record so the hash never appears in record bodies.
type APIKeySecret struct {
	KeyID     string
	KeyPrefix string
	KeyHash   string
	Scopes    []string
	CreatedAt time.Time
	RevokedAt *time.Time
}

// CreateAPIKeySecret stores the hash of a newly issued key.
func (r *Repository) CreateAPIKeySecret(ctx context.Context, s *APIKeySecret) error {
	query := `
		INSERT INTO api_key_secrets (key_id, key_prefix, key_hash, scopes, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		s.KeyID,
		s.KeyPrefix,
		s.KeyHash,
		pq.Array(s.Scopes),
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create API key secret: %w", err)
	}

	return nil
}

// GetAPIKeySecretsByPrefix returns the unrevoked secrets sharing a visible
// prefix. Callers verify the presented key against each candidate.
func (r *Repository) GetAPIKeySecretsByPrefix(ctx context.Context, prefix string) ([]*APIKeySecret, error) {
	query := `
		SELECT key_id, key_prefix, key_hash, scopes, created_at, revoked_at
		FROM api_key_secrets
		WHERE key_prefix = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get API key secrets by prefix: %w", err)
	}
	defer rows.Close()

	var out []*APIKeySecret
	for rows.Next() {
		s, err := scanAPIKeySecret(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API key secret: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating API key secrets: %w", err)
	}

	return out, nil
}

// RevokeAPIKeySecret marks a key's secret revoked.
func (r *Repository) RevokeAPIKeySecret(ctx context.Context, keyID string, at time.Time) error {
	query := `
		UPDATE api_key_secrets
		SET revoked_at = $2
		WHERE key_id = $1 AND revoked_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, keyID, at)
	if err != nil {
		return fmt.Errorf("failed to revoke API key secret: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}

	return nil
}

func scanAPIKeySecret(row pgx.Row) (*APIKeySecret, error) {
	var s APIKeySecret
	var scopes []string

	if err := row.Scan(
		&s.KeyID,
		&s.KeyPrefix,
		&s.KeyHash,
		pq.Array(&scopes),
		&s.CreatedAt,
		&s.RevokedAt,
	); err != nil {
		return nil, err
	}

	s.Scopes = scopes
	return &s, nil
}
