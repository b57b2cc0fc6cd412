package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type IdempotencyCacheEntry struct {
	Key          string
	UserID       uuid.UUID
	RequestHash  string
	StatusCode   int
	ResponseBody []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

type IdempotencyRepository struct {
	db *DB
}

func NewIdempotencyRepository(db *DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Get returns the cached response for key, or nil when there is none still valid at now.
func (r *IdempotencyRepository) Get(ctx context.Context, key string, userID uuid.UUID, now time.Time) (*IdempotencyCacheEntry, error) {
	var e IdempotencyCacheEntry
	err := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT idempotency_key, user_id, request_hash, status_code, response_body, created_at, expires_at
		FROM idempotency_cache
		WHERE idempotency_key = $1 AND user_id = $2 AND expires_at > $3`,
		key, userID, now.UTC(),
	).Scan(&e.Key, &e.UserID, &e.RequestHash, &e.StatusCode, &e.ResponseBody, &e.CreatedAt, &e.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &e, nil
}

func (r *IdempotencyRepository) Set(ctx context.Context, entry *IdempotencyCacheEntry) error {
	_, err := r.db.q(ctx).ExecContext(ctx,
		`INSERT INTO idempotency_cache (idempotency_key, user_id, request_hash, status_code, response_body, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (idempotency_key, user_id) DO UPDATE SET
			request_hash = excluded.request_hash, status_code = excluded.status_code,
			response_body = excluded.response_body, created_at = excluded.created_at,
			expires_at = excluded.expires_at
		WHERE idempotency_cache.expires_at <= excluded.created_at`,
		entry.Key, entry.UserID, entry.RequestHash, entry.StatusCode, entry.ResponseBody,
		entry.CreatedAt.UTC(), entry.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

func (r *IdempotencyRepository) CleanExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.q(ctx).ExecContext(ctx,
		`DELETE FROM idempotency_cache WHERE expires_at < $1`, now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("CleanExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("CleanExpired: rows affected: %w", err)
	}
	return n, nil
}
