package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
)

const logbookColumns = `id, date, kind, detail, notes, status, created_at, updated_at`

type LogbookRepository struct {
	db *DB
}

func NewLogbookRepository(db *DB) *LogbookRepository {
	return &LogbookRepository{db: db}
}

func (r *LogbookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LogbookEntry, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT `+logbookColumns+` FROM logbook_entries WHERE id = $1`, id,
	)
	e, err := scanLogbookEntry(row)
	if err != nil {
		return nil, mapError("GetByID", err)
	}
	return e, nil
}

// List returns entries newest first, optionally restricted to one status.
func (r *LogbookRepository) List(ctx context.Context, status *domain.LogbookStatus) ([]domain.LogbookEntry, error) {
	query := `SELECT ` + logbookColumns + ` FROM logbook_entries`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogbookEntry
	for rows.Next() {
		e, err := scanLogbookEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return entries, nil
}

func (r *LogbookRepository) Create(ctx context.Context, e *domain.LogbookEntry) error {
	_, err := r.db.q(ctx).ExecContext(ctx,
		`INSERT INTO logbook_entries (`+logbookColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Date, e.Kind, e.Detail, e.Notes, e.Status, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (r *LogbookRepository) Update(ctx context.Context, e *domain.LogbookEntry) error {
	res, err := r.db.q(ctx).ExecContext(ctx,
		`UPDATE logbook_entries SET date = $1, kind = $2, detail = $3, notes = $4, status = $5, updated_at = $6
		WHERE id = $7`,
		e.Date, e.Kind, e.Detail, e.Notes, e.Status, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return mapError("Update", err)
	}
	return checkAffected("Update", res)
}

// ExpireDue moves pending due-date entries dated before now to EXPIRED.
func (r *LogbookRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.q(ctx).ExecContext(ctx,
		`UPDATE logbook_entries SET status = $1, updated_at = $2
		WHERE kind = $3 AND status = $4 AND date < $2`,
		domain.LogbookStatusExpired, now.UTC(), domain.LogbookKindDueDate, domain.LogbookStatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("ExpireDue: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ExpireDue: rows affected: %w", err)
	}
	return n, nil
}

func (r *LogbookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.q(ctx).ExecContext(ctx, `DELETE FROM logbook_entries WHERE id = $1`, id)
	if err != nil {
		return mapError("Delete", err)
	}
	return checkAffected("Delete", res)
}

func scanLogbookEntry(s scanner) (*domain.LogbookEntry, error) {
	var e domain.LogbookEntry
	err := s.Scan(&e.ID, &e.Date, &e.Kind, &e.Detail, &e.Notes, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
