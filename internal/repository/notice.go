package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
)

const noticeColumns = `id, text, position, month, year, active, created_at, updated_at`

type NoticeRepository struct {
	db *DB
}

func NewNoticeRepository(db *DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

func (r *NoticeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportNotice, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT `+noticeColumns+` FROM report_notices WHERE id = $1`, id,
	)
	n, err := scanNotice(row)
	if err != nil {
		return nil, mapError("GetByID", err)
	}
	return n, nil
}

// ListByPeriod returns the notices of a month in print order.
func (r *NoticeRepository) ListByPeriod(ctx context.Context, month, year int, activeOnly bool) ([]domain.ReportNotice, error) {
	query := `SELECT ` + noticeColumns + ` FROM report_notices WHERE month = $1 AND year = $2`
	args := []any{month, year}
	if activeOnly {
		query += ` AND active = $3`
		args = append(args, true)
	}
	query += ` ORDER BY position, created_at`

	rows, err := r.db.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListByPeriod: %w", err)
	}
	defer rows.Close()

	var notices []domain.ReportNotice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByPeriod: scan: %w", err)
		}
		notices = append(notices, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByPeriod: rows: %w", err)
	}
	return notices, nil
}

// Create appends the notice after the last one of its period.
func (r *NoticeRepository) Create(ctx context.Context, n *domain.ReportNotice) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		var next int
		err := r.db.q(ctx).QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), -1) + 1 FROM report_notices WHERE month = $1 AND year = $2`,
			n.Month, n.Year,
		).Scan(&next)
		if err != nil {
			return fmt.Errorf("Create: next position: %w", err)
		}
		n.Position = next

		_, err = r.db.q(ctx).ExecContext(ctx,
			`INSERT INTO report_notices (`+noticeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			n.ID, n.Text, n.Position, n.Month, n.Year, n.Active, n.CreatedAt, n.UpdatedAt,
		)
		if err != nil {
			return mapError("Create", err)
		}
		return nil
	})
}

func (r *NoticeRepository) Update(ctx context.Context, n *domain.ReportNotice) error {
	res, err := r.db.q(ctx).ExecContext(ctx,
		`UPDATE report_notices SET text = $1, position = $2, month = $3, year = $4, active = $5, updated_at = $6
		WHERE id = $7`,
		n.Text, n.Position, n.Month, n.Year, n.Active, n.UpdatedAt, n.ID,
	)
	if err != nil {
		return mapError("Update", err)
	}
	return checkAffected("Update", res)
}

// Reorder assigns positions following the order of ids.
func (r *NoticeRepository) Reorder(ctx context.Context, ids []uuid.UUID, now time.Time) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		for i, id := range ids {
			res, err := r.db.q(ctx).ExecContext(ctx,
				`UPDATE report_notices SET position = $1, updated_at = $2 WHERE id = $3`,
				i, now.UTC(), id,
			)
			if err != nil {
				return fmt.Errorf("Reorder: %w", err)
			}
			if err := checkAffected("Reorder", res); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *NoticeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.q(ctx).ExecContext(ctx, `DELETE FROM report_notices WHERE id = $1`, id)
	if err != nil {
		return mapError("Delete", err)
	}
	return checkAffected("Delete", res)
}

func scanNotice(s scanner) (*domain.ReportNotice, error) {
	var n domain.ReportNotice
	err := s.Scan(&n.ID, &n.Text, &n.Position, &n.Month, &n.Year, &n.Active, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
