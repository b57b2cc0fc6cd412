package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
)

const providerColumns = `id, kind, name, phone, email, bank, account_number, notes, active, created_at, updated_at`

type ProviderRepository struct {
	db *DB
}

func NewProviderRepository(db *DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceProvider, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT `+providerColumns+` FROM service_providers WHERE id = $1`, id,
	)
	p, err := scanProvider(row)
	if err != nil {
		return nil, mapError("GetByID", err)
	}
	return p, nil
}

// List returns providers grouped by kind. activeOnly hides the ones no longer hired.
func (r *ProviderRepository) List(ctx context.Context, activeOnly bool) ([]domain.ServiceProvider, error) {
	query := `SELECT ` + providerColumns + ` FROM service_providers`
	var args []any
	if activeOnly {
		query += ` WHERE active = $1`
		args = append(args, true)
	}
	query += ` ORDER BY kind, name`

	rows, err := r.db.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var providers []domain.ServiceProvider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		providers = append(providers, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return providers, nil
}

func (r *ProviderRepository) Create(ctx context.Context, p *domain.ServiceProvider) error {
	_, err := r.db.q(ctx).ExecContext(ctx,
		`INSERT INTO service_providers (`+providerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Kind, p.Name, p.Phone, p.Email, p.Bank, p.AccountNumber, p.Notes, p.Active,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (r *ProviderRepository) Update(ctx context.Context, p *domain.ServiceProvider) error {
	res, err := r.db.q(ctx).ExecContext(ctx,
		`UPDATE service_providers SET
			kind = $1, name = $2, phone = $3, email = $4, bank = $5, account_number = $6,
			notes = $7, active = $8, updated_at = $9
		WHERE id = $10`,
		p.Kind, p.Name, p.Phone, p.Email, p.Bank, p.AccountNumber,
		p.Notes, p.Active, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return mapError("Update", err)
	}
	return checkAffected("Update", res)
}

func (r *ProviderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.q(ctx).ExecContext(ctx, `DELETE FROM service_providers WHERE id = $1`, id)
	if err != nil {
		return mapError("Delete", err)
	}
	return checkAffected("Delete", res)
}

func scanProvider(s scanner) (*domain.ServiceProvider, error) {
	var p domain.ServiceProvider
	err := s.Scan(
		&p.ID, &p.Kind, &p.Name, &p.Phone, &p.Email, &p.Bank, &p.AccountNumber, &p.Notes, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
