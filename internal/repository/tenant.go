package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
)

const tenantColumns = `id, first_name, last_name, document_id, email, phone, kind, active,
	move_in_date, move_out_date, notes, apartment_id, created_at, updated_at`

type TenantRepository struct {
	db *DB
}

func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id,
	)
	t, err := scanTenant(row)
	if err != nil {
		return nil, mapError("GetByID", err)
	}
	return t, nil
}

func (r *TenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	return r.list(ctx, "List",
		`SELECT `+tenantColumns+` FROM tenants ORDER BY last_name, first_name`)
}

func (r *TenantRepository) ListByApartment(ctx context.Context, apartmentID uuid.UUID) ([]domain.Tenant, error) {
	return r.list(ctx, "ListByApartment",
		`SELECT `+tenantColumns+` FROM tenants WHERE apartment_id = $1 ORDER BY active DESC, last_name, first_name`,
		apartmentID)
}

func (r *TenantRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Tenant, error) {
	rows, err := r.db.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		tenants = append(tenants, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return tenants, nil
}

func (r *TenantRepository) Create(ctx context.Context, t *domain.Tenant) error {
	_, err := r.db.q(ctx).ExecContext(ctx,
		`INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.FirstName, t.LastName, t.DocumentID, t.Email, t.Phone, t.Kind, t.Active,
		t.MoveInDate, t.MoveOutDate, t.Notes, t.ApartmentID, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (r *TenantRepository) Update(ctx context.Context, t *domain.Tenant) error {
	res, err := r.db.q(ctx).ExecContext(ctx,
		`UPDATE tenants SET
			first_name = $1, last_name = $2, document_id = $3, email = $4, phone = $5, kind = $6,
			active = $7, move_in_date = $8, move_out_date = $9, notes = $10, apartment_id = $11,
			updated_at = $12
		WHERE id = $13`,
		t.FirstName, t.LastName, t.DocumentID, t.Email, t.Phone, t.Kind,
		t.Active, t.MoveInDate, t.MoveOutDate, t.Notes, t.ApartmentID,
		t.UpdatedAt, t.ID,
	)
	if err != nil {
		return mapError("Update", err)
	}
	return checkAffected("Update", res)
}

func (r *TenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.q(ctx).ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return mapError("Delete", err)
	}
	return checkAffected("Delete", res)
}

func scanTenant(s scanner) (*domain.Tenant, error) {
	var t domain.Tenant
	err := s.Scan(
		&t.ID, &t.FirstName, &t.LastName, &t.DocumentID, &t.Email, &t.Phone, &t.Kind, &t.Active,
		&t.MoveInDate, &t.MoveOutDate, &t.Notes, &t.ApartmentID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
