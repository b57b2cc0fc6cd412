package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
)

const apartmentColumns = `id, number, floor, common_expenses, reserve_fund, occupancy,
	contact_first_name, contact_last_name, contact_phone, contact_email, notes,
	created_at, updated_at`

type ApartmentRepository struct {
	db *DB
}

func NewApartmentRepository(db *DB) *ApartmentRepository {
	return &ApartmentRepository{db: db}
}

func (r *ApartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Apartment, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT `+apartmentColumns+` FROM apartments WHERE id = $1`, id,
	)
	a, err := scanApartment(row)
	if err != nil {
		return nil, mapError("GetByID", err)
	}
	return a, nil
}

func (r *ApartmentRepository) List(ctx context.Context) ([]domain.Apartment, error) {
	rows, err := r.db.q(ctx).QueryContext(ctx,
		`SELECT `+apartmentColumns+` FROM apartments ORDER BY number, occupancy`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var apartments []domain.Apartment
	for rows.Next() {
		a, err := scanApartment(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		apartments = append(apartments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return apartments, nil
}

func (r *ApartmentRepository) Create(ctx context.Context, a *domain.Apartment) error {
	_, err := r.db.q(ctx).ExecContext(ctx,
		`INSERT INTO apartments (`+apartmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.Number, a.Floor, a.CommonExpenses, a.ReserveFund, a.Occupancy,
		a.ContactFirstName, a.ContactLastName, a.ContactPhone, a.ContactEmail, a.Notes,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (r *ApartmentRepository) Update(ctx context.Context, a *domain.Apartment) error {
	res, err := r.db.q(ctx).ExecContext(ctx,
		`UPDATE apartments SET
			number = $1, floor = $2, common_expenses = $3, reserve_fund = $4, occupancy = $5,
			contact_first_name = $6, contact_last_name = $7, contact_phone = $8, contact_email = $9,
			notes = $10, updated_at = $11
		WHERE id = $12`,
		a.Number, a.Floor, a.CommonExpenses, a.ReserveFund, a.Occupancy,
		a.ContactFirstName, a.ContactLastName, a.ContactPhone, a.ContactEmail,
		a.Notes, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return mapError("Update", err)
	}
	return checkAffected("Update", res)
}

func (r *ApartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.q(ctx).ExecContext(ctx, `DELETE FROM apartments WHERE id = $1`, id)
	if err != nil {
		return mapError("Delete", err)
	}
	return checkAffected("Delete", res)
}

func scanApartment(s scanner) (*domain.Apartment, error) {
	var a domain.Apartment
	err := s.Scan(
		&a.ID, &a.Number, &a.Floor, &a.CommonExpenses, &a.ReserveFund, &a.Occupancy,
		&a.ContactFirstName, &a.ContactLastName, &a.ContactPhone, &a.ContactEmail, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
