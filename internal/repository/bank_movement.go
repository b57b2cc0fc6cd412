package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
)

const bankMovementColumns = `m.id, m.type, m.amount, m.date, m.description, m.reference,
	m.document_number, m.attachment_url, m.classification, m.reconciled,
	m.bank_account_id, m.transaction_id, m.provider_id, m.created_at, m.updated_at`

const bankMovementDetailColumns = bankMovementColumns + `,
	b.bank, b.account_number, t.type, a.number, p.name, p.kind`

const bankMovementDetailFrom = `FROM bank_movements m
	JOIN bank_accounts b ON b.id = m.bank_account_id
	LEFT JOIN transactions t ON t.id = m.transaction_id
	LEFT JOIN apartments a ON a.id = t.apartment_id
	LEFT JOIN service_providers p ON p.id = m.provider_id`

// BankMovementFilter narrows List. Zero values mean no restriction.
type BankMovementFilter struct {
	BankAccountID *uuid.UUID
	ProviderID    *uuid.UUID
	From          *time.Time
	To            *time.Time
	Limit         int
}

type BankMovementRepository struct {
	db *DB
}

func NewBankMovementRepository(db *DB) *BankMovementRepository {
	return &BankMovementRepository{db: db}
}

func (r *BankMovementRepository) Create(ctx context.Context, m *domain.BankMovement) error {
	_, err := r.db.q(ctx).ExecContext(ctx,
		`INSERT INTO bank_movements (id, type, amount, date, description, reference,
			document_number, attachment_url, classification, reconciled,
			bank_account_id, transaction_id, provider_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		m.ID, m.Type, m.Amount, m.Date, m.Description, m.Reference,
		m.DocumentNumber, m.AttachmentURL, m.Classification, m.Reconciled,
		m.BankAccountID, m.TransactionID, m.ProviderID, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (r *BankMovementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BankMovementDetail, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT `+bankMovementDetailColumns+` `+bankMovementDetailFrom+` WHERE m.id = $1`, id,
	)
	d, err := scanBankMovementDetail(row)
	if err != nil {
		return nil, mapError("GetByID", err)
	}
	return d, nil
}

// GetByTransaction returns the movement linked to a transaction.
func (r *BankMovementRepository) GetByTransaction(ctx context.Context, transactionID uuid.UUID) (*domain.BankMovementDetail, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT `+bankMovementDetailColumns+` `+bankMovementDetailFrom+` WHERE m.transaction_id = $1`, transactionID,
	)
	d, err := scanBankMovementDetail(row)
	if err != nil {
		return nil, mapError("GetByTransaction", err)
	}
	return d, nil
}

// List returns movements with their labels, newest first.
func (r *BankMovementRepository) List(ctx context.Context, f BankMovementFilter) ([]domain.BankMovementDetail, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.BankAccountID != nil {
		where = append(where, "m.bank_account_id = "+arg(*f.BankAccountID))
	}
	if f.ProviderID != nil {
		where = append(where, "m.provider_id = "+arg(*f.ProviderID))
	}
	if f.From != nil {
		where = append(where, "m.date >= "+arg(f.From.UTC()))
	}
	if f.To != nil {
		where = append(where, "m.date <= "+arg(f.To.UTC()))
	}

	query := `SELECT ` + bankMovementDetailColumns + ` ` + bankMovementDetailFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY m.date DESC, m.created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}

	rows, err := r.db.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var movements []domain.BankMovementDetail
	for rows.Next() {
		d, err := scanBankMovementDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		movements = append(movements, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return movements, nil
}

// SumBefore returns the signed total of an account's movements dated strictly before t.
func (r *BankMovementRepository) SumBefore(ctx context.Context, bankAccountID uuid.UUID, t time.Time) (int64, error) {
	var sum int64
	err := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN type = $1 THEN -amount ELSE amount END), 0)
		FROM bank_movements WHERE bank_account_id = $2 AND date < $3`,
		domain.MovementTypeExpense, bankAccountID, t.UTC(),
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("SumBefore: %w", err)
	}
	return sum, nil
}

func (r *BankMovementRepository) Update(ctx context.Context, m *domain.BankMovement) error {
	res, err := r.db.q(ctx).ExecContext(ctx,
		`UPDATE bank_movements SET
			type = $1, amount = $2, date = $3, description = $4, reference = $5,
			document_number = $6, attachment_url = $7, classification = $8, reconciled = $9,
			bank_account_id = $10, transaction_id = $11, provider_id = $12, updated_at = $13
		WHERE id = $14`,
		m.Type, m.Amount, m.Date, m.Description, m.Reference,
		m.DocumentNumber, m.AttachmentURL, m.Classification, m.Reconciled,
		m.BankAccountID, m.TransactionID, m.ProviderID, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return mapError("Update", err)
	}
	return checkAffected("Update", res)
}

func (r *BankMovementRepository) SetReconciled(ctx context.Context, id uuid.UUID, reconciled bool, now time.Time) error {
	res, err := r.db.q(ctx).ExecContext(ctx,
		`UPDATE bank_movements SET reconciled = $1, updated_at = $2 WHERE id = $3`,
		reconciled, now.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("SetReconciled: %w", err)
	}
	return checkAffected("SetReconciled", res)
}

func (r *BankMovementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.q(ctx).ExecContext(ctx, `DELETE FROM bank_movements WHERE id = $1`, id)
	if err != nil {
		return mapError("Delete", err)
	}
	return checkAffected("Delete", res)
}

func scanBankMovementDetail(s scanner) (*domain.BankMovementDetail, error) {
	var d domain.BankMovementDetail
	m := &d.BankMovement
	err := s.Scan(
		&m.ID, &m.Type, &m.Amount, &m.Date, &m.Description, &m.Reference,
		&m.DocumentNumber, &m.AttachmentURL, &m.Classification, &m.Reconciled,
		&m.BankAccountID, &m.TransactionID, &m.ProviderID, &m.CreatedAt, &m.UpdatedAt,
		&d.BankName, &d.BankAccountNumber, &d.TransactionType, &d.ApartmentNumber,
		&d.ProviderName, &d.ProviderKind,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
