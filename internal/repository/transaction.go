package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
)

const transactionColumns = `t.id, t.type, t.amount, t.date, t.category, t.description, t.reference,
	t.payment_method, t.notes, t.credit_status, t.paid_amount, t.payment_class,
	t.common_amount, t.reserve_amount, t.apartment_id, t.receipt_id, t.version,
	t.created_at, t.updated_at`

const transactionWithApartmentColumns = transactionColumns + `, a.number, a.occupancy`

// TransactionFilter narrows List. Zero values mean no restriction.
type TransactionFilter struct {
	Types       []domain.TransactionType
	ApartmentID *uuid.UUID
	From        *time.Time
	To          *time.Time
	Limit       int
}

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	if t.Version == 0 {
		t.Version = 1
	}
	_, err := r.db.q(ctx).ExecContext(ctx,
		`INSERT INTO transactions (id, type, amount, date, category, description, reference,
			payment_method, notes, credit_status, paid_amount, payment_class,
			common_amount, reserve_amount, apartment_id, receipt_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		t.ID, t.Type, t.Amount, t.Date, t.Category, t.Description, t.Reference,
		t.PaymentMethod, t.Notes, t.CreditStatus, t.PaidAmount, t.PaymentClass,
		t.CommonAmount, t.ReserveAmount, t.ApartmentID, t.ReceiptID, t.Version, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions t WHERE t.id = $1`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, mapError("GetByID", err)
	}
	return t, nil
}

// List returns transactions joined with their apartment, newest first.
func (r *TransactionRepository) List(ctx context.Context, f TransactionFilter) ([]domain.TransactionWithApartment, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Types) > 0 {
		ph := make([]string, len(f.Types))
		for i, typ := range f.Types {
			ph[i] = arg(typ)
		}
		where = append(where, "t.type IN ("+strings.Join(ph, ", ")+")")
	}
	if f.ApartmentID != nil {
		where = append(where, "t.apartment_id = "+arg(*f.ApartmentID))
	}
	if f.From != nil {
		where = append(where, "t.date >= "+arg(f.From.UTC()))
	}
	if f.To != nil {
		where = append(where, "t.date <= "+arg(f.To.UTC()))
	}

	query := `SELECT ` + transactionWithApartmentColumns + `
		FROM transactions t LEFT JOIN apartments a ON a.id = t.apartment_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.date DESC, t.created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}

	return r.listWithApartment(ctx, "List", query, args...)
}

// UnlinkedReceipts returns payment receipts no bank movement points to yet.
func (r *TransactionRepository) UnlinkedReceipts(ctx context.Context) ([]domain.TransactionWithApartment, error) {
	return r.listWithApartment(ctx, "UnlinkedReceipts",
		`SELECT `+transactionWithApartmentColumns+`
		FROM transactions t
		LEFT JOIN apartments a ON a.id = t.apartment_id
		LEFT JOIN bank_movements bm ON bm.transaction_id = t.id
		WHERE t.type = $1 AND bm.id IS NULL
		ORDER BY t.date DESC, t.created_at DESC`,
		domain.TransactionTypePaymentReceipt,
	)
}

func (r *TransactionRepository) listWithApartment(ctx context.Context, op, query string, args ...any) ([]domain.TransactionWithApartment, error) {
	rows, err := r.db.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var txs []domain.TransactionWithApartment
	for rows.Next() {
		var tw domain.TransactionWithApartment
		if err := rows.Scan(append(transactionDest(&tw.Transaction), &tw.ApartmentNumber, &tw.ApartmentOccupancy)...); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		txs = append(txs, tw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return txs, nil
}

// FindOpenCredits returns the apartment's PENDING and PARTIAL credit sales, oldest first.
func (r *TransactionRepository) FindOpenCredits(ctx context.Context, apartmentID uuid.UUID) ([]domain.Transaction, error) {
	rows, err := r.db.q(ctx).QueryContext(ctx,
		`SELECT `+transactionColumns+`
		FROM transactions t
		WHERE t.apartment_id = $1 AND t.type = $2 AND t.credit_status IN ($3, $4)
		ORDER BY t.date ASC, t.id ASC`,
		apartmentID, domain.TransactionTypeCreditSale, domain.CreditStatusPending, domain.CreditStatusPartial,
	)
	if err != nil {
		return nil, fmt.Errorf("FindOpenCredits: %w", err)
	}
	defer rows.Close()

	var credits []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("FindOpenCredits: scan: %w", err)
		}
		credits = append(credits, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindOpenCredits: rows: %w", err)
	}
	return credits, nil
}

// UpdateCredit records a new paid amount on a credit sale if it is still at the given version.
func (r *TransactionRepository) UpdateCredit(ctx context.Context, id uuid.UUID, paid int64, status domain.CreditStatus, version int64, now time.Time) (*domain.Transaction, error) {
	res, err := r.db.q(ctx).ExecContext(ctx,
		`UPDATE transactions
		SET paid_amount = $1, credit_status = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5 AND type = $6`,
		paid, status, now.UTC(), id, version, domain.TransactionTypeCreditSale,
	)
	if err != nil {
		return nil, fmt.Errorf("UpdateCredit: %w", err)
	}
	if err := r.versionedResult(ctx, "UpdateCredit", id, res); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update rewrites an existing transaction if it is still at t.Version, then bumps the version.
func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	res, err := r.db.q(ctx).ExecContext(ctx,
		`UPDATE transactions SET
			type = $1, amount = $2, date = $3, category = $4, description = $5, reference = $6,
			payment_method = $7, notes = $8, credit_status = $9, paid_amount = $10, payment_class = $11,
			common_amount = $12, reserve_amount = $13, apartment_id = $14, receipt_id = $15,
			version = version + 1, updated_at = $16
		WHERE id = $17 AND version = $18`,
		t.Type, t.Amount, t.Date, t.Category, t.Description, t.Reference,
		t.PaymentMethod, t.Notes, t.CreditStatus, t.PaidAmount, t.PaymentClass,
		t.CommonAmount, t.ReserveAmount, t.ApartmentID, t.ReceiptID,
		t.UpdatedAt, t.ID, t.Version,
	)
	if err != nil {
		return mapError("Update", err)
	}
	if err := r.versionedResult(ctx, "Update", t.ID, res); err != nil {
		return err
	}
	t.Version++
	return nil
}

func (r *TransactionRepository) versionedResult(ctx context.Context, op string, id uuid.UUID, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n > 0 {
		return nil
	}
	var exists int
	err = r.db.q(ctx).QueryRowContext(ctx, `SELECT 1 FROM transactions WHERE id = $1`, id).Scan(&exists)
	if err != nil {
		return mapError(op, err)
	}
	return fmt.Errorf("%s: %w", op, domain.ErrVersionConflict)
}

func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.q(ctx).ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return mapError("Delete", err)
	}
	return checkAffected("Delete", res)
}

// Balances returns, per apartment, what was billed on credit minus what was received.
func (r *TransactionRepository) Balances(ctx context.Context) (map[uuid.UUID]int64, error) {
	rows, err := r.db.q(ctx).QueryContext(ctx,
		`SELECT apartment_id, COALESCE(SUM(CASE
				WHEN type = $1 THEN amount
				WHEN type = $2 THEN -amount
				ELSE 0 END), 0)
		FROM transactions
		WHERE apartment_id IS NOT NULL
		GROUP BY apartment_id`,
		domain.TransactionTypeCreditSale, domain.TransactionTypePaymentReceipt,
	)
	if err != nil {
		return nil, fmt.Errorf("Balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[uuid.UUID]int64)
	for rows.Next() {
		var (
			id      uuid.UUID
			balance int64
		)
		if err := rows.Scan(&id, &balance); err != nil {
			return nil, fmt.Errorf("Balances: scan: %w", err)
		}
		balances[id] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Balances: rows: %w", err)
	}
	return balances, nil
}

// HasCreditSale reports whether the apartment already has a credit sale of the category dated in [from, to).
func (r *TransactionRepository) HasCreditSale(ctx context.Context, apartmentID uuid.UUID, category domain.Category, from, to time.Time) (bool, error) {
	var n int
	err := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions
		WHERE apartment_id = $1 AND type = $2 AND category = $3 AND date >= $4 AND date < $5`,
		apartmentID, domain.TransactionTypeCreditSale, category, from.UTC(), to.UTC(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("HasCreditSale: %w", err)
	}
	return n > 0, nil
}

func transactionDest(t *domain.Transaction) []any {
	return []any{
		&t.ID, &t.Type, &t.Amount, &t.Date, &t.Category, &t.Description, &t.Reference,
		&t.PaymentMethod, &t.Notes, &t.CreditStatus, &t.PaidAmount, &t.PaymentClass,
		&t.CommonAmount, &t.ReserveAmount, &t.ApartmentID, &t.ReceiptID, &t.Version,
		&t.CreatedAt, &t.UpdatedAt,
	}
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := s.Scan(transactionDest(&t)...); err != nil {
		return nil, err
	}
	return &t, nil
}
