package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
)

const bankAccountColumns = `id, bank, account_type, account_number, holder, opening_balance,
	active, is_default, created_at, updated_at`

type BankAccountRepository struct {
	db *DB
}

func NewBankAccountRepository(db *DB) *BankAccountRepository {
	return &BankAccountRepository{db: db}
}

func (r *BankAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT `+bankAccountColumns+` FROM bank_accounts WHERE id = $1`, id,
	)
	a, err := scanBankAccount(row)
	if err != nil {
		return nil, mapError("GetByID", err)
	}
	return a, nil
}

// GetDefault returns the account flagged as default, falling back to the oldest active one.
func (r *BankAccountRepository) GetDefault(ctx context.Context) (*domain.BankAccount, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT `+bankAccountColumns+` FROM bank_accounts
		WHERE active = $1
		ORDER BY is_default DESC, created_at ASC
		LIMIT 1`, true,
	)
	a, err := scanBankAccount(row)
	if err != nil {
		return nil, mapError("GetDefault", err)
	}
	return a, nil
}

func (r *BankAccountRepository) List(ctx context.Context) ([]domain.BankAccount, error) {
	rows, err := r.db.q(ctx).QueryContext(ctx,
		`SELECT `+bankAccountColumns+` FROM bank_accounts ORDER BY is_default DESC, bank, account_number`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var accounts []domain.BankAccount
	for rows.Next() {
		a, err := scanBankAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return accounts, nil
}

// Create inserts the account. A default account takes the flag away from every other account.
func (r *BankAccountRepository) Create(ctx context.Context, a *domain.BankAccount) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		if a.IsDefault {
			if err := r.clearDefault(ctx, a.UpdatedAt); err != nil {
				return fmt.Errorf("Create: %w", err)
			}
		}
		_, err := r.db.q(ctx).ExecContext(ctx,
			`INSERT INTO bank_accounts (`+bankAccountColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			a.ID, a.Bank, a.AccountType, a.AccountNumber, a.Holder, a.OpeningBalance,
			a.Active, a.IsDefault, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return mapError("Create", err)
		}
		return nil
	})
}

func (r *BankAccountRepository) Update(ctx context.Context, a *domain.BankAccount) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		if a.IsDefault {
			if err := r.clearDefault(ctx, a.UpdatedAt); err != nil {
				return fmt.Errorf("Update: %w", err)
			}
		}
		res, err := r.db.q(ctx).ExecContext(ctx,
			`UPDATE bank_accounts SET
				bank = $1, account_type = $2, account_number = $3, holder = $4, opening_balance = $5,
				active = $6, is_default = $7, updated_at = $8
			WHERE id = $9`,
			a.Bank, a.AccountType, a.AccountNumber, a.Holder, a.OpeningBalance,
			a.Active, a.IsDefault, a.UpdatedAt, a.ID,
		)
		if err != nil {
			return mapError("Update", err)
		}
		return checkAffected("Update", res)
	})
}

func (r *BankAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.q(ctx).ExecContext(ctx, `DELETE FROM bank_accounts WHERE id = $1`, id)
	if err != nil {
		return mapError("Delete", err)
	}
	return checkAffected("Delete", res)
}

func (r *BankAccountRepository) clearDefault(ctx context.Context, now time.Time) error {
	_, err := r.db.q(ctx).ExecContext(ctx,
		`UPDATE bank_accounts SET is_default = $1, updated_at = $2 WHERE is_default = $3`,
		false, now, true,
	)
	if err != nil {
		return fmt.Errorf("clearDefault: %w", err)
	}
	return nil
}

func scanBankAccount(s scanner) (*domain.BankAccount, error) {
	var a domain.BankAccount
	err := s.Scan(
		&a.ID, &a.Bank, &a.AccountType, &a.AccountNumber, &a.Holder, &a.OpeningBalance,
		&a.Active, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
