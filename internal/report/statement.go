package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/format"
	"github.com/josh-kwaku/edificio/internal/repository"
)

type StatementLine struct {
	domain.BankMovementDetail
	Balance int64
}

// Statement is a bank account's movements in date order with the running balance.
type Statement struct {
	Account      domain.BankAccount
	From         *time.Time
	To           *time.Time
	Opening      int64
	Lines        []StatementLine
	TotalIncome  int64
	TotalExpense int64
	Closing      int64
	Footer       string
}

func (s *Service) Statement(ctx context.Context, accountID uuid.UUID, from, to *time.Time) (*Statement, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Statement: %w", domain.ErrBankAccountNotFound)
		}
		return nil, fmt.Errorf("Statement: %w", err)
	}

	f := repository.BankMovementFilter{BankAccountID: &accountID}
	st := &Statement{Account: *account, Opening: account.OpeningBalance}
	if from != nil {
		start := from.UTC()
		f.From = &start
		st.From = &start
		before, err := s.movements.SumBefore(ctx, accountID, start)
		if err != nil {
			return nil, fmt.Errorf("Statement: %w", err)
		}
		st.Opening += before
	}
	if to != nil {
		end := format.EndOfDay(to.UTC())
		f.To = &end
		st.To = &end
	}

	movements, err := s.movements.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("Statement: %w", err)
	}
	sort.SliceStable(movements, func(i, j int) bool {
		if !movements[i].Date.Equal(movements[j].Date) {
			return movements[i].Date.Before(movements[j].Date)
		}
		return movements[i].CreatedAt.Before(movements[j].CreatedAt)
	})

	balance := st.Opening
	for _, m := range movements {
		balance += m.Signed()
		if m.Type == domain.MovementTypeExpense {
			st.TotalExpense += m.Amount
		} else {
			st.TotalIncome += m.Amount
		}
		st.Lines = append(st.Lines, StatementLine{BankMovementDetail: m, Balance: balance})
	}
	st.Closing = balance

	if st.Footer, err = s.footer.Footer(ctx); err != nil {
		return nil, fmt.Errorf("Statement: %w", err)
	}
	return st, nil
}

// AccountLine is one charge or payment on an apartment's current account.
type AccountLine struct {
	Transaction domain.Transaction
	Charge      int64
	Payment     int64
	Balance     int64
}

type ApartmentStatement struct {
	Apartment     domain.Apartment
	Lines         []AccountLine
	TotalCharges  int64
	TotalPayments int64
	Balance       int64
	Footer        string
}

// ApartmentStatement lists the credit sales and receipts of an apartment, oldest first,
// with the running balance. A positive balance is owed by the apartment.
func (s *Service) ApartmentStatement(ctx context.Context, apartmentID uuid.UUID) (*ApartmentStatement, error) {
	apartment, err := s.apartments.GetByID(ctx, apartmentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ApartmentStatement: %w", domain.ErrApartmentNotFound)
		}
		return nil, fmt.Errorf("ApartmentStatement: %w", err)
	}

	txs, err := s.transactions.List(ctx, repository.TransactionFilter{
		Types:       []domain.TransactionType{domain.TransactionTypeCreditSale, domain.TransactionTypePaymentReceipt},
		ApartmentID: &apartmentID,
	})
	if err != nil {
		return nil, fmt.Errorf("ApartmentStatement: %w", err)
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})

	st := &ApartmentStatement{Apartment: *apartment}
	for _, t := range txs {
		line := AccountLine{Transaction: t.Transaction}
		if t.Type == domain.TransactionTypeCreditSale {
			line.Charge = t.Amount
			st.TotalCharges += t.Amount
		} else {
			line.Payment = t.Amount
			st.TotalPayments += t.Amount
		}
		st.Balance += line.Charge - line.Payment
		line.Balance = st.Balance
		st.Lines = append(st.Lines, line)
	}

	if st.Footer, err = s.footer.Footer(ctx); err != nil {
		return nil, fmt.Errorf("ApartmentStatement: %w", err)
	}
	return st, nil
}
