// Package report builds the monthly and cumulative account reports, bank statements and
// apartment statements, and exports the monthly report as CSV.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/format"
	"github.com/josh-kwaku/edificio/internal/repository"
)

type transactionRepo interface {
	List(ctx context.Context, f repository.TransactionFilter) ([]domain.TransactionWithApartment, error)
	UnlinkedReceipts(ctx context.Context) ([]domain.TransactionWithApartment, error)
}

type apartmentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Apartment, error)
	List(ctx context.Context) ([]domain.Apartment, error)
}

type bankAccountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error)
	List(ctx context.Context) ([]domain.BankAccount, error)
}

type movementRepo interface {
	List(ctx context.Context, f repository.BankMovementFilter) ([]domain.BankMovementDetail, error)
	SumBefore(ctx context.Context, bankAccountID uuid.UUID, t time.Time) (int64, error)
}

type noticeRepo interface {
	ListByPeriod(ctx context.Context, month, year int, activeOnly bool) ([]domain.ReportNotice, error)
}

type footerSource interface {
	Footer(ctx context.Context) (string, error)
}

type Service struct {
	transactions transactionRepo
	apartments   apartmentRepo
	accounts     bankAccountRepo
	movements    movementRepo
	notices      noticeRepo
	footer       footerSource
}

func NewService(
	transactions transactionRepo,
	apartments apartmentRepo,
	accounts bankAccountRepo,
	movements movementRepo,
	notices noticeRepo,
	footer footerSource,
) *Service {
	return &Service{
		transactions: transactions,
		apartments:   apartments,
		accounts:     accounts,
		movements:    movements,
		notices:      notices,
		footer:       footer,
	}
}

// ApartmentLine is one apartment's current account for the month.
type ApartmentLine struct {
	Apartment       domain.Apartment
	PreviousBalance int64
	Payments        int64
	CommonCharges   int64
	ReserveCharges  int64
	CurrentBalance  int64
}

type BankSummary struct {
	CommonIncome   int64
	ReserveIncome  int64
	CommonExpense  int64
	ReserveExpense int64
	TotalBalance   int64
}

type ExpenseLine struct {
	Date           time.Time
	Description    string
	Classification *domain.Classification
	Amount         int64
	Bank           string
}

type Totals struct {
	PreviousBalance int64
	Payments        int64
	CommonCharges   int64
	ReserveCharges  int64
	CurrentBalance  int64
}

type Monthly struct {
	Month      time.Month
	Year       int
	Date       time.Time
	Apartments []ApartmentLine
	Bank       BankSummary
	Expenses   []ExpenseLine
	Totals     Totals
	Notices    []domain.ReportNotice
	Footer     string
}

// Period renders the report period as "Marzo de 2024".
func (m *Monthly) Period() string {
	return format.Period(m.Month, m.Year)
}

// ActiveNotices returns the notices that are printed on the report.
func (m *Monthly) ActiveNotices() []domain.ReportNotice {
	var active []domain.ReportNotice
	for _, n := range m.Notices {
		if n.Active {
			active = append(active, n)
		}
	}
	return active
}

// Monthly builds the current-account report of every apartment for the given month.
func (s *Service) Monthly(ctx context.Context, month time.Month, year int) (*Monthly, error) {
	if month < time.January || month > time.December || year < 2000 || year > 2100 {
		return nil, fmt.Errorf("Monthly: period %d/%d: %w", month, year, domain.ErrInvalidRequest)
	}
	start, next := format.MonthRange(month, year)
	end := next.Add(-time.Nanosecond)

	var (
		apartments []domain.Apartment
		ledger     []domain.TransactionWithApartment
		unlinked   []domain.TransactionWithApartment
		movements  []domain.BankMovementDetail
		accounts   []domain.BankAccount
		notices    []domain.ReportNotice
		footer     string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		apartments, err = s.apartments.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		ledger, err = s.transactions.List(gctx, repository.TransactionFilter{
			Types: []domain.TransactionType{domain.TransactionTypeCreditSale, domain.TransactionTypePaymentReceipt},
			To:    &end,
		})
		return err
	})
	g.Go(func() (err error) {
		unlinked, err = s.transactions.UnlinkedReceipts(gctx)
		return err
	})
	g.Go(func() (err error) {
		movements, err = s.movements.List(gctx, repository.BankMovementFilter{From: &start, To: &end})
		return err
	})
	g.Go(func() (err error) {
		accounts, err = s.accounts.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		notices, err = s.notices.ListByPeriod(gctx, int(month), year, false)
		return err
	})
	g.Go(func() (err error) {
		footer, err = s.footer.Footer(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("Monthly: %w", err)
	}

	r := &Monthly{Month: month, Year: year, Date: end, Notices: notices, Footer: footer}

	byApartment := make(map[uuid.UUID][]domain.TransactionWithApartment)
	for _, t := range ledger {
		if t.ApartmentID != nil {
			byApartment[*t.ApartmentID] = append(byApartment[*t.ApartmentID], t)
		}
	}

	domain.SortApartments(apartments)
	for _, a := range apartments {
		line := ApartmentLine{Apartment: a}
		for _, t := range byApartment[a.ID] {
			inMonth := !t.Date.Before(start)
			switch t.Type {
			case domain.TransactionTypeCreditSale:
				if !inMonth {
					line.PreviousBalance += t.Amount
					continue
				}
				if t.Category == nil {
					continue
				}
				switch *t.Category {
				case domain.CategoryCommonExpenses:
					line.CommonCharges += t.Amount
				case domain.CategoryReserveFund:
					line.ReserveCharges += t.Amount
				}
			case domain.TransactionTypePaymentReceipt:
				if inMonth {
					line.Payments += t.Amount
				} else {
					line.PreviousBalance -= t.Amount
				}
			}
		}
		line.CurrentBalance = line.PreviousBalance + line.CommonCharges + line.ReserveCharges - line.Payments

		r.Totals.PreviousBalance += line.PreviousBalance
		r.Totals.Payments += line.Payments
		r.Totals.CommonCharges += line.CommonCharges
		r.Totals.ReserveCharges += line.ReserveCharges
		r.Totals.CurrentBalance += line.CurrentBalance
		r.Apartments = append(r.Apartments, line)
	}

	notLinked := make(map[uuid.UUID]struct{}, len(unlinked))
	for _, t := range unlinked {
		notLinked[t.ID] = struct{}{}
	}
	for _, t := range ledger {
		if t.Type != domain.TransactionTypePaymentReceipt || t.Date.Before(start) {
			continue
		}
		if _, ok := notLinked[t.ID]; ok {
			continue
		}
		common, reserve := t.ReceiptSplit()
		r.Bank.CommonIncome += common
		r.Bank.ReserveIncome += reserve
	}

	for _, m := range movements {
		if m.Type != domain.MovementTypeExpense {
			continue
		}
		if m.Classification != nil {
			switch *m.Classification {
			case domain.ClassificationCommonExpense:
				r.Bank.CommonExpense += m.Amount
			case domain.ClassificationReserveFund:
				r.Bank.ReserveExpense += m.Amount
			}
		}
		description := m.Description
		if description == "" {
			description = "Sin descripción"
		}
		r.Expenses = append(r.Expenses, ExpenseLine{
			Date:           m.Date,
			Description:    description,
			Classification: m.Classification,
			Amount:         m.Amount,
			Bank:           m.BankName,
		})
	}
	sort.SliceStable(r.Expenses, func(i, j int) bool { return r.Expenses[i].Date.Before(r.Expenses[j].Date) })

	for _, acc := range accounts {
		if !acc.Active {
			continue
		}
		sum, err := s.movements.SumBefore(ctx, acc.ID, next)
		if err != nil {
			return nil, fmt.Errorf("Monthly: bank balance: %w", err)
		}
		r.Bank.TotalBalance += acc.OpeningBalance + sum
	}

	return r, nil
}

// FundSplit holds an amount broken down by the fund it belongs to.
type FundSplit struct {
	Common  int64
	Reserve int64
	Total   int64
}

type Cumulative struct {
	From     time.Time
	To       time.Time
	Receipts FundSplit
	Expenses FundSplit
	Balance  FundSplit
}

// Cumulative compares collected receipts against bank expenses for every day between
// from and to, both included.
func (s *Service) Cumulative(ctx context.Context, from, to time.Time) (*Cumulative, error) {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = format.EndOfDay(time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC))
	if to.Before(from) {
		return nil, fmt.Errorf("Cumulative: range ends before it starts: %w", domain.ErrInvalidRequest)
	}

	var (
		receipts  []domain.TransactionWithApartment
		movements []domain.BankMovementDetail
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		receipts, err = s.transactions.List(gctx, repository.TransactionFilter{
			Types: []domain.TransactionType{domain.TransactionTypePaymentReceipt},
			From:  &from,
			To:    &to,
		})
		return err
	})
	g.Go(func() (err error) {
		movements, err = s.movements.List(gctx, repository.BankMovementFilter{From: &from, To: &to})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("Cumulative: %w", err)
	}

	r := &Cumulative{From: from, To: to}
	for _, t := range receipts {
		common, reserve := t.ReceiptSplit()
		r.Receipts.Common += common
		r.Receipts.Reserve += reserve
	}
	for _, m := range movements {
		if m.Type != domain.MovementTypeExpense || m.Classification == nil {
			continue
		}
		switch *m.Classification {
		case domain.ClassificationCommonExpense:
			r.Expenses.Common += m.Amount
		case domain.ClassificationReserveFund:
			r.Expenses.Reserve += m.Amount
		}
	}
	r.Receipts.Total = r.Receipts.Common + r.Receipts.Reserve
	r.Expenses.Total = r.Expenses.Common + r.Expenses.Reserve
	r.Balance = FundSplit{
		Common:  r.Receipts.Common - r.Expenses.Common,
		Reserve: r.Receipts.Reserve - r.Expenses.Reserve,
		Total:   r.Receipts.Total - r.Expenses.Total,
	}
	return r, nil
}

// Footer exposes the configured footer to document renderers.
func (s *Service) Footer(ctx context.Context) (string, error) {
	f, err := s.footer.Footer(ctx)
	if err != nil {
		return "", fmt.Errorf("Footer: %w", err)
	}
	return f, nil
}
