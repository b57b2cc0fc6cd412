package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/repository"
)

type transactionLister interface {
	List(ctx context.Context, f repository.TransactionFilter) ([]domain.TransactionWithApartment, error)
}

type apartmentLister interface {
	List(ctx context.Context) ([]domain.Apartment, error)
}

type Dashboard struct {
	Units             int
	Registrations     int
	Owners            int
	Tenants           int
	UnitsWithBoth     int
	OwnersMonthly     int64
	TenantsMonthly    int64
	Income            int64
	Expense           int64
	Balance           int64
	OutstandingCredit int64
	Recent            []domain.TransactionWithApartment
}

type DashboardService struct {
	apartments   apartmentLister
	transactions transactionLister
}

func NewDashboardService(apartments apartmentLister, transactions transactionLister) *DashboardService {
	return &DashboardService{apartments: apartments, transactions: transactions}
}

func (s *DashboardService) Summary(ctx context.Context) (*Dashboard, error) {
	var (
		apartments []domain.Apartment
		all        []domain.TransactionWithApartment
		recent     []domain.TransactionWithApartment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		apartments, err = s.apartments.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = s.transactions.List(gctx, repository.TransactionFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.transactions.List(gctx, repository.TransactionFilter{Limit: 10})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("Summary: %w", err)
	}

	d := &Dashboard{Registrations: len(apartments), Recent: recent}

	byNumber := make(map[string][2]bool)
	for _, a := range apartments {
		seen := byNumber[a.Number]
		if a.Occupancy == domain.OccupancyTenant {
			d.Tenants++
			d.TenantsMonthly += a.MonthlyCharge()
			seen[1] = true
		} else {
			d.Owners++
			d.OwnersMonthly += a.MonthlyCharge()
			seen[0] = true
		}
		byNumber[a.Number] = seen
	}
	d.Units = len(byNumber)
	for _, seen := range byNumber {
		if seen[0] && seen[1] {
			d.UnitsWithBoth++
		}
	}

	for _, t := range all {
		switch t.Type {
		case domain.TransactionTypeIncome, domain.TransactionTypePaymentReceipt:
			d.Income += t.Amount
		case domain.TransactionTypeExpense:
			d.Expense += t.Amount
		case domain.TransactionTypeCreditSale:
			if t.CreditStatus == nil || *t.CreditStatus != domain.CreditStatusPaid {
				d.OutstandingCredit += t.Amount - t.Paid()
			}
		}
	}
	d.Balance = d.Income - d.Expense

	return d, nil
}
