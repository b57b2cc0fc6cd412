package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/format"
	"github.com/josh-kwaku/edificio/internal/logging"
)

// GenerateMonthlyCharges bills every apartment its common expenses and reserve fund
// for the month of now. Charges that already exist for the month are skipped.
func (s *Service) GenerateMonthlyCharges(ctx context.Context, now time.Time) ([]domain.Transaction, error) {
	log := logging.FromContext(ctx)

	apts, err := s.apartments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("GenerateMonthlyCharges: %w", err)
	}
	if len(apts) == 0 {
		return nil, fmt.Errorf("GenerateMonthlyCharges: %w", domain.ErrNoApartments)
	}
	domain.SortApartments(apts)

	now = now.UTC()
	from, to := format.MonthRange(now.Month(), now.Year())
	period := format.Period(now.Month(), now.Year())

	var created []domain.Transaction
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		for _, apt := range apts {
			charges := []struct {
				category domain.Category
				amount   int64
				label    string
			}{
				{domain.CategoryCommonExpenses, apt.CommonExpenses, "Gastos Comunes"},
				{domain.CategoryReserveFund, apt.ReserveFund, "Fondo de Reserva"},
			}
			for _, c := range charges {
				if c.amount <= 0 {
					continue
				}
				exists, err := s.transactions.HasCreditSale(ctx, apt.ID, c.category, from, to)
				if err != nil {
					return err
				}
				if exists {
					continue
				}

				t := s.monthlyCharge(apt.ID, c.category, c.amount, c.label+" - "+period, now)
				if err := s.transactions.Create(ctx, t); err != nil {
					return err
				}
				created = append(created, *t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("GenerateMonthlyCharges: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("GenerateMonthlyCharges: %w", domain.ErrChargesAlreadyGenerated)
	}

	log.Info("monthly charges generated", "period", period, "count", len(created))
	return created, nil
}

func (s *Service) monthlyCharge(apartmentID uuid.UUID, category domain.Category, amount int64, description string, date time.Time) *domain.Transaction {
	now := s.now().UTC()
	status := domain.CreditStatusPending
	var paid int64
	return &domain.Transaction{
		ID:           uuid.New(),
		Type:         domain.TransactionTypeCreditSale,
		Amount:       amount,
		Date:         date,
		Category:     &category,
		Description:  &description,
		CreditStatus: &status,
		PaidAmount:   &paid,
		ApartmentID:  &apartmentID,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

type ApartmentBalance struct {
	Apartment domain.Apartment
	// Balance is positive when the apartment owes, negative when it has credit in favour.
	Balance int64
}

func (s *Service) Balances(ctx context.Context) ([]ApartmentBalance, error) {
	apts, err := s.apartments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("Balances: %w", err)
	}
	sums, err := s.transactions.Balances(ctx)
	if err != nil {
		return nil, fmt.Errorf("Balances: %w", err)
	}
	domain.SortApartments(apts)

	out := make([]ApartmentBalance, 0, len(apts))
	for _, apt := range apts {
		out = append(out, ApartmentBalance{Apartment: apt, Balance: sums[apt.ID]})
	}
	return out, nil
}
