package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
)

type apartmentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Apartment, error)
	List(ctx context.Context) ([]domain.Apartment, error)
	Create(ctx context.Context, a *domain.Apartment) error
	Update(ctx context.Context, a *domain.Apartment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ApartmentService struct {
	apartments apartmentRepo
	now        func() time.Time
}

func NewApartmentService(apartments apartmentRepo) *ApartmentService {
	return &ApartmentService{apartments: apartments, now: time.Now}
}

// List returns apartments ordered by number, numbers compared as numbers, owners first.
func (s *ApartmentService) List(ctx context.Context) ([]domain.Apartment, error) {
	apartments, err := s.apartments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	domain.SortApartments(apartments)
	return apartments, nil
}

func (s *ApartmentService) Get(ctx context.Context, id uuid.UUID) (*domain.Apartment, error) {
	a, err := s.apartments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", apartmentError(err))
	}
	return a, nil
}

func (s *ApartmentService) Create(ctx context.Context, a *domain.Apartment) error {
	if err := validateApartment(a); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	now := s.now().UTC()
	a.ID = uuid.New()
	a.CreatedAt = now
	a.UpdatedAt = now
	if err := s.apartments.Create(ctx, a); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	logging.FromContext(ctx).Info("apartment created", "apartment_id", a.ID, "number", a.Number, "occupancy", a.Occupancy)
	return nil
}

func (s *ApartmentService) Update(ctx context.Context, a *domain.Apartment) error {
	if err := validateApartment(a); err != nil {
		return fmt.Errorf("Update: %w", err)
	}

	current, err := s.Get(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = s.now().UTC()
	if err := s.apartments.Update(ctx, a); err != nil {
		return fmt.Errorf("Update: %w", err)
	}

	logging.FromContext(ctx).Info("apartment updated", "apartment_id", a.ID)
	return nil
}

func (s *ApartmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.apartments.Delete(ctx, id); err != nil {
		return fmt.Errorf("Delete: %w", apartmentError(err))
	}
	logging.FromContext(ctx).Info("apartment deleted", "apartment_id", id)
	return nil
}

func validateApartment(a *domain.Apartment) error {
	a.Number = strings.TrimSpace(a.Number)
	if a.Number == "" {
		return fmt.Errorf("number required: %w", domain.ErrInvalidRequest)
	}
	if !a.Occupancy.IsValid() {
		return fmt.Errorf("occupancy %q: %w", a.Occupancy, domain.ErrInvalidRequest)
	}
	if a.CommonExpenses < 0 || a.ReserveFund < 0 {
		return fmt.Errorf("monthly amounts: %w", domain.ErrInvalidAmount)
	}
	return nil
}

func apartmentError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrApartmentNotFound
	}
	return err
}
