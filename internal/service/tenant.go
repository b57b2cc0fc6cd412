package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
)

type tenantRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
	ListByApartment(ctx context.Context, apartmentID uuid.UUID) ([]domain.Tenant, error)
	Create(ctx context.Context, t *domain.Tenant) error
	Update(ctx context.Context, t *domain.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type apartmentChecker interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Apartment, error)
}

type TenantService struct {
	tenants    tenantRepo
	apartments apartmentChecker
	now        func() time.Time
}

func NewTenantService(tenants tenantRepo, apartments apartmentChecker) *TenantService {
	return &TenantService{tenants: tenants, apartments: apartments, now: time.Now}
}

func (s *TenantService) List(ctx context.Context) ([]domain.Tenant, error) {
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return tenants, nil
}

func (s *TenantService) ListByApartment(ctx context.Context, apartmentID uuid.UUID) ([]domain.Tenant, error) {
	if err := s.checkApartment(ctx, &apartmentID); err != nil {
		return nil, fmt.Errorf("ListByApartment: %w", err)
	}
	tenants, err := s.tenants.ListByApartment(ctx, apartmentID)
	if err != nil {
		return nil, fmt.Errorf("ListByApartment: %w", err)
	}
	return tenants, nil
}

func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	t, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return t, nil
}

func (s *TenantService) Create(ctx context.Context, t *domain.Tenant) error {
	if err := validateTenant(t); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	if err := s.checkApartment(ctx, t.ApartmentID); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	now := s.now().UTC()
	t.ID = uuid.New()
	if t.MoveInDate.IsZero() {
		t.MoveInDate = now
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := s.tenants.Create(ctx, t); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	logging.FromContext(ctx).Info("tenant created", "tenant_id", t.ID, "apartment_id", t.ApartmentID)
	return nil
}

func (s *TenantService) Update(ctx context.Context, t *domain.Tenant) error {
	if err := validateTenant(t); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	current, err := s.tenants.GetByID(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if err := s.checkApartment(ctx, t.ApartmentID); err != nil {
		return fmt.Errorf("Update: %w", err)
	}

	if t.MoveInDate.IsZero() {
		t.MoveInDate = current.MoveInDate
	}
	t.CreatedAt = current.CreatedAt
	t.UpdatedAt = s.now().UTC()
	if err := s.tenants.Update(ctx, t); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

func (s *TenantService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tenants.Delete(ctx, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	logging.FromContext(ctx).Info("tenant deleted", "tenant_id", id)
	return nil
}

func (s *TenantService) checkApartment(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.apartments.GetByID(ctx, *id); err != nil {
		return apartmentError(err)
	}
	return nil
}

func validateTenant(t *domain.Tenant) error {
	t.FirstName = strings.TrimSpace(t.FirstName)
	t.LastName = strings.TrimSpace(t.LastName)
	if t.FirstName == "" || t.LastName == "" {
		return fmt.Errorf("name required: %w", domain.ErrInvalidRequest)
	}
	if t.Kind == "" {
		t.Kind = domain.OccupancyTenant
	}
	if !t.Kind.IsValid() {
		return fmt.Errorf("kind %q: %w", t.Kind, domain.ErrInvalidRequest)
	}
	if t.MoveOutDate != nil && !t.MoveInDate.IsZero() && t.MoveOutDate.Before(t.MoveInDate) {
		return fmt.Errorf("move-out before move-in: %w", domain.ErrInvalidRequest)
	}
	return nil
}
