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

type providerRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceProvider, error)
	List(ctx context.Context, activeOnly bool) ([]domain.ServiceProvider, error)
	Create(ctx context.Context, p *domain.ServiceProvider) error
	Update(ctx context.Context, p *domain.ServiceProvider) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProviderService struct {
	providers providerRepo
	now       func() time.Time
}

func NewProviderService(providers providerRepo) *ProviderService {
	return &ProviderService{providers: providers, now: time.Now}
}

func (s *ProviderService) List(ctx context.Context, activeOnly bool) ([]domain.ServiceProvider, error) {
	providers, err := s.providers.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return providers, nil
}

func (s *ProviderService) Get(ctx context.Context, id uuid.UUID) (*domain.ServiceProvider, error) {
	p, err := s.providers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return p, nil
}

func (s *ProviderService) Create(ctx context.Context, p *domain.ServiceProvider) error {
	if err := validateProvider(p); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	now := s.now().UTC()
	p.ID = uuid.New()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.providers.Create(ctx, p); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	logging.FromContext(ctx).Info("provider created", "provider_id", p.ID, "kind", p.Kind)
	return nil
}

func (s *ProviderService) Update(ctx context.Context, p *domain.ServiceProvider) error {
	if err := validateProvider(p); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	current, err := s.providers.GetByID(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = s.now().UTC()
	if err := s.providers.Update(ctx, p); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

func (s *ProviderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.providers.Delete(ctx, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	logging.FromContext(ctx).Info("provider deleted", "provider_id", id)
	return nil
}

func validateProvider(p *domain.ServiceProvider) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("name required: %w", domain.ErrInvalidRequest)
	}
	if !p.Kind.IsValid() {
		return fmt.Errorf("kind %q: %w", p.Kind, domain.ErrInvalidRequest)
	}
	return nil
}
