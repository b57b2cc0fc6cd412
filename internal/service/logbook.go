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

type logbookRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LogbookEntry, error)
	List(ctx context.Context, status *domain.LogbookStatus) ([]domain.LogbookEntry, error)
	Create(ctx context.Context, e *domain.LogbookEntry) error
	Update(ctx context.Context, e *domain.LogbookEntry) error
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type LogbookService struct {
	entries logbookRepo
	now     func() time.Time
}

func NewLogbookService(entries logbookRepo) *LogbookService {
	return &LogbookService{entries: entries, now: time.Now}
}

func (s *LogbookService) List(ctx context.Context, status *domain.LogbookStatus) ([]domain.LogbookEntry, error) {
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("List: status %q: %w", *status, domain.ErrInvalidRequest)
	}
	entries, err := s.entries.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return entries, nil
}

func (s *LogbookService) Get(ctx context.Context, id uuid.UUID) (*domain.LogbookEntry, error) {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return e, nil
}

func (s *LogbookService) Create(ctx context.Context, e *domain.LogbookEntry) error {
	if err := s.validate(e); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	now := s.now().UTC()
	e.ID = uuid.New()
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := s.entries.Create(ctx, e); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	logging.FromContext(ctx).Info("logbook entry created", "entry_id", e.ID, "kind", e.Kind, "status", e.Status)
	return nil
}

func (s *LogbookService) Update(ctx context.Context, e *domain.LogbookEntry) error {
	if err := s.validate(e); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	current, err := s.entries.GetByID(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	e.CreatedAt = current.CreatedAt
	e.UpdatedAt = s.now().UTC()
	if err := s.entries.Update(ctx, e); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

func (s *LogbookService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	logging.FromContext(ctx).Info("logbook entry deleted", "entry_id", id)
	return nil
}

// ExpireDue marks pending due dates that have already passed as expired.
func (s *LogbookService) ExpireDue(ctx context.Context) (int64, error) {
	n, err := s.entries.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("ExpireDue: %w", err)
	}
	return n, nil
}

func (s *LogbookService) validate(e *domain.LogbookEntry) error {
	e.Detail = strings.TrimSpace(e.Detail)
	if e.Detail == "" {
		return fmt.Errorf("detail required: %w", domain.ErrInvalidRequest)
	}
	if !e.Kind.IsValid() {
		return fmt.Errorf("kind %q: %w", e.Kind, domain.ErrInvalidRequest)
	}
	if e.Status == "" {
		e.Status = domain.LogbookStatusPending
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("status %q: %w", e.Status, domain.ErrInvalidRequest)
	}
	if e.Date.IsZero() {
		e.Date = s.now()
	}
	e.Date = e.Date.UTC()
	return nil
}
