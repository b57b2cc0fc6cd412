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

type noticeRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportNotice, error)
	ListByPeriod(ctx context.Context, month, year int, activeOnly bool) ([]domain.ReportNotice, error)
	Create(ctx context.Context, n *domain.ReportNotice) error
	Update(ctx context.Context, n *domain.ReportNotice) error
	Reorder(ctx context.Context, ids []uuid.UUID, now time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type settingRepo interface {
	Get(ctx context.Context, key string) (*domain.ReportSetting, error)
	Set(ctx context.Context, key, value string, now time.Time) error
}

// NoticeService manages the notices printed on monthly reports and the report footer.
type NoticeService struct {
	notices  noticeRepo
	settings settingRepo
	now      func() time.Time
}

func NewNoticeService(notices noticeRepo, settings settingRepo) *NoticeService {
	return &NoticeService{notices: notices, settings: settings, now: time.Now}
}

func (s *NoticeService) List(ctx context.Context, month, year int, activeOnly bool) ([]domain.ReportNotice, error) {
	if err := validPeriod(month, year); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	notices, err := s.notices.ListByPeriod(ctx, month, year, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return notices, nil
}

// Create appends a notice at the end of its month.
func (s *NoticeService) Create(ctx context.Context, text string, month, year int) (*domain.ReportNotice, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("Create: text required: %w", domain.ErrInvalidRequest)
	}
	if err := validPeriod(month, year); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	now := s.now().UTC()
	n := &domain.ReportNotice{
		ID:        uuid.New(),
		Text:      text,
		Month:     month,
		Year:      year,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.notices.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	logging.FromContext(ctx).Info("notice created", "notice_id", n.ID, "month", month, "year", year, "position", n.Position)
	return n, nil
}

// Update changes the text and the active flag. Nil leaves a field unchanged.
func (s *NoticeService) Update(ctx context.Context, id uuid.UUID, text *string, active *bool) (*domain.ReportNotice, error) {
	n, err := s.notices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	if text != nil {
		t := strings.TrimSpace(*text)
		if t == "" {
			return nil, fmt.Errorf("Update: text required: %w", domain.ErrInvalidRequest)
		}
		n.Text = t
	}
	if active != nil {
		n.Active = *active
	}
	n.UpdatedAt = s.now().UTC()
	if err := s.notices.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	return n, nil
}

func (s *NoticeService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.notices.Delete(ctx, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (s *NoticeService) Reorder(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return fmt.Errorf("Reorder: empty order: %w", domain.ErrInvalidRequest)
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("Reorder: repeated id %s: %w", id, domain.ErrInvalidRequest)
		}
		seen[id] = struct{}{}
	}
	if err := s.notices.Reorder(ctx, ids, s.now()); err != nil {
		return fmt.Errorf("Reorder: %w", err)
	}
	return nil
}

// Footer returns the configured report footer or the default one.
func (s *NoticeService) Footer(ctx context.Context) (string, error) {
	setting, err := s.settings.Get(ctx, domain.SettingReportFooter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DefaultReportFooter, nil
		}
		return "", fmt.Errorf("Footer: %w", err)
	}
	return setting.Value, nil
}

func (s *NoticeService) SetFooter(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("SetFooter: text required: %w", domain.ErrInvalidRequest)
	}
	if err := s.settings.Set(ctx, domain.SettingReportFooter, text, s.now()); err != nil {
		return fmt.Errorf("SetFooter: %w", err)
	}
	return nil
}

func validPeriod(month, year int) error {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return fmt.Errorf("period %02d/%d: %w", month, year, domain.ErrInvalidRequest)
	}
	return nil
}
