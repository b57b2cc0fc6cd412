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
	"github.com/josh-kwaku/edificio/internal/repository"
)

type bankAccountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error)
	List(ctx context.Context) ([]domain.BankAccount, error)
	Create(ctx context.Context, a *domain.BankAccount) error
	Update(ctx context.Context, a *domain.BankAccount) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type movementRepo interface {
	Create(ctx context.Context, m *domain.BankMovement) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BankMovementDetail, error)
	List(ctx context.Context, f repository.BankMovementFilter) ([]domain.BankMovementDetail, error)
	Update(ctx context.Context, m *domain.BankMovement) error
	SetReconciled(ctx context.Context, id uuid.UUID, reconciled bool, now time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type providerChecker interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceProvider, error)
}

// BankService manages bank accounts and the movements booked against them.
type BankService struct {
	accounts  bankAccountRepo
	movements movementRepo
	providers providerChecker
	now       func() time.Time
}

func NewBankService(accounts bankAccountRepo, movements movementRepo, providers providerChecker) *BankService {
	return &BankService{accounts: accounts, movements: movements, providers: providers, now: time.Now}
}

func (s *BankService) ListAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	return accounts, nil
}

func (s *BankService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", bankAccountError(err))
	}
	return a, nil
}

// CreateAccount stores the account. Marking it as default clears the flag on every other account.
func (s *BankService) CreateAccount(ctx context.Context, a *domain.BankAccount) error {
	if err := validateBankAccount(a); err != nil {
		return fmt.Errorf("CreateAccount: %w", err)
	}

	now := s.now().UTC()
	a.ID = uuid.New()
	a.CreatedAt = now
	a.UpdatedAt = now
	if err := s.accounts.Create(ctx, a); err != nil {
		return fmt.Errorf("CreateAccount: %w", err)
	}

	logging.FromContext(ctx).Info("bank account created", "bank_account_id", a.ID, "bank", a.Bank, "default", a.IsDefault)
	return nil
}

func (s *BankService) UpdateAccount(ctx context.Context, a *domain.BankAccount) error {
	if err := validateBankAccount(a); err != nil {
		return fmt.Errorf("UpdateAccount: %w", err)
	}
	current, err := s.GetAccount(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("UpdateAccount: %w", err)
	}
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = s.now().UTC()
	if err := s.accounts.Update(ctx, a); err != nil {
		return fmt.Errorf("UpdateAccount: %w", err)
	}
	return nil
}

func (s *BankService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteAccount: %w", bankAccountError(err))
	}
	logging.FromContext(ctx).Info("bank account deleted", "bank_account_id", id)
	return nil
}

func (s *BankService) ListMovements(ctx context.Context, f repository.BankMovementFilter) ([]domain.BankMovementDetail, error) {
	if f.BankAccountID != nil {
		if _, err := s.GetAccount(ctx, *f.BankAccountID); err != nil {
			return nil, fmt.Errorf("ListMovements: %w", err)
		}
	}
	movements, err := s.movements.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("ListMovements: %w", err)
	}
	return movements, nil
}

func (s *BankService) GetMovement(ctx context.Context, id uuid.UUID) (*domain.BankMovementDetail, error) {
	m, err := s.movements.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetMovement: %w", err)
	}
	return m, nil
}

func (s *BankService) CreateMovement(ctx context.Context, m *domain.BankMovement) (*domain.BankMovementDetail, error) {
	if err := s.validateMovement(ctx, m); err != nil {
		return nil, fmt.Errorf("CreateMovement: %w", err)
	}

	now := s.now().UTC()
	m.ID = uuid.New()
	m.Date = m.Date.UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := s.movements.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("CreateMovement: %w", err)
	}

	logging.FromContext(ctx).Info("bank movement created",
		"movement_id", m.ID, "bank_account_id", m.BankAccountID, "type", m.Type, "amount", m.Amount)
	return s.GetMovement(ctx, m.ID)
}

// UpdateMovement rewrites the editable fields. The link to a ledger transaction is kept.
func (s *BankService) UpdateMovement(ctx context.Context, m *domain.BankMovement) (*domain.BankMovementDetail, error) {
	if err := s.validateMovement(ctx, m); err != nil {
		return nil, fmt.Errorf("UpdateMovement: %w", err)
	}
	current, err := s.movements.GetByID(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("UpdateMovement: %w", err)
	}

	m.Date = m.Date.UTC()
	m.TransactionID = current.TransactionID
	m.CreatedAt = current.CreatedAt
	m.UpdatedAt = s.now().UTC()
	if err := s.movements.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("UpdateMovement: %w", err)
	}
	return s.GetMovement(ctx, m.ID)
}

func (s *BankService) Reconcile(ctx context.Context, id uuid.UUID, reconciled bool) (*domain.BankMovementDetail, error) {
	if err := s.movements.SetReconciled(ctx, id, reconciled, s.now()); err != nil {
		return nil, fmt.Errorf("Reconcile: %w", err)
	}
	logging.FromContext(ctx).Info("bank movement reconciled", "movement_id", id, "reconciled", reconciled)
	return s.GetMovement(ctx, id)
}

func (s *BankService) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	if err := s.movements.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteMovement: %w", err)
	}
	logging.FromContext(ctx).Info("bank movement deleted", "movement_id", id)
	return nil
}

func (s *BankService) validateMovement(ctx context.Context, m *domain.BankMovement) error {
	if !m.Type.IsValid() {
		return fmt.Errorf("type %q: %w", m.Type, domain.ErrInvalidRequest)
	}
	if m.Amount <= 0 {
		return domain.ErrInvalidAmount
	}
	m.Description = strings.TrimSpace(m.Description)
	if m.Description == "" {
		return fmt.Errorf("description required: %w", domain.ErrInvalidRequest)
	}
	if m.Classification != nil && !m.Classification.IsValid() {
		return fmt.Errorf("classification %q: %w", *m.Classification, domain.ErrInvalidRequest)
	}
	if m.Date.IsZero() {
		m.Date = s.now()
	}
	if _, err := s.accounts.GetByID(ctx, m.BankAccountID); err != nil {
		return bankAccountError(err)
	}
	if m.ProviderID != nil {
		if _, err := s.providers.GetByID(ctx, *m.ProviderID); err != nil {
			return fmt.Errorf("provider: %w", err)
		}
	}
	return nil
}

func validateBankAccount(a *domain.BankAccount) error {
	a.Bank = strings.TrimSpace(a.Bank)
	a.AccountNumber = strings.TrimSpace(a.AccountNumber)
	a.AccountType = strings.TrimSpace(a.AccountType)
	if a.Bank == "" || a.AccountNumber == "" || a.AccountType == "" {
		return fmt.Errorf("bank, account type and number required: %w", domain.ErrInvalidRequest)
	}
	return nil
}

func bankAccountError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrBankAccountNotFound
	}
	return err
}
