package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/repository"
)

type transactionRepo interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, f repository.TransactionFilter) ([]domain.TransactionWithApartment, error)
	UnlinkedReceipts(ctx context.Context) ([]domain.TransactionWithApartment, error)
	Update(ctx context.Context, t *domain.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	Balances(ctx context.Context) (map[uuid.UUID]int64, error)
	HasCreditSale(ctx context.Context, apartmentID uuid.UUID, category domain.Category, from, to time.Time) (bool, error)
}

type apartmentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Apartment, error)
	List(ctx context.Context) ([]domain.Apartment, error)
}

type bankAccountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error)
	GetDefault(ctx context.Context) (*domain.BankAccount, error)
}

type movementRepo interface {
	Create(ctx context.Context, m *domain.BankMovement) error
	GetByTransaction(ctx context.Context, transactionID uuid.UUID) (*domain.BankMovementDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	transactions transactionRepo
	apartments   apartmentRepo
	accounts     bankAccountRepo
	movements    movementRepo
	allocator    *Allocator
	tx           txRunner
	now          func() time.Time
}

func NewService(
	transactions transactionRepo,
	apartments apartmentRepo,
	accounts bankAccountRepo,
	movements movementRepo,
	allocator *Allocator,
	tx txRunner,
) *Service {
	return &Service{
		transactions: transactions,
		apartments:   apartments,
		accounts:     accounts,
		movements:    movements,
		allocator:    allocator,
		tx:           tx,
		now:          time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	t, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, f repository.TransactionFilter) ([]domain.TransactionWithApartment, error) {
	txs, err := s.transactions.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return txs, nil
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]domain.TransactionWithApartment, error) {
	if limit <= 0 {
		limit = 10
	}
	txs, err := s.transactions.List(ctx, repository.TransactionFilter{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	return txs, nil
}

func (s *Service) ListByApartment(ctx context.Context, apartmentID uuid.UUID) ([]domain.TransactionWithApartment, error) {
	if _, err := s.apartment(ctx, apartmentID); err != nil {
		return nil, fmt.Errorf("ListByApartment: %w", err)
	}
	txs, err := s.transactions.List(ctx, repository.TransactionFilter{ApartmentID: &apartmentID})
	if err != nil {
		return nil, fmt.Errorf("ListByApartment: %w", err)
	}
	return txs, nil
}

func (s *Service) UnlinkedReceipts(ctx context.Context) ([]domain.TransactionWithApartment, error) {
	txs, err := s.transactions.UnlinkedReceipts(ctx)
	if err != nil {
		return nil, fmt.Errorf("UnlinkedReceipts: %w", err)
	}
	return txs, nil
}

type CreateRequest struct {
	Type          domain.TransactionType
	Amount        int64
	Date          time.Time
	Category      *domain.Category
	Description   *string
	Reference     *string
	PaymentMethod *domain.PaymentMethod
	Notes         *string
	ApartmentID   *uuid.UUID
}

// Create records a plain transaction. Credit sales and receipts with an apartment go
// through their dedicated paths so receipts are always allocated.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("Create: %w", domain.ErrInvalidAmount)
	}

	switch req.Type {
	case domain.TransactionTypeCreditSale:
		if req.ApartmentID == nil {
			return nil, fmt.Errorf("Create: credit sale without apartment: %w", domain.ErrInvalidRequest)
		}
		return s.CreateCreditSale(ctx, CreditSaleRequest{
			ApartmentID: *req.ApartmentID,
			Amount:      req.Amount,
			Date:        req.Date,
			Category:    req.Category,
			Description: req.Description,
			Reference:   req.Reference,
			Notes:       req.Notes,
		})
	case domain.TransactionTypePaymentReceipt:
		if req.ApartmentID == nil {
			return nil, fmt.Errorf("Create: receipt without apartment: %w", domain.ErrInvalidRequest)
		}
		res, err := s.CreateReceipt(ctx, ReceiptRequest{
			ApartmentID: *req.ApartmentID,
			Amount:      req.Amount,
			Date:        req.Date,
			Method:      req.PaymentMethod,
			Reference:   req.Reference,
			Notes:       req.Notes,
		})
		if err != nil {
			return nil, fmt.Errorf("Create: %w", err)
		}
		return res.Receipt, nil
	case domain.TransactionTypeIncome, domain.TransactionTypeExpense:
	default:
		return nil, fmt.Errorf("Create: type %q: %w", req.Type, domain.ErrInvalidRequest)
	}

	if req.ApartmentID != nil {
		if _, err := s.apartment(ctx, *req.ApartmentID); err != nil {
			return nil, fmt.Errorf("Create: %w", err)
		}
	}

	now := s.now().UTC()
	t := &domain.Transaction{
		ID:            uuid.New(),
		Type:          req.Type,
		Amount:        req.Amount,
		Date:          req.Date.UTC(),
		Category:      req.Category,
		Description:   req.Description,
		Reference:     req.Reference,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		ApartmentID:   req.ApartmentID,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.transactions.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	logging.FromContext(ctx).Info("transaction created", "transaction_id", t.ID, "type", t.Type, "amount", t.Amount)
	return t, nil
}

type CreditSaleRequest struct {
	ApartmentID uuid.UUID
	Amount      int64
	Date        time.Time
	Category    *domain.Category
	Description *string
	Reference   *string
	Notes       *string
}

func (s *Service) CreateCreditSale(ctx context.Context, req CreditSaleRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("CreateCreditSale: %w", domain.ErrInvalidAmount)
	}
	if _, err := s.apartment(ctx, req.ApartmentID); err != nil {
		return nil, fmt.Errorf("CreateCreditSale: %w", err)
	}

	now := s.now().UTC()
	status := domain.CreditStatusPending
	var paid int64
	apartmentID := req.ApartmentID
	t := &domain.Transaction{
		ID:           uuid.New(),
		Type:         domain.TransactionTypeCreditSale,
		Amount:       req.Amount,
		Date:         req.Date.UTC(),
		Category:     req.Category,
		Description:  req.Description,
		Reference:    req.Reference,
		Notes:        req.Notes,
		CreditStatus: &status,
		PaidAmount:   &paid,
		ApartmentID:  &apartmentID,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.transactions.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("CreateCreditSale: %w", err)
	}

	logging.FromContext(ctx).Info("credit sale created", "transaction_id", t.ID, "apartment_id", apartmentID, "amount", t.Amount)
	return t, nil
}

type ReceiptRequest struct {
	ApartmentID   uuid.UUID
	Amount        int64
	Date          time.Time
	Method        *domain.PaymentMethod
	Reference     *string
	Notes         *string
	Class         *domain.Classification
	CommonAmount  *int64
	ReserveAmount *int64
	BankAccountID *uuid.UUID
}

type ReceiptResult struct {
	*AllocationResult
	Movement *domain.BankMovement
}

// CreateReceipt records a payment from an apartment, settles its open credit sales
// and, when a bank account is given, books the matching bank income.
func (s *Service) CreateReceipt(ctx context.Context, req ReceiptRequest) (*ReceiptResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("CreateReceipt: %w", domain.ErrInvalidAmount)
	}

	meta, err := receiptSplit(req)
	if err != nil {
		return nil, fmt.Errorf("CreateReceipt: %w", err)
	}

	apt, err := s.apartment(ctx, req.ApartmentID)
	if err != nil {
		return nil, fmt.Errorf("CreateReceipt: %w", err)
	}

	var account *domain.BankAccount
	if req.BankAccountID != nil {
		account, err = s.accounts.GetByID(ctx, *req.BankAccountID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("CreateReceipt: %w", domain.ErrBankAccountNotFound)
			}
			return nil, fmt.Errorf("CreateReceipt: %w", err)
		}
	}

	description := ReceiptDescription(apt, meta.Class, req.Reference)
	meta.Description = &description
	meta.Method = req.Method
	meta.Reference = req.Reference
	meta.Notes = req.Notes

	var movement *domain.BankMovement
	in := PaymentInput{
		ApartmentID: req.ApartmentID,
		Amount:      req.Amount,
		Date:        req.Date,
		Meta:        meta,
	}
	if account != nil {
		in.OnRecorded = func(ctx context.Context, receipt *domain.Transaction) error {
			m := s.receiptMovement(receipt, account.ID, description)
			if err := s.movements.Create(ctx, m); err != nil {
				return fmt.Errorf("bank movement: %w", err)
			}
			movement = m
			return nil
		}
	}

	res, err := s.allocator.Apply(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("CreateReceipt: %w", err)
	}
	return &ReceiptResult{AllocationResult: res, Movement: movement}, nil
}

func receiptSplit(req ReceiptRequest) (PaymentMeta, error) {
	var meta PaymentMeta
	switch {
	case req.Class != nil:
		if !req.Class.IsValid() {
			return meta, fmt.Errorf("classification %q: %w", *req.Class, domain.ErrInvalidRequest)
		}
		amount := req.Amount
		meta.Class = req.Class
		if *req.Class == domain.ClassificationReserveFund {
			meta.ReserveAmount = &amount
		} else {
			meta.CommonAmount = &amount
		}
	case req.CommonAmount != nil || req.ReserveAmount != nil:
		var common, reserve int64
		if req.CommonAmount != nil {
			common = *req.CommonAmount
		}
		if req.ReserveAmount != nil {
			reserve = *req.ReserveAmount
		}
		if common < 0 || reserve < 0 || common+reserve != req.Amount {
			return meta, fmt.Errorf("split %d+%d does not add up to %d: %w", common, reserve, req.Amount, domain.ErrInvalidRequest)
		}
		meta.CommonAmount = &common
		meta.ReserveAmount = &reserve
	default:
		class := domain.ClassificationCommonExpense
		amount := req.Amount
		meta.Class = &class
		meta.CommonAmount = &amount
	}
	return meta, nil
}

// ReceiptDescription is the label printed on a receipt, e.g.
// "Recibo de Pago (Gasto Común) - Apto 101 (Propietario) - Ref: T-55".
func ReceiptDescription(apt *domain.Apartment, class *domain.Classification, reference *string) string {
	label := "Gasto Común / Fondo de Reserva"
	if class != nil {
		label = class.Label()
	}
	d := fmt.Sprintf("Recibo de Pago (%s) - Apto %s (%s)", label, apt.Number, apt.Occupancy.Label())
	if reference != nil && *reference != "" {
		d += " - Ref: " + *reference
	}
	return d
}

func (s *Service) receiptMovement(receipt *domain.Transaction, accountID uuid.UUID, description string) *domain.BankMovement {
	now := s.now().UTC()
	receiptID := receipt.ID
	return &domain.BankMovement{
		ID:             uuid.New(),
		Type:           domain.MovementTypeIncome,
		Amount:         receipt.Amount,
		Date:           receipt.Date,
		Description:    description,
		Reference:      receipt.Reference,
		Classification: receipt.PaymentClass,
		BankAccountID:  accountID,
		TransactionID:  &receiptID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

type UpdateRequest struct {
	Amount        int64
	Date          time.Time
	Category      *domain.Category
	Description   *string
	Reference     *string
	PaymentMethod *domain.PaymentMethod
	Notes         *string
	ApartmentID   *uuid.UUID
	// Version, when set, must match the stored one.
	Version int64
}

// Update edits a transaction in place. A credit sale keeps what was paid on it and
// has its status recomputed; its amount cannot drop below that.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("Update: %w", domain.ErrInvalidAmount)
	}

	t, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	if req.Version != 0 && req.Version != t.Version {
		return nil, fmt.Errorf("Update: %w", domain.ErrVersionConflict)
	}
	if req.ApartmentID != nil {
		if _, err := s.apartment(ctx, *req.ApartmentID); err != nil {
			return nil, fmt.Errorf("Update: %w", err)
		}
	}

	t.Amount = req.Amount
	t.Date = req.Date.UTC()
	t.Category = req.Category
	t.Description = req.Description
	t.Reference = req.Reference
	t.PaymentMethod = req.PaymentMethod
	t.Notes = req.Notes
	t.ApartmentID = req.ApartmentID
	t.UpdatedAt = s.now().UTC()

	switch t.Type {
	case domain.TransactionTypeCreditSale:
		if t.ApartmentID == nil {
			return nil, fmt.Errorf("Update: credit sale without apartment: %w", domain.ErrInvalidRequest)
		}
		if t.Amount < t.Paid() {
			return nil, fmt.Errorf("Update: amount below paid %d: %w", t.Paid(), domain.ErrInvalidAmount)
		}
		status := domain.CreditStatusFor(t.Paid(), t.Amount)
		t.CreditStatus = &status
	case domain.TransactionTypePaymentReceipt:
		if t.PaymentClass != nil {
			amount := t.Amount
			if *t.PaymentClass == domain.ClassificationReserveFund {
				t.ReserveAmount = &amount
			} else {
				t.CommonAmount = &amount
			}
		}
	}

	if err := s.transactions.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	logging.FromContext(ctx).Info("transaction updated", "transaction_id", t.ID, "version", t.Version)
	return t, nil
}

// Delete removes a transaction together with the bank movement that points to it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		m, err := s.movements.GetByTransaction(ctx, id)
		switch {
		case err == nil:
			if err := s.movements.Delete(ctx, m.ID); err != nil {
				return err
			}
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		return s.transactions.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	logging.FromContext(ctx).Info("transaction deleted", "transaction_id", id)
	return nil
}

// LinkReceiptToBank books a bank income for a receipt recorded without one. Without
// an explicit account the default account is used.
func (s *Service) LinkReceiptToBank(ctx context.Context, transactionID uuid.UUID, bankAccountID *uuid.UUID) (*domain.BankMovement, error) {
	t, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("LinkReceiptToBank: %w", err)
	}
	if t.Type != domain.TransactionTypePaymentReceipt {
		return nil, fmt.Errorf("LinkReceiptToBank: %w", domain.ErrNotAReceipt)
	}

	_, err = s.movements.GetByTransaction(ctx, transactionID)
	if err == nil {
		return nil, fmt.Errorf("LinkReceiptToBank: %w", domain.ErrReceiptAlreadyLinked)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("LinkReceiptToBank: %w", err)
	}

	var account *domain.BankAccount
	if bankAccountID != nil {
		account, err = s.accounts.GetByID(ctx, *bankAccountID)
	} else {
		account, err = s.accounts.GetDefault(ctx)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("LinkReceiptToBank: %w", domain.ErrBankAccountNotFound)
		}
		return nil, fmt.Errorf("LinkReceiptToBank: %w", err)
	}

	number := "N/A"
	if t.ApartmentID != nil {
		if apt, err := s.apartments.GetByID(ctx, *t.ApartmentID); err == nil {
			number = apt.Number
		}
	}
	desc := "Recibo de pago"
	if t.Description != nil && *t.Description != "" {
		desc = *t.Description
	}

	m := s.receiptMovement(t, account.ID, fmt.Sprintf("Pago Apto %s - %s", number, desc))
	if err := s.movements.Create(ctx, m); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("LinkReceiptToBank: %w", domain.ErrReceiptAlreadyLinked)
		}
		return nil, fmt.Errorf("LinkReceiptToBank: %w", err)
	}

	logging.FromContext(ctx).Info("receipt linked to bank", "transaction_id", t.ID, "movement_id", m.ID, "bank_account_id", account.ID)
	return m, nil
}

func (s *Service) apartment(ctx context.Context, id uuid.UUID) (*domain.Apartment, error) {
	apt, err := s.apartments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrApartmentNotFound
		}
		return nil, err
	}
	return apt, nil
}
