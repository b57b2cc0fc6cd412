package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/metrics"
)

type AllocationMode string

const (
	// AllocationAtomic records the receipt and every credit update in one transaction.
	AllocationAtomic AllocationMode = "atomic"
	// AllocationSequential persists each step on its own; a failure keeps earlier updates.
	AllocationSequential AllocationMode = "sequential"
)

type OverpaymentMode string

const (
	OverpaymentIgnore        OverpaymentMode = "ignore"
	OverpaymentCreditBalance OverpaymentMode = "credit_balance"
)

const defaultMaxAttempts = 3

type creditStore interface {
	Create(ctx context.Context, t *domain.Transaction) error
	FindOpenCredits(ctx context.Context, apartmentID uuid.UUID) ([]domain.Transaction, error)
	UpdateCredit(ctx context.Context, id uuid.UUID, paid int64, status domain.CreditStatus, version int64, now time.Time) (*domain.Transaction, error)
}

type txRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type AllocatorConfig struct {
	Mode        AllocationMode
	Overpayment OverpaymentMode
	MaxAttempts int
}

// PaymentMeta is stored on the receipt and has no effect on allocation.
type PaymentMeta struct {
	Method        *domain.PaymentMethod
	Reference     *string
	Notes         *string
	Description   *string
	Class         *domain.Classification
	CommonAmount  *int64
	ReserveAmount *int64
}

type PaymentInput struct {
	ApartmentID uuid.UUID
	Amount      int64
	Date        time.Time
	Meta        PaymentMeta

	// OnRecorded runs after allocation. In atomic mode it shares the transaction,
	// so an error there undoes the receipt too.
	OnRecorded func(ctx context.Context, receipt *domain.Transaction) error
}

// Allocation is the share of a payment applied to one credit sale.
type Allocation struct {
	CreditID uuid.UUID
	Applied  int64
	NewPaid  int64
	Status   domain.CreditStatus
	Version  int64
}

type AllocationResult struct {
	Receipt       *domain.Transaction
	Updated       []domain.Transaction
	Allocations   []Allocation
	Allocated     int64
	Unallocated   int64
	CreditBalance *domain.Transaction
}

// PlanAllocation spreads amount over the open credits oldest first (date, then id).
// It returns the allocations in application order and what is left over. The input
// slice is not modified; a non-positive amount allocates nothing.
func PlanAllocation(amount int64, open []domain.Transaction) ([]Allocation, int64) {
	ordered := make([]domain.Transaction, len(open))
	copy(ordered, open)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return bytes.Compare(ordered[i].ID[:], ordered[j].ID[:]) < 0
	})

	remaining := amount
	var plan []Allocation
	for _, credit := range ordered {
		if remaining <= 0 {
			break
		}
		owed := credit.Owed()
		if owed <= 0 {
			continue
		}

		applied := min(remaining, owed)
		newPaid := credit.Paid() + applied
		status := domain.CreditStatusPartial
		if newPaid >= credit.Amount {
			status = domain.CreditStatusPaid
		}

		plan = append(plan, Allocation{
			CreditID: credit.ID,
			Applied:  applied,
			NewPaid:  newPaid,
			Status:   status,
			Version:  credit.Version,
		})
		remaining -= applied
	}
	return plan, max(remaining, 0)
}

// Allocator records incoming payments and settles the payer's open credit sales FIFO.
type Allocator struct {
	store       creditStore
	tx          txRunner
	locks       locker
	mode        AllocationMode
	overpayment OverpaymentMode
	maxAttempts int
	now         func() time.Time
}

func NewAllocator(store creditStore, tx txRunner, locks locker, cfg AllocatorConfig) *Allocator {
	if cfg.Mode == "" {
		cfg.Mode = AllocationAtomic
	}
	if cfg.Overpayment == "" {
		cfg.Overpayment = OverpaymentIgnore
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	return &Allocator{
		store:       store,
		tx:          tx,
		locks:       locks,
		mode:        cfg.Mode,
		overpayment: cfg.Overpayment,
		maxAttempts: cfg.MaxAttempts,
		now:         time.Now,
	}
}

// Apply creates the receipt for in and applies its amount to the apartment's open credits.
// Calls for the same apartment are serialized.
func (a *Allocator) Apply(ctx context.Context, in PaymentInput) (*AllocationResult, error) {
	log := logging.FromContext(ctx)
	start := time.Now()
	defer func() { metrics.AllocationDuration.Observe(time.Since(start).Seconds()) }()

	unlock, err := a.locks.Lock(ctx, "apartment:"+in.ApartmentID.String())
	if err != nil {
		metrics.Allocations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("Apply: lock: %w", err)
	}
	defer unlock()

	receipt := a.newReceipt(in)

	var res *AllocationResult
	if a.mode == AllocationSequential {
		res, err = a.allocate(ctx, receipt, in.OnRecorded)
	} else {
		res, err = a.allocateAtomic(ctx, receipt, in.OnRecorded)
	}
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrVersionConflict) {
			outcome = "conflict"
		}
		metrics.Allocations.WithLabelValues(outcome).Inc()
		return nil, fmt.Errorf("Apply: %w", err)
	}

	metrics.Allocations.WithLabelValues("ok").Inc()
	metrics.AllocatedCents.Add(float64(res.Allocated))
	metrics.UnallocatedCents.Add(float64(res.Unallocated))

	log.Info("payment allocated",
		"receipt_id", res.Receipt.ID,
		"apartment_id", in.ApartmentID,
		"amount", in.Amount,
		"credits_updated", len(res.Updated),
		"allocated", res.Allocated,
		"unallocated", res.Unallocated,
		"mode", a.mode,
	)
	return res, nil
}

func (a *Allocator) allocateAtomic(ctx context.Context, receipt *domain.Transaction, onRecorded func(context.Context, *domain.Transaction) error) (*AllocationResult, error) {
	log := logging.FromContext(ctx)

	var (
		res *AllocationResult
		err error
	)
	for attempt := 1; ; attempt++ {
		err = a.tx.InTx(ctx, func(ctx context.Context) error {
			r, err := a.allocate(ctx, cloneTransaction(receipt), onRecorded)
			if err != nil {
				return err
			}
			res = r
			return nil
		})
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= a.maxAttempts {
			return nil, err
		}
		metrics.AllocationRetries.Inc()
		log.Warn("allocation conflicted, retrying",
			"receipt_id", receipt.ID,
			"attempt", attempt,
		)
	}
}

// allocate runs the receipt-then-credits sequence against whatever store ctx resolves to.
func (a *Allocator) allocate(ctx context.Context, receipt *domain.Transaction, onRecorded func(context.Context, *domain.Transaction) error) (*AllocationResult, error) {
	log := logging.FromContext(ctx)

	if err := a.store.Create(ctx, receipt); err != nil {
		return nil, fmt.Errorf("allocate: create receipt: %w", err)
	}

	open, err := a.store.FindOpenCredits(ctx, *receipt.ApartmentID)
	if err != nil {
		return nil, fmt.Errorf("allocate: open credits: %w", err)
	}

	plan, remaining := PlanAllocation(receipt.Amount, open)

	res := &AllocationResult{Receipt: receipt, Unallocated: remaining}
	for i, alloc := range plan {
		updated, err := a.store.UpdateCredit(ctx, alloc.CreditID, alloc.NewPaid, alloc.Status, alloc.Version, a.now())
		if err != nil {
			if a.mode == AllocationSequential && i > 0 {
				log.Error("allocation stopped partway",
					"receipt_id", receipt.ID,
					"credits_updated", i,
					"credits_planned", len(plan),
				)
			}
			return nil, fmt.Errorf("allocate: credit %s: %w", alloc.CreditID, err)
		}
		res.Updated = append(res.Updated, *updated)
		res.Allocations = append(res.Allocations, alloc)
		res.Allocated += alloc.Applied
	}

	if remaining > 0 && a.overpayment == OverpaymentCreditBalance {
		balance := a.newCreditBalance(receipt, remaining)
		if err := a.store.Create(ctx, balance); err != nil {
			return nil, fmt.Errorf("allocate: credit balance: %w", err)
		}
		res.CreditBalance = balance
	}

	if onRecorded != nil {
		if err := onRecorded(ctx, receipt); err != nil {
			return nil, fmt.Errorf("allocate: %w", err)
		}
	}
	return res, nil
}

func (a *Allocator) newReceipt(in PaymentInput) *domain.Transaction {
	now := a.now().UTC()
	apartmentID := in.ApartmentID
	return &domain.Transaction{
		ID:            uuid.New(),
		Type:          domain.TransactionTypePaymentReceipt,
		Amount:        in.Amount,
		Date:          in.Date.UTC(),
		Description:   in.Meta.Description,
		Reference:     in.Meta.Reference,
		PaymentMethod: in.Meta.Method,
		Notes:         in.Meta.Notes,
		PaymentClass:  in.Meta.Class,
		CommonAmount:  in.Meta.CommonAmount,
		ReserveAmount: in.Meta.ReserveAmount,
		ApartmentID:   &apartmentID,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (a *Allocator) newCreditBalance(receipt *domain.Transaction, amount int64) *domain.Transaction {
	now := a.now().UTC()
	description := "Saldo a favor"
	if receipt.Description != nil {
		description += " - " + *receipt.Description
	}
	receiptID := receipt.ID
	return &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TransactionTypeCreditBalance,
		Amount:      amount,
		Date:        receipt.Date,
		Description: &description,
		ApartmentID: receipt.ApartmentID,
		ReceiptID:   &receiptID,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func cloneTransaction(t *domain.Transaction) *domain.Transaction {
	c := *t
	return &c
}
