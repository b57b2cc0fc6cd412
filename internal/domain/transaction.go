package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeIncome         TransactionType = "INCOME"
	TransactionTypeExpense        TransactionType = "EXPENSE"
	TransactionTypeCreditSale     TransactionType = "CREDIT_SALE"
	TransactionTypePaymentReceipt TransactionType = "PAYMENT_RECEIPT"
	TransactionTypeCreditBalance  TransactionType = "CREDIT_BALANCE"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeCreditSale,
		TransactionTypePaymentReceipt, TransactionTypeCreditBalance:
		return true
	}
	return false
}

// Label is the Spanish name used on listings and documents.
func (t TransactionType) Label() string {
	switch t {
	case TransactionTypeIncome:
		return "Ingreso"
	case TransactionTypeExpense:
		return "Egreso"
	case TransactionTypeCreditSale:
		return "Venta Crédito"
	case TransactionTypePaymentReceipt:
		return "Recibo de Pago"
	case TransactionTypeCreditBalance:
		return "Saldo a Favor"
	}
	return string(t)
}

type Category string

const (
	CategoryCommonExpenses Category = "COMMON_EXPENSES"
	CategoryReserveFund    Category = "RESERVE_FUND"
	CategoryMaintenance    Category = "MAINTENANCE"
	CategoryServices       Category = "SERVICES"
	CategoryAdministration Category = "ADMINISTRATION"
	CategoryRepairs        Category = "REPAIRS"
	CategoryCleaning       Category = "CLEANING"
	CategorySecurity       Category = "SECURITY"
	CategoryOther          Category = "OTHER"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryCommonExpenses, CategoryReserveFund, CategoryMaintenance, CategoryServices,
		CategoryAdministration, CategoryRepairs, CategoryCleaning, CategorySecurity, CategoryOther:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodCheck    PaymentMethod = "CHECK"
	PaymentMethodOther    PaymentMethod = "OTHER"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodCash:
		return "Efectivo"
	case PaymentMethodTransfer:
		return "Transferencia"
	case PaymentMethodCard:
		return "Tarjeta"
	case PaymentMethodCheck:
		return "Cheque"
	case PaymentMethodOther:
		return "Otro"
	}
	return string(m)
}

type CreditStatus string

const (
	CreditStatusPending CreditStatus = "PENDING"
	CreditStatusPartial CreditStatus = "PARTIAL"
	CreditStatusPaid    CreditStatus = "PAID"
)

// CreditStatusFor derives the status of a credit sale from what has been paid on it.
func CreditStatusFor(paid, amount int64) CreditStatus {
	switch {
	case paid >= amount:
		return CreditStatusPaid
	case paid > 0:
		return CreditStatusPartial
	default:
		return CreditStatusPending
	}
}

// Classification splits money between the two funds a building keeps.
type Classification string

const (
	ClassificationCommonExpense Classification = "COMMON_EXPENSE"
	ClassificationReserveFund   Classification = "RESERVE_FUND"
)

func (c Classification) IsValid() bool {
	return c == ClassificationCommonExpense || c == ClassificationReserveFund
}

func (c Classification) Label() string {
	if c == ClassificationReserveFund {
		return "Fondo de Reserva"
	}
	return "Gasto Común"
}

type Transaction struct {
	ID            uuid.UUID
	Type          TransactionType
	Amount        int64
	Date          time.Time
	Category      *Category
	Description   *string
	Reference     *string
	PaymentMethod *PaymentMethod
	Notes         *string
	CreditStatus  *CreditStatus
	PaidAmount    *int64
	PaymentClass  *Classification
	CommonAmount  *int64
	ReserveAmount *int64
	ApartmentID   *uuid.UUID
	ReceiptID     *uuid.UUID
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (t *Transaction) IsOpenCredit() bool {
	if t.Type != TransactionTypeCreditSale || t.CreditStatus == nil {
		return false
	}
	return *t.CreditStatus == CreditStatusPending || *t.CreditStatus == CreditStatusPartial
}

// Paid returns the amount settled so far on a credit sale.
func (t *Transaction) Paid() int64 {
	if t.PaidAmount == nil {
		return 0
	}
	return *t.PaidAmount
}

// Owed returns what is still pending on a credit sale, never negative.
func (t *Transaction) Owed() int64 {
	if owed := t.Amount - t.Paid(); owed > 0 {
		return owed
	}
	return 0
}

// ReceiptSplit returns the common-expense and reserve-fund portions of a receipt.
// Receipts without any classification count entirely as common expenses.
func (t *Transaction) ReceiptSplit() (common, reserve int64) {
	if t.PaymentClass != nil {
		switch *t.PaymentClass {
		case ClassificationCommonExpense:
			return t.Amount, 0
		case ClassificationReserveFund:
			return 0, t.Amount
		}
	}
	if t.CommonAmount == nil && t.ReserveAmount == nil {
		return t.Amount, 0
	}
	if t.CommonAmount != nil {
		common = *t.CommonAmount
	}
	if t.ReserveAmount != nil {
		reserve = *t.ReserveAmount
	}
	return common, reserve
}

// TransactionWithApartment carries the summary a listing needs to label a row.
type TransactionWithApartment struct {
	Transaction
	ApartmentNumber    *string
	ApartmentOccupancy *Occupancy
}
