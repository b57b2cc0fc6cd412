package domain

import (
	"time"

	"github.com/google/uuid"
)

type MovementType string

const (
	MovementTypeIncome  MovementType = "INCOME"
	MovementTypeExpense MovementType = "EXPENSE"
)

func (m MovementType) IsValid() bool {
	return m == MovementTypeIncome || m == MovementTypeExpense
}

type BankAccount struct {
	ID             uuid.UUID
	Bank           string
	AccountType    string
	AccountNumber  string
	Holder         *string
	OpeningBalance int64
	Active         bool
	IsDefault      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type BankMovement struct {
	ID             uuid.UUID
	Type           MovementType
	Amount         int64
	Date           time.Time
	Description    string
	Reference      *string
	DocumentNumber *string
	AttachmentURL  *string
	Classification *Classification
	Reconciled     bool
	BankAccountID  uuid.UUID
	TransactionID  *uuid.UUID
	ProviderID     *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Signed returns the movement amount as it affects the account balance.
func (m *BankMovement) Signed() int64 {
	if m.Type == MovementTypeExpense {
		return -m.Amount
	}
	return m.Amount
}

// BankMovementDetail is a movement joined with the labels of the rows it points to.
type BankMovementDetail struct {
	BankMovement
	BankName          string
	BankAccountNumber string
	TransactionType   *TransactionType
	ApartmentNumber   *string
	ProviderName      *string
	ProviderKind      *ProviderKind
}
