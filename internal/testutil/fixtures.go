package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/repository"
)

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func SeedUser(t *testing.T, db *repository.DB, email, password string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Administración",
		PasswordHash: string(hash),
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repository.NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func SeedApartment(t *testing.T, db *repository.DB, number string, common, reserve int64) *domain.Apartment {
	t.Helper()

	now := time.Now().UTC()
	a := &domain.Apartment{
		ID:             uuid.New(),
		Number:         number,
		CommonExpenses: common,
		ReserveFund:    reserve,
		Occupancy:      domain.OccupancyOwner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repository.NewApartmentRepository(db).Create(context.Background(), a); err != nil {
		t.Fatalf("seed apartment %s: %v", number, err)
	}
	return a
}

// SeedCreditSale inserts a credit sale with the given amount already paid.
func SeedCreditSale(t *testing.T, db *repository.DB, apartmentID uuid.UUID, amount, paid int64, date time.Time) *domain.Transaction {
	t.Helper()

	now := time.Now().UTC()
	status := domain.CreditStatusFor(paid, amount)
	category := domain.CategoryCommonExpenses
	description := "Gastos Comunes"
	tx := &domain.Transaction{
		ID:           uuid.New(),
		Type:         domain.TransactionTypeCreditSale,
		Amount:       amount,
		Date:         date.UTC(),
		Category:     &category,
		Description:  &description,
		CreditStatus: &status,
		PaidAmount:   &paid,
		ApartmentID:  &apartmentID,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repository.NewTransactionRepository(db).Create(context.Background(), tx); err != nil {
		t.Fatalf("seed credit sale: %v", err)
	}
	return tx
}

func SeedBankAccount(t *testing.T, db *repository.DB, bank string, isDefault bool) *domain.BankAccount {
	t.Helper()

	now := time.Now().UTC()
	a := &domain.BankAccount{
		ID:            uuid.New(),
		Bank:          bank,
		AccountType:   "Caja de Ahorro",
		AccountNumber: uuid.NewString()[:8],
		Active:        true,
		IsDefault:     isDefault,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repository.NewBankAccountRepository(db).Create(context.Background(), a); err != nil {
		t.Fatalf("seed bank account %s: %v", bank, err)
	}
	return a
}

func GetTransaction(t *testing.T, db *repository.DB, id uuid.UUID) *domain.Transaction {
	t.Helper()

	tx, err := repository.NewTransactionRepository(db).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get transaction %s: %v", id, err)
	}
	return tx
}
