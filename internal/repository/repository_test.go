package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/repository"
	"github.com/josh-kwaku/edificio/internal/testutil"
)

func TestApartment_DuplicateNumberAndOccupancy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewApartmentRepository(db)

	testutil.SeedApartment(t, db, "101", 400000, 100000)

	now := time.Now().UTC()
	dup := &domain.Apartment{
		ID:        uuid.New(),
		Number:    "101",
		Occupancy: domain.OccupancyOwner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	dup.Occupancy = domain.OccupancyTenant
	require.NoError(t, repo.Create(ctx, dup))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, dup.ID))
	assert.ErrorIs(t, repo.Delete(ctx, dup.ID), domain.ErrNotFound)
}

func TestBankAccount_SingleDefault(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewBankAccountRepository(db)

	first := testutil.SeedBankAccount(t, db, "BROU", true)
	second := testutil.SeedBankAccount(t, db, "Itaú", true)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)

	def, err := repo.GetDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)
}

func TestBankMovement_ListAndSumBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewBankMovementRepository(db)

	account := testutil.SeedBankAccount(t, db, "BROU", true)
	now := time.Now().UTC()
	for _, m := range []struct {
		typ    domain.MovementType
		amount int64
		date   time.Time
	}{
		{domain.MovementTypeIncome, 10000, testutil.Day(2024, 1, 5)},
		{domain.MovementTypeExpense, 2500, testutil.Day(2024, 1, 20)},
		{domain.MovementTypeIncome, 4000, testutil.Day(2024, 2, 3)},
	} {
		require.NoError(t, repo.Create(ctx, &domain.BankMovement{
			ID:            uuid.New(),
			Type:          m.typ,
			Amount:        m.amount,
			Date:          m.date,
			Description:   "movimiento",
			BankAccountID: account.ID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}))
	}

	sum, err := repo.SumBefore(ctx, account.ID, testutil.Day(2024, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(7500), sum)

	list, err := repo.List(ctx, repository.BankMovementFilter{BankAccountID: &account.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "BROU", list[0].BankName)
	assert.Nil(t, list[0].TransactionType)

	require.NoError(t, repo.SetReconciled(ctx, list[0].ID, true, now))
	got, err := repo.GetByID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Reconciled)
}

func TestNotice_PositionsAndReorder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewNoticeRepository(db)

	now := time.Now().UTC()
	var ids []uuid.UUID
	for _, text := range []string{"Fumigación", "Asamblea", "Corte de agua"} {
		n := &domain.ReportNotice{ID: uuid.New(), Text: text, Month: 3, Year: 2024, Active: true, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repo.Create(ctx, n))
		ids = append(ids, n.ID)
	}

	notices, err := repo.ListByPeriod(ctx, 3, 2024, true)
	require.NoError(t, err)
	require.Len(t, notices, 3)
	assert.Equal(t, 2, notices[2].Position)

	require.NoError(t, repo.Reorder(ctx, []uuid.UUID{ids[2], ids[0], ids[1]}, now))
	notices, err = repo.ListByPeriod(ctx, 3, 2024, true)
	require.NoError(t, err)
	assert.Equal(t, "Corte de agua", notices[0].Text)
	assert.Equal(t, "Fumigación", notices[1].Text)

	err = repo.Reorder(ctx, []uuid.UUID{uuid.New()}, now)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetting_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewSettingRepository(db)

	_, err := repo.Get(ctx, domain.SettingReportFooter)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Set(ctx, domain.SettingReportFooter, "Edificio Rambla", time.Now()))
	require.NoError(t, repo.Set(ctx, domain.SettingReportFooter, "Edificio Sur", time.Now()))

	s, err := repo.Get(ctx, domain.SettingReportFooter)
	require.NoError(t, err)
	assert.Equal(t, "Edificio Sur", s.Value)
}

func TestIdempotency_ExpiredEntriesAreInvisible(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewIdempotencyRepository(db)

	userID := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, repo.Set(ctx, &repository.IdempotencyCacheEntry{
		Key:          "k1",
		UserID:       userID,
		RequestHash:  "h",
		StatusCode:   201,
		ResponseBody: []byte(`{"ok":true}`),
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
	}))

	got, err := repo.Get(ctx, "k1", userID, now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(got.ResponseBody))

	got, err = repo.Get(ctx, "k1", userID, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := repo.CleanExpired(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUser_CreateAndLookup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewUserRepository(db)

	u := testutil.SeedUser(t, db, "admin@edificio.local", "secreto123")

	got, err := repo.GetByEmail(ctx, "admin@edificio.local")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
