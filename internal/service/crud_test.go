package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/repository"
	"github.com/josh-kwaku/edificio/internal/service"
	"github.com/josh-kwaku/edificio/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestApartmentService_ListsNumbersNumerically(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewApartmentService(repository.NewApartmentRepository(db))
	ctx := context.Background()

	for _, a := range []domain.Apartment{
		{Number: "10", Occupancy: domain.OccupancyOwner},
		{Number: "2", Occupancy: domain.OccupancyTenant},
		{Number: "2", Occupancy: domain.OccupancyOwner},
		{Number: "1", Occupancy: domain.OccupancyOwner},
	} {
		require.NoError(t, svc.Create(ctx, &a))
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)

	var got []string
	for _, a := range list {
		got = append(got, a.Number+"/"+string(a.Occupancy))
	}
	assert.Equal(t, []string{"1/OWNER", "2/OWNER", "2/TENANT", "10/OWNER"}, got)
}

func TestApartmentService_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewApartmentService(repository.NewApartmentRepository(db))
	ctx := context.Background()

	tests := []struct {
		name string
		apt  domain.Apartment
		want error
	}{
		{"blank number", domain.Apartment{Number: "  ", Occupancy: domain.OccupancyOwner}, domain.ErrInvalidRequest},
		{"bad occupancy", domain.Apartment{Number: "3", Occupancy: "GUEST"}, domain.ErrInvalidRequest},
		{"negative fund", domain.Apartment{Number: "3", Occupancy: domain.OccupancyOwner, ReserveFund: -1}, domain.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(ctx, &tt.apt)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("duplicate number and occupancy", func(t *testing.T) {
		require.NoError(t, svc.Create(ctx, &domain.Apartment{Number: "7", Occupancy: domain.OccupancyOwner}))
		err := svc.Create(ctx, &domain.Apartment{Number: "7", Occupancy: domain.OccupancyOwner})
		require.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("missing apartment", func(t *testing.T) {
		_, err := svc.Get(ctx, uuid.New())
		require.ErrorIs(t, err, domain.ErrApartmentNotFound)
		require.ErrorIs(t, svc.Delete(ctx, uuid.New()), domain.ErrApartmentNotFound)
	})
}

func TestTenantService_ListByApartment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	apartments := repository.NewApartmentRepository(db)
	svc := service.NewTenantService(repository.NewTenantRepository(db), apartments)
	ctx := context.Background()

	apt := testutil.SeedApartment(t, db, "4B", 0, 0)
	other := testutil.SeedApartment(t, db, "5A", 0, 0)

	ana := &domain.Tenant{FirstName: "Ana", LastName: "Pérez", ApartmentID: &apt.ID, Active: true}
	require.NoError(t, svc.Create(ctx, ana))
	assert.Equal(t, domain.OccupancyTenant, ana.Kind)
	assert.False(t, ana.MoveInDate.IsZero())

	require.NoError(t, svc.Create(ctx, &domain.Tenant{FirstName: "Luis", LastName: "Gómez", ApartmentID: &other.ID, Active: true}))

	list, err := svc.ListByApartment(ctx, apt.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ana.ID, list[0].ID)

	_, err = svc.ListByApartment(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrApartmentNotFound)

	missing := uuid.New()
	err = svc.Create(ctx, &domain.Tenant{FirstName: "X", LastName: "Y", ApartmentID: &missing})
	require.ErrorIs(t, err, domain.ErrApartmentNotFound)

	moveIn := testutil.Day(2024, time.May, 1)
	err = svc.Create(ctx, &domain.Tenant{
		FirstName: "X", LastName: "Y", MoveInDate: moveIn, MoveOutDate: ptr(moveIn.AddDate(0, 0, -1)),
	})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestProviderService_ActiveFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewProviderService(repository.NewProviderRepository(db))
	ctx := context.Background()

	active := &domain.ServiceProvider{Kind: domain.ProviderKindPlumber, Name: "Plomería Sur", Active: true}
	inactive := &domain.ServiceProvider{Kind: domain.ProviderKindElectrician, Name: "Voltios", Active: false}
	require.NoError(t, svc.Create(ctx, active))
	require.NoError(t, svc.Create(ctx, inactive))

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyActive, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID, onlyActive[0].ID)

	err = svc.Create(ctx, &domain.ServiceProvider{Kind: "WIZARD", Name: "Merlín"})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestBankService_AccountsAndMovements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	providers := repository.NewProviderRepository(db)
	svc := service.NewBankService(
		repository.NewBankAccountRepository(db),
		repository.NewBankMovementRepository(db),
		providers,
	)
	ctx := context.Background()

	first := &domain.BankAccount{Bank: "BROU", AccountType: "Caja de Ahorro", AccountNumber: "001", Active: true, IsDefault: true}
	second := &domain.BankAccount{Bank: "Itaú", AccountType: "Cuenta Corriente", AccountNumber: "002", Active: true, IsDefault: true}
	require.NoError(t, svc.CreateAccount(ctx, first))
	require.NoError(t, svc.CreateAccount(ctx, second))

	got, err := svc.GetAccount(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault, "a new default clears the previous one")

	_, err = svc.GetAccount(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrBankAccountNotFound)

	t.Run("movement validation", func(t *testing.T) {
		tests := []struct {
			name string
			m    domain.BankMovement
			want error
		}{
			{"zero amount", domain.BankMovement{Type: domain.MovementTypeExpense, Description: "x", BankAccountID: first.ID}, domain.ErrInvalidAmount},
			{"bad type", domain.BankMovement{Type: "MOVE", Amount: 1, Description: "x", BankAccountID: first.ID}, domain.ErrInvalidRequest},
			{"no description", domain.BankMovement{Type: domain.MovementTypeIncome, Amount: 1, BankAccountID: first.ID}, domain.ErrInvalidRequest},
			{"unknown account", domain.BankMovement{Type: domain.MovementTypeIncome, Amount: 1, Description: "x", BankAccountID: uuid.New()}, domain.ErrBankAccountNotFound},
			{"unknown provider", domain.BankMovement{Type: domain.MovementTypeExpense, Amount: 1, Description: "x", BankAccountID: first.ID, ProviderID: ptr(uuid.New())}, domain.ErrNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.CreateMovement(ctx, &tt.m)
				require.ErrorIs(t, err, tt.want)
			})
		}
	})

	t.Run("create, reconcile, filter", func(t *testing.T) {
		plumber := &domain.ServiceProvider{ID: uuid.New(), Kind: domain.ProviderKindPlumber, Name: "Plomería Sur", Active: true}
		require.NoError(t, providers.Create(ctx, plumber))

		m, err := svc.CreateMovement(ctx, &domain.BankMovement{
			Type:          domain.MovementTypeExpense,
			Amount:        450000,
			Date:          testutil.Day(2024, time.March, 3),
			Description:   "Arreglo de cañería",
			BankAccountID: first.ID,
			ProviderID:    &plumber.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "BROU", m.BankName)
		require.NotNil(t, m.ProviderName)
		assert.Equal(t, "Plomería Sur", *m.ProviderName)
		assert.False(t, m.Reconciled)

		m, err = svc.Reconcile(ctx, m.ID, true)
		require.NoError(t, err)
		assert.True(t, m.Reconciled)

		list, err := svc.ListMovements(ctx, repository.BankMovementFilter{BankAccountID: &second.ID})
		require.NoError(t, err)
		assert.Empty(t, list)

		list, err = svc.ListMovements(ctx, repository.BankMovementFilter{BankAccountID: &first.ID})
		require.NoError(t, err)
		require.Len(t, list, 1)

		require.NoError(t, svc.DeleteMovement(ctx, m.ID))
		_, err = svc.GetMovement(ctx, m.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestLogbookService_DefaultsAndExpiry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewLogbookService(repository.NewLogbookRepository(db))
	ctx := context.Background()

	due := &domain.LogbookEntry{Kind: domain.LogbookKindDueDate, Detail: "Vence seguro del edificio", Date: time.Now().AddDate(0, 0, -2)}
	require.NoError(t, svc.Create(ctx, due))
	assert.Equal(t, domain.LogbookStatusPending, due.Status)

	meeting := &domain.LogbookEntry{Kind: domain.LogbookKindMeeting, Detail: "Asamblea", Date: time.Now().AddDate(0, 0, -2)}
	require.NoError(t, svc.Create(ctx, meeting))

	n, err := svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := svc.Get(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LogbookStatusExpired, got.Status)

	got, err = svc.Get(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LogbookStatusPending, got.Status)

	expired := domain.LogbookStatusExpired
	list, err := svc.List(ctx, &expired)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	bad := domain.LogbookStatus("LATE")
	_, err = svc.List(ctx, &bad)
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestNoticeService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewNoticeService(repository.NewNoticeRepository(db), repository.NewSettingRepository(db))
	ctx := context.Background()

	footer, err := svc.Footer(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultReportFooter, footer)

	require.NoError(t, svc.SetFooter(ctx, "Edificio Las Acacias"))
	footer, err = svc.Footer(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Edificio Las Acacias", footer)

	a, err := svc.Create(ctx, "Corte de agua el martes", 3, 2024)
	require.NoError(t, err)
	b, err := svc.Create(ctx, "Fumigación el viernes", 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 1, b.Position)

	require.NoError(t, svc.Reorder(ctx, []uuid.UUID{b.ID, a.ID}))
	list, err := svc.List(ctx, 3, 2024, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)

	_, err = svc.Update(ctx, a.ID, nil, ptr(false))
	require.NoError(t, err)
	active, err := svc.List(ctx, 3, 2024, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)

	require.ErrorIs(t, svc.Reorder(ctx, []uuid.UUID{a.ID, a.ID}), domain.ErrInvalidRequest)
	_, err = svc.Create(ctx, "x", 13, 2024)
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	_, err = svc.Create(ctx, "   ", 3, 2024)
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestDashboardService_Summary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	apartments := repository.NewApartmentRepository(db)
	transactions := repository.NewTransactionRepository(db)
	svc := service.NewDashboardService(apartments, transactions)
	ctx := context.Background()

	owner := testutil.SeedApartment(t, db, "1", 200000, 50000)
	testutil.SeedApartment(t, db, "2", 150000, 0)
	now := time.Now().UTC()
	require.NoError(t, apartments.Create(ctx, &domain.Apartment{
		ID: uuid.New(), Number: "1", Occupancy: domain.OccupancyTenant,
		CommonExpenses: 100000, CreatedAt: now, UpdatedAt: now,
	}))

	testutil.SeedCreditSale(t, db, owner.ID, 250000, 100000, testutil.Day(2024, time.January, 1))
	testutil.SeedCreditSale(t, db, owner.ID, 250000, 250000, testutil.Day(2024, time.February, 1))
	for _, tx := range []domain.Transaction{
		{Type: domain.TransactionTypeIncome, Amount: 30000},
		{Type: domain.TransactionTypePaymentReceipt, Amount: 350000, ApartmentID: &owner.ID},
		{Type: domain.TransactionTypeExpense, Amount: 80000},
	} {
		tx.ID = uuid.New()
		tx.Date = now
		tx.CreatedAt = now
		tx.UpdatedAt = now
		require.NoError(t, transactions.Create(ctx, &tx))
	}

	d, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, d.Units)
	assert.Equal(t, 3, d.Registrations)
	assert.Equal(t, 2, d.Owners)
	assert.Equal(t, 1, d.Tenants)
	assert.Equal(t, 1, d.UnitsWithBoth)
	assert.Equal(t, int64(400000), d.OwnersMonthly)
	assert.Equal(t, int64(100000), d.TenantsMonthly)
	assert.Equal(t, int64(380000), d.Income)
	assert.Equal(t, int64(80000), d.Expense)
	assert.Equal(t, int64(300000), d.Balance)
	assert.Equal(t, int64(150000), d.OutstandingCredit)
	assert.Len(t, d.Recent, 5)
}
