package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/edificio/internal/domain"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewDB(conn, DialectPostgres), mock
}

func TestMapError_PostgresUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProviderRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO service_providers`)).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	now := time.Now().UTC()
	err := repo.Create(context.Background(), &domain.ServiceProvider{
		ID: uuid.New(), Kind: domain.ProviderKindPlumber, Name: "Sanitaria Sur", Active: true,
		CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCredit_VersionMismatchVersusMissingRow(t *testing.T) {
	tests := []struct {
		name    string
		exists  bool
		wantErr error
	}{
		{name: "row exists at another version", exists: true, wantErr: domain.ErrVersionConflict},
		{name: "row is gone", exists: false, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewTransactionRepository(db)
			id := uuid.New()

			mock.ExpectExec(regexp.QuoteMeta(`UPDATE transactions`)).
				WillReturnResult(sqlmock.NewResult(0, 0))
			probe := mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM transactions WHERE id = $1`)).
				WithArgs(id)
			if tt.exists {
				probe.WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
			} else {
				probe.WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
			}

			_, err := repo.UpdateCredit(context.Background(), id, 100, domain.CreditStatusPartial, 3, time.Now())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLiteFilePath(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"edificio.db", "edificio.db"},
		{"file:/var/lib/edificio/data.db?_pragma=foreign_keys(1)", "/var/lib/edificio/data.db"},
		{"file:test?mode=memory&cache=shared", ""},
		{":memory:", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SQLiteFilePath(tt.dsn), tt.dsn)
	}
}
