package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/josh-kwaku/edificio/internal/repository"
)

// SetupTestDB returns a migrated in-memory SQLite database private to the test.
func SetupTestDB(t *testing.T) *repository.DB {
	t.Helper()
	ctx := context.Background()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := repository.NewSQLiteDB(ctx, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	db := repository.NewDB(conn, repository.DialectSQLite)
	if err := repository.Migrate(db, DiscardLogger()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

// SetupPostgresDB starts a throwaway postgres container and migrates it.
// Skipped under -short.
func SetupPostgresDB(t *testing.T) *repository.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("edificio_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	db, err := repository.Open(ctx, repository.DialectPostgres, connStr, repository.PoolConfig{
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Conn().Close() })

	if err := repository.Migrate(db, DiscardLogger()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
