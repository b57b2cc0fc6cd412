package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/josh-kwaku/edificio/migrations"
)

// Open connects to the configured database driver.
func Open(ctx context.Context, dialect Dialect, databaseURL string, pool PoolConfig) (*DB, error) {
	var (
		conn *sql.DB
		err  error
	)
	switch dialect {
	case DialectPostgres:
		conn, err = NewPostgresDB(ctx, databaseURL, pool)
	case DialectSQLite:
		conn, err = NewSQLiteDB(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("Open: unsupported database driver %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	return NewDB(conn, dialect), nil
}

type Migrator struct {
	m      *migrate.Migrate
	logger *slog.Logger
}

func NewMigrator(db *DB, logger *slog.Logger) (*Migrator, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("NewMigrator: source: %w", err)
	}

	var driver database.Driver
	switch db.dialect {
	case DialectPostgres:
		driver, err = mpg.WithInstance(db.pool, &mpg.Config{})
	default:
		driver, err = msqlite.WithInstance(db.pool, &msqlite.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("NewMigrator: driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(db.dialect), driver)
	if err != nil {
		return nil, fmt.Errorf("NewMigrator: %w", err)
	}
	return &Migrator{m: m, logger: logger}, nil
}

func (m *Migrator) Up() error {
	err := m.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("schema up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("Migrator.Up: %w", err)
	}

	version, dirty, err := m.m.Version()
	if err != nil {
		return fmt.Errorf("Migrator.Up: version: %w", err)
	}
	m.logger.Info("migrations applied", "version", version, "dirty", dirty)
	return nil
}

func (m *Migrator) Down() error {
	err := m.m.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("Migrator.Down: %w", err)
	}
	m.logger.Info("migrations rolled back")
	return nil
}

func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("Migrator.Version: %w", err)
	}
	return version, dirty, nil
}

// Migrate brings the schema to the latest version; it is what runs on startup.
func Migrate(db *DB, logger *slog.Logger) error {
	m, err := NewMigrator(db, logger)
	if err != nil {
		return err
	}
	return m.Up()
}
