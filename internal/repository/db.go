package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type DB struct {
	pool    *sql.DB
	dialect Dialect
}

func NewDB(pool *sql.DB, dialect Dialect) *DB {
	return &DB{pool: pool, dialect: dialect}
}

func (d *DB) Conn() *sql.DB {
	return d.pool
}

func (d *DB) Dialect() Dialect {
	return d.dialect
}

func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := d.pool.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("BeginTx: %w", err)
	}
	return tx, nil
}

type txKey struct{}

// InTx runs fn inside a transaction carried by the context. Repositories called with
// that context join it. A nested call reuses the outer transaction.
func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("InTx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("InTx: commit: %w", err)
	}
	return nil
}

func (d *DB) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return d.pool
}

func (d *DB) Ping(ctx context.Context) error {
	return d.pool.PingContext(ctx)
}

// Checkpoint flushes the sqlite write-ahead log into the main file so a plain file
// copy sees every committed write. It is a no-op on postgres.
func (d *DB) Checkpoint(ctx context.Context) error {
	if d.dialect != DialectSQLite {
		return nil
	}
	if _, err := d.pool.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("Checkpoint: %w", err)
	}
	return nil
}
