package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

var sqlitePragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
}

// NewSQLiteDB opens the embedded database used by the desktop build. A single
// connection is kept so writers never see SQLITE_BUSY from each other.
func NewSQLiteDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteDB: open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewSQLiteDB: ping: %w", err)
	}

	return db, nil
}

func SQLiteDSN(path string) string {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	pragmas := sqlitePragmas
	if strings.Contains(dsn, "mode=memory") {
		pragmas = pragmas[:2]
	}
	for _, p := range pragmas {
		dsn += sep + "_pragma=" + p
		sep = "&"
	}
	return dsn
}

// SQLiteFilePath strips the URI decoration from a sqlite DSN and returns the file on disk,
// or "" for in-memory databases.
func SQLiteFilePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		if strings.Contains(p[i:], "mode=memory") {
			return ""
		}
		p = p[:i]
	}
	if p == ":memory:" {
		return ""
	}
	return p
}
