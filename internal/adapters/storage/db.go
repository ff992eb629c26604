package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLDB is the database interface used by the SQLite record store.
// *sql.DB satisfies this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// DSN builds the modernc.org/sqlite connection string for path.
func DSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
}

// InitDB initializes the record schema.
// PRE: db is a valid database connection
// POST: The record table exists
func InitDB(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS record (
		category TEXT NOT NULL,
		seq INTEGER NOT NULL,
		line TEXT NOT NULL,
		PRIMARY KEY (category, seq)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
