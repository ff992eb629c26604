package storage

import (
	"context"

	"swimclub/internal/domain/failure"
)

// SQLiteStore keeps a category as ordered rows of the record table.
type SQLiteStore struct {
	db       SQLDB
	category string
}

// Compile-time check that *SQLiteStore satisfies RecordStore.
var _ RecordStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store for category.
// PRE: InitDB has run on db
func NewSQLiteStore(db SQLDB, category string) *SQLiteStore {
	return &SQLiteStore{db: db, category: category}
}

// Name returns the category name.
func (s *SQLiteStore) Name() string {
	return s.category
}

// ReadLines returns the category's lines in write order.
// POST: An empty category yields no lines and no error
func (s *SQLiteStore) ReadLines(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT line FROM record WHERE category = ? ORDER BY seq", s.category)
	if err != nil {
		return nil, failure.IO(s.category, err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, failure.IO(s.category, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, failure.IO(s.category, err)
	}
	return lines, nil
}

// WriteLines replaces the category's rows in a single transaction.
// POST: The category holds exactly lines, or is unchanged on failure
func (s *SQLiteStore) WriteLines(ctx context.Context, lines []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return failure.IO(s.category, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM record WHERE category = ?", s.category); err != nil {
		return failure.IO(s.category, err)
	}
	for i, line := range lines {
		if _, err := tx.ExecContext(ctx, "INSERT INTO record (category, seq, line) VALUES (?, ?, ?)", s.category, i, line); err != nil {
			return failure.IO(s.category, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return failure.IO(s.category, err)
	}
	return nil
}
