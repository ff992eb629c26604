// Package storage holds the line-oriented record stores that back every repository.
//
// A RecordStore owns no business logic: it reads a category's full list of
// lines and rewrites it as a whole.
package storage

import (
	"context"
	"errors"
)

// DefaultDelimiter separates fields inside a record line.
const DefaultDelimiter = ";"

// ErrCorruptRecord marks a line that cannot be decoded into its entity.
var ErrCorruptRecord = errors.New("corrupt record")

// RecordStore persists one entity category as an ordered list of lines.
type RecordStore interface {
	// Name identifies the category in logs and metrics.
	Name() string
	// ReadLines returns every stored line. A store that does not exist yet is empty.
	ReadLines(ctx context.Context) ([]string, error)
	// WriteLines replaces the full content of the store with lines.
	WriteLines(ctx context.Context, lines []string) error
}
