// Package rates persists the junior and senior yearly fee rates.
package rates

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"swimclub/internal/adapters/storage"
)

// Rates is the pair of active-member yearly rates.
type Rates struct {
	Junior float64
	Senior float64
}

// Store reads and writes the two-line rates record: junior rate, then senior rate.
type Store struct {
	store storage.RecordStore
}

// NewStore creates a rates store over store.
func NewStore(store storage.RecordStore) *Store {
	return &Store{store: store}
}

// Load returns the stored rates.
// PRE: defaults are positive
// POST: An empty or unreadable store yields defaults; a malformed store is an ErrCorruptRecord error
func (s *Store) Load(ctx context.Context, defaults Rates) (Rates, error) {
	lines, err := s.store.ReadLines(ctx)
	if err != nil {
		slog.Warn("store_read_failed", "store", s.store.Name(), "error", err, "fallback", "defaults")
		return defaults, nil
	}
	if len(lines) == 0 {
		return defaults, nil
	}
	if len(lines) != 2 {
		return Rates{}, fmt.Errorf("%w: rates store has %d lines, want 2", storage.ErrCorruptRecord, len(lines))
	}
	junior, err := parseRate(lines[0])
	if err != nil {
		return Rates{}, fmt.Errorf("junior rate: %w", err)
	}
	senior, err := parseRate(lines[1])
	if err != nil {
		return Rates{}, fmt.Errorf("senior rate: %w", err)
	}
	return Rates{Junior: junior, Senior: senior}, nil
}

// Save rewrites the store with r.
func (s *Store) Save(ctx context.Context, r Rates) error {
	return s.store.WriteLines(ctx, []string{
		strconv.FormatFloat(r.Junior, 'f', -1, 64),
		strconv.FormatFloat(r.Senior, 'f', -1, 64),
	})
}

func parseRate(line string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil || !(v > 0) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: rate %q", storage.ErrCorruptRecord, line)
	}
	return v, nil
}
