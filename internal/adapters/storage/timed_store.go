package storage

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSlowOpMs is the default threshold for slow store operation warnings.
const DefaultSlowOpMs = 50

// Observer receives the duration and outcome of every store operation.
type Observer interface {
	ObserveStore(store, op string, d time.Duration, err error)
}

// TimedStore wraps a RecordStore to log slow operations and report timings to an Observer.
type TimedStore struct {
	inner     RecordStore
	observer  Observer
	threshold time.Duration
}

// Compile-time check that *TimedStore satisfies RecordStore.
var _ RecordStore = (*TimedStore)(nil)

// NewTimedStore wraps inner with timing instrumentation.
// PRE: inner is non-nil; observer may be nil
// POST: slowMs <= 0 selects DefaultSlowOpMs
func NewTimedStore(inner RecordStore, observer Observer, slowMs int) *TimedStore {
	if slowMs <= 0 {
		slowMs = DefaultSlowOpMs
	}
	return &TimedStore{
		inner:     inner,
		observer:  observer,
		threshold: time.Duration(slowMs) * time.Millisecond,
	}
}

// Name returns the wrapped store's name.
func (t *TimedStore) Name() string {
	return t.inner.Name()
}

// ReadLines delegates to the wrapped store.
func (t *TimedStore) ReadLines(ctx context.Context) ([]string, error) {
	start := time.Now()
	lines, err := t.inner.ReadLines(ctx)
	t.record("read", start, err, len(lines))
	return lines, err
}

// WriteLines delegates to the wrapped store.
func (t *TimedStore) WriteLines(ctx context.Context, lines []string) error {
	start := time.Now()
	err := t.inner.WriteLines(ctx, lines)
	t.record("write", start, err, len(lines))
	return err
}

func (t *TimedStore) record(op string, start time.Time, err error, lines int) {
	d := time.Since(start)
	if d >= t.threshold {
		slog.Warn("slow_store_op", "store", t.inner.Name(), "op", op, "duration_ms", d.Milliseconds(), "lines", lines)
	}
	if t.observer != nil {
		t.observer.ObserveStore(t.inner.Name(), op, d, err)
	}
}
