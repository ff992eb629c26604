package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"swimclub/internal/domain/failure"
)

type observation struct {
	store, op string
	err       error
}

type recordingObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingObserver) ObserveStore(store, op string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{store, op, err})
}

type failingStore struct{}

func (failingStore) Name() string { return "broken" }
func (failingStore) ReadLines(context.Context) ([]string, error) {
	return nil, failure.IO("broken", errors.New("disk gone"))
}
func (failingStore) WriteLines(context.Context, []string) error {
	return failure.IO("broken", errors.New("disk gone"))
}

// TestTimedStore_RecordsOperations verifies every call is reported with its outcome.
func TestTimedStore_RecordsOperations(t *testing.T) {
	obs := &recordingObserver{}
	inner := NewFileStore("members", filepath.Join(t.TempDir(), "members.txt"))
	s := NewTimedStore(inner, obs, 0)
	ctx := context.Background()

	if err := s.WriteLines(ctx, []string{"x"}); err != nil {
		t.Fatalf("WriteLines: %v", err)
	}
	if _, err := s.ReadLines(ctx); err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if s.Name() != "members" {
		t.Errorf("Name() = %q, want members", s.Name())
	}
	if len(obs.obs) != 2 || obs.obs[0].op != "write" || obs.obs[1].op != "read" {
		t.Fatalf("observations = %+v", obs.obs)
	}
	if obs.obs[0].store != "members" || obs.obs[0].err != nil {
		t.Errorf("write observation = %+v", obs.obs[0])
	}
}

// TestTimedStore_PassesErrorsThrough verifies failures reach both caller and observer.
func TestTimedStore_PassesErrorsThrough(t *testing.T) {
	obs := &recordingObserver{}
	s := NewTimedStore(failingStore{}, obs, 10)

	if _, err := s.ReadLines(context.Background()); !errors.Is(err, failure.ErrIOFailure) {
		t.Errorf("ReadLines() error = %v, want ErrIOFailure", err)
	}
	if err := s.WriteLines(context.Background(), nil); !errors.Is(err, failure.ErrIOFailure) {
		t.Errorf("WriteLines() error = %v, want ErrIOFailure", err)
	}
	for _, o := range obs.obs {
		if o.err == nil {
			t.Errorf("observation %+v missing error", o)
		}
	}
}

// TestTimedStore_NilObserver verifies the decorator works without an observer.
func TestTimedStore_NilObserver(t *testing.T) {
	s := NewTimedStore(NewFileStore("x", filepath.Join(t.TempDir(), "x.txt")), nil, 0)
	if err := s.WriteLines(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("WriteLines: %v", err)
	}
}
