package payment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"swimclub/internal/adapters/storage"
	"swimclub/internal/domain/failure"
	memberDomain "swimclub/internal/domain/member"
	domain "swimclub/internal/domain/payment"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeMembers implements MemberResolver over a fixed set.
type fakeMembers map[int]memberDomain.Member

func (f fakeMembers) FindByID(id int) (memberDomain.Member, bool) {
	m, ok := f[id]
	return m, ok
}

func (fakeMembers) Degraded() bool { return false }

// unreadMembers is a member collection whose store could not be read.
type unreadMembers struct{ fakeMembers }

func (unreadMembers) Degraded() bool { return true }

type brokenStore struct{ name string }

func (b brokenStore) Name() string { return b.name }
func (b brokenStore) ReadLines(context.Context) ([]string, error) {
	return nil, failure.IO(b.name, errors.New("unreadable"))
}
func (b brokenStore) WriteLines(context.Context, []string) error {
	return failure.IO(b.name, errors.New("read-only"))
}

type paths struct{ payments, reminders string }

func newRepo(t *testing.T) (*Repository, paths) {
	t.Helper()
	dir := t.TempDir()
	p := paths{filepath.Join(dir, "payments.txt"), filepath.Join(dir, "reminders.txt")}
	r := NewRepository(storage.NewFileStore("payments", p.payments), storage.NewFileStore("reminders", p.reminders), ";")
	return r, p
}

func reopen(t *testing.T, p paths, members MemberResolver) (*Repository, error) {
	t.Helper()
	r := NewRepository(storage.NewFileStore("payments", p.payments), storage.NewFileStore("reminders", p.reminders), ";")
	return r, r.Load(context.Background(), members)
}

var (
	anna = memberDomain.Member{ID: 1, Name: "Anna"}
	bo   = memberDomain.Member{ID: 2, Name: "Bo"}
	day  = time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
)

func mustPayment(t *testing.T, r *Repository, m memberDomain.Member, amount float64) domain.Payment {
	t.Helper()
	p, err := r.Register(func(id int) (domain.Payment, error) {
		return domain.New(id, &m, memberDomain.PaymentComplete, day, amount, "ref")
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return p
}

// TestNextIDIsCountPlusOne verifies sequential payment ids.
func TestNextIDIsCountPlusOne(t *testing.T) {
	r, _ := newRepo(t)
	if got := r.NextID(); got != 1 {
		t.Fatalf("NextID() on empty = %d, want 1", got)
	}
	mustPayment(t, r, anna, 1600)
	mustPayment(t, r, bo, 1000)
	if got := r.NextID(); got != 3 {
		t.Errorf("NextID() = %d, want 3", got)
	}
}

// TestRegisterBuildFailureChangesNothing verifies a failed build leaves the history as it was.
func TestRegisterBuildFailureChangesNothing(t *testing.T) {
	r, _ := newRepo(t)
	mustPayment(t, r, anna, 1600)
	_, err := r.Register(func(id int) (domain.Payment, error) {
		return domain.New(id, nil, memberDomain.PaymentComplete, day, 100, "")
	})
	if !errors.Is(err, domain.ErrNilMember) {
		t.Fatalf("Register() error = %v, want ErrNilMember", err)
	}
	if r.Count() != 1 || r.NextID() != 2 {
		t.Errorf("Count() = %d, NextID() = %d, want 1 and 2", r.Count(), r.NextID())
	}
}

// TestConcurrentRegisterAssignsDistinctIDs verifies id assignment and append are one step.
// PRE: empty history, 50 concurrent registrations
// POST: ids are exactly 1..50
func TestConcurrentRegisterAssignsDistinctIDs(t *testing.T) {
	r, _ := newRepo(t)
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := anna
			_, _ = r.Register(func(id int) (domain.Payment, error) {
				return domain.New(id, &m, memberDomain.PaymentComplete, day, 100, "")
			})
		}()
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	for _, p := range r.FindAll() {
		if seen[p.ID] {
			t.Fatalf("duplicate payment id %d", p.ID)
		}
		seen[p.ID] = true
	}
	for id := 1; id <= n; id++ {
		if !seen[id] {
			t.Errorf("payment id %d missing", id)
		}
	}
}

// TestLoadWithUnreadableMembersKeepsPayments verifies payments survive a failed member read.
// PRE: stored payments for members 1 and 2; the member collection could not be read
// POST: Load succeeds, both payments keep their member ids and a later Persist writes them back
func TestLoadWithUnreadableMembersKeepsPayments(t *testing.T) {
	r, p := newRepo(t)
	mustPayment(t, r, anna, 1600)
	mustPayment(t, r, bo, 1000)
	if err := r.Persist(context.Background()); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	before, err := os.ReadFile(p.payments)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	loaded, err := reopen(t, p, unreadMembers{fakeMembers{1: anna}})
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	got := loaded.FindAll()
	if len(got) != 2 || got[0].MemberID != 1 || got[1].MemberID != 2 || got[0].MemberName != "Anna" {
		t.Fatalf("FindAll() = %+v", got)
	}
	if err := loaded.Persist(context.Background()); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	after, _ := os.ReadFile(p.payments)
	if string(after) != string(before) {
		t.Errorf("payment store changed:\n%s\nwant\n%s", after, before)
	}
}

// TestRegisterIsMemoryOnlyUntilPersist verifies the caller owns persistence.
// PRE: empty stores
// POST: nothing on disk after Save; history on disk after Persist
func TestRegisterIsMemoryOnlyUntilPersist(t *testing.T) {
	r, p := newRepo(t)
	saved := mustPayment(t, r, anna, 1600)

	if _, err := os.Stat(p.payments); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("payment store written before Persist")
	}
	if err := r.Persist(context.Background()); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := reopen(t, p, fakeMembers{1: anna})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := loaded.FindAll()
	if len(got) != 1 || !reflect.DeepEqual(got[0], saved) {
		t.Errorf("FindAll() = %+v, want [%+v]", got, saved)
	}
}

// TestFindByMemberID verifies insertion order is kept.
func TestFindByMemberID(t *testing.T) {
	r, _ := newRepo(t)
	first := mustPayment(t, r, anna, 1600)
	mustPayment(t, r, bo, 1000)
	third := mustPayment(t, r, anna, 200)

	got := r.FindByMemberID(1)
	if len(got) != 2 || got[0].ID != first.ID || got[1].ID != third.ID {
		t.Errorf("FindByMemberID(1) = %+v", got)
	}
	if got := r.FindByMemberID(3); len(got) != 0 {
		t.Errorf("FindByMemberID(3) = %+v, want none", got)
	}
}

// TestFindAllReturnsCopy verifies callers cannot mutate the history.
func TestFindAllReturnsCopy(t *testing.T) {
	r, _ := newRepo(t)
	mustPayment(t, r, anna, 1600)
	all := r.FindAll()
	all[0].Amount = 1
	if r.FindAll()[0].Amount != 1600 {
		t.Error("FindAll() exposed internal state")
	}
}

// TestLoadDanglingMember verifies a reference to a missing member fails the load.
func TestLoadDanglingMember(t *testing.T) {
	r, p := newRepo(t)
	mustPayment(t, r, anna, 1600)
	mustPayment(t, r, bo, 1000)
	if err := r.Persist(context.Background()); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	_, err := reopen(t, p, fakeMembers{1: anna})
	if !errors.Is(err, ErrDanglingMember) || !errors.Is(err, failure.ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrDanglingMember", err)
	}
}

// TestLoadCorruptRecord verifies malformed payment lines fail the load.
func TestLoadCorruptRecord(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"field count", "1;1;COMPLETE"},
		{"bad id", "x;1;COMPLETE;2026-02-01;1600;ref"},
		{"bad member id", "1;x;COMPLETE;2026-02-01;1600;ref"},
		{"bad status", "1;1;PARTIAL;2026-02-01;1600;ref"},
		{"bad date", "1;1;COMPLETE;01/02/2026;1600;ref"},
		{"bad amount", "1;1;COMPLETE;2026-02-01;lots;ref"},
		{"zero amount", "1;1;COMPLETE;2026-02-01;0;ref"},
		{"infinite amount", "1;1;COMPLETE;2026-02-01;+Inf;ref"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			p := paths{filepath.Join(dir, "payments.txt"), filepath.Join(dir, "reminders.txt")}
			if err := os.WriteFile(p.payments, []byte(tt.line+"\n"), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := reopen(t, p, fakeMembers{1: anna}); !errors.Is(err, storage.ErrCorruptRecord) {
				t.Errorf("Load() error = %v, want ErrCorruptRecord", err)
			}
		})
	}
}

// TestLoadUnreadableIsEmpty verifies I/O failures degrade to empty collections.
func TestLoadUnreadableIsEmpty(t *testing.T) {
	r := NewRepository(brokenStore{"payments"}, brokenStore{"reminders"}, ";")
	if err := r.Load(context.Background(), fakeMembers{}); err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if r.Count() != 0 || len(r.Reminders()) != 0 {
		t.Errorf("Count() = %d, Reminders() = %v, want empty", r.Count(), r.Reminders())
	}
}

// TestPersistFailure verifies a failed write is reported and memory is kept.
func TestPersistFailure(t *testing.T) {
	r := NewRepository(brokenStore{"payments"}, brokenStore{"reminders"}, ";")
	mustPayment(t, r, anna, 1600)
	if err := r.Persist(context.Background()); !errors.Is(err, failure.ErrIOFailure) {
		t.Errorf("Persist() error = %v, want ErrIOFailure", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

// TestReminders verifies the reminder bag operations and their persistence.
// PRE: empty reminder store
// POST: exact-match removal; unknown text reports false; reload sees the final bag
func TestReminders(t *testing.T) {
	r, p := newRepo(t)
	ctx := context.Background()

	if err := r.SaveReminder(ctx, "Reminder for member 1 (Anna)"); err != nil {
		t.Fatalf("SaveReminder: %v", err)
	}
	if err := r.SaveReminder(ctx, "Reminder for member 2 (Bo)"); err != nil {
		t.Fatalf("SaveReminder: %v", err)
	}
	if err := r.SaveReminder(ctx, ""); !errors.Is(err, failure.ErrInvalidInput) {
		t.Errorf("SaveReminder(\"\") error = %v, want ErrInvalidInput", err)
	}

	if r.RemoveReminder(ctx, "Reminder for member 3") {
		t.Error("RemoveReminder() of unknown text returned true")
	}
	if r.RemoveReminder(ctx, "reminder for member 1 (anna)") {
		t.Error("RemoveReminder() matched case-insensitively")
	}
	if !r.RemoveReminder(ctx, "Reminder for member 1 (Anna)") {
		t.Fatal("RemoveReminder() of existing text returned false")
	}
	if r.HasReminder("Reminder for member 1 (Anna)") {
		t.Error("removed reminder still present")
	}

	loaded, err := reopen(t, p, fakeMembers{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded.Reminders(); !reflect.DeepEqual(got, []string{"Reminder for member 2 (Bo)"}) {
		t.Errorf("Reminders() after reload = %v", got)
	}

	if n := loaded.ClearReminders(ctx); n != 1 {
		t.Errorf("ClearReminders() = %d, want 1", n)
	}
	again, _ := reopen(t, p, fakeMembers{})
	if len(again.Reminders()) != 0 {
		t.Errorf("Reminders() after clear = %v", again.Reminders())
	}
}

// TestReminderWriteFailureKeepsMemory verifies reminder I/O failures are downgraded.
func TestReminderWriteFailureKeepsMemory(t *testing.T) {
	r := NewRepository(brokenStore{"payments"}, brokenStore{"reminders"}, ";")
	if err := r.SaveReminder(context.Background(), "call member 4"); err != nil {
		t.Fatalf("SaveReminder() error = %v, want nil", err)
	}
	if !r.HasReminder("call member 4") {
		t.Error("reminder lost after failed write")
	}
}

// TestEncodePayment verifies the record layout.
func TestEncodePayment(t *testing.T) {
	p, _ := domain.New(7, &bo, memberDomain.PaymentComplete, day, 1200.5, "abc")
	if got, want := EncodePayment(p, ";"), "7;2;COMPLETE;2026-02-01;1200.5;abc"; got != want {
		t.Errorf("EncodePayment() = %q, want %q", got, want)
	}
}
