package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"swimclub/internal/adapters/storage"
	"swimclub/internal/domain/failure"
	memberDomain "swimclub/internal/domain/member"
	domain "swimclub/internal/domain/payment"
	"swimclub/internal/domain/validate"
)

// ErrDanglingMember marks a stored payment whose member no longer exists.
var ErrDanglingMember = fmt.Errorf("%w: payment references unknown member", failure.ErrNotFound)

// MemberResolver resolves member references at load time.
type MemberResolver interface {
	FindByID(id int) (memberDomain.Member, bool)
	// Degraded reports that the member store could not be read.
	Degraded() bool
}

// Repository holds the payment history and the reminder bag.
// Payments are appended in memory by Register and written by Persist; reminder
// mutations rewrite the reminder store immediately.
type Repository struct {
	mu            sync.Mutex
	paymentStore  storage.RecordStore
	reminderStore storage.RecordStore
	delimiter     string
	payments      []domain.Payment
	reminders     []string
}

// NewRepository creates an empty repository.
// PRE: both stores are non-nil
func NewRepository(payments, reminders storage.RecordStore, delimiter string) *Repository {
	if delimiter == "" {
		delimiter = storage.DefaultDelimiter
	}
	return &Repository{paymentStore: payments, reminderStore: reminders, delimiter: delimiter}
}

// Load reads payments and reminders, resolving each payment's member through members.
// PRE: members is loaded
// POST: A dangling member reference or corrupt line is returned as an error and nothing changes;
// an unreadable store is logged and treated as empty. While members is degraded, references
// are not checked and unresolved payments keep their stored member id.
// INVARIANT: r.mu is not held while members is consulted
func (r *Repository) Load(ctx context.Context, members MemberResolver) error {
	strict := !members.Degraded()
	lines, err := r.paymentStore.ReadLines(ctx)
	if err != nil {
		slog.Warn("store_read_failed", "store", r.paymentStore.Name(), "error", err)
		lines = nil
	}
	payments := make([]domain.Payment, 0, len(lines))
	for i, line := range lines {
		d, err := decodePayment(line, r.delimiter)
		if err != nil {
			return fmt.Errorf("%s line %d: %w", r.paymentStore.Name(), i+1, err)
		}
		m, ok := members.FindByID(d.memberID)
		if !ok {
			if strict {
				return fmt.Errorf("%s line %d: %w %d (payment %d)", r.paymentStore.Name(), i+1, ErrDanglingMember, d.memberID, d.id)
			}
			slog.Warn("payment_member_unresolved", "store", r.paymentStore.Name(), "payment_id", d.id, "member_id", d.memberID)
			m = memberDomain.Member{ID: d.memberID}
		}
		p, err := domain.New(d.id, &m, d.status, d.date, d.amount, d.reference)
		if err != nil {
			return fmt.Errorf("%s line %d: %w: %v", r.paymentStore.Name(), i+1, storage.ErrCorruptRecord, err)
		}
		payments = append(payments, p)
	}

	reminders, err := r.reminderStore.ReadLines(ctx)
	if err != nil {
		slog.Warn("store_read_failed", "store", r.reminderStore.Name(), "error", err)
		reminders = nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = payments
	r.reminders = reminders
	slog.Debug("payments_loaded", "payments", len(payments), "reminders", len(reminders))
	return nil
}

// NextID returns the id for the next payment.
// POST: count+1
// Payments are never deleted, so count+1 stays unique.
func (r *Repository) NextID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments) + 1
}

// Register appends the payment build returns for the next id. Persist writes it.
// PRE: build does not call back into r
// POST: a build error is returned and the history is unchanged
// INVARIANT: id assignment and append happen under one lock, so concurrent registrations get distinct ids
func (r *Repository) Register(build func(id int) (domain.Payment, error)) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := build(len(r.payments) + 1)
	if err != nil {
		return domain.Payment{}, err
	}
	r.payments = append(r.payments, p)
	return p, nil
}

// Persist rewrites the payment store from the in-memory history.
// POST: Returns an ErrIOFailure error if the write fails; memory is unchanged either way
func (r *Repository) Persist(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, 0, len(r.payments))
	for _, p := range r.payments {
		lines = append(lines, EncodePayment(p, r.delimiter))
	}
	if err := r.paymentStore.WriteLines(ctx, lines); err != nil {
		if !errors.Is(err, failure.ErrIOFailure) {
			err = failure.IO(r.paymentStore.Name(), err)
		}
		return err
	}
	return nil
}

// FindByMemberID returns member id's payments in insertion order.
func (r *Repository) FindByMemberID(id int) []domain.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.payments {
		if p.MemberID == id {
			out = append(out, p)
		}
	}
	return out
}

// FindAll returns a copy of the payment history.
func (r *Repository) FindAll() []domain.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Payment(nil), r.payments...)
}

// Count returns the number of recorded payments.
func (r *Repository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

// SaveReminder adds text to the reminder bag and rewrites the reminder store.
// PRE: none
// POST: Invalid text is an ErrInvalidInput error and nothing changes
func (r *Repository) SaveReminder(ctx context.Context, text string) error {
	if err := validate.Reminder(text); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reminders = append(r.reminders, text)
	r.persistReminders(ctx)
	return nil
}

// Reminders returns a copy of the reminder bag.
func (r *Repository) Reminders() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.reminders...)
}

// HasReminder reports whether text is in the bag.
func (r *Repository) HasReminder(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index(text) >= 0
}

// RemoveReminder removes one reminder matching text exactly.
// POST: Returns false, without error, when no reminder matches
func (r *Repository) RemoveReminder(ctx context.Context, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(text)
	if i < 0 {
		return false
	}
	r.reminders = append(r.reminders[:i], r.reminders[i+1:]...)
	r.persistReminders(ctx)
	return true
}

// ClearReminders empties the reminder bag.
// POST: Returns how many reminders were removed
func (r *Repository) ClearReminders(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.reminders)
	r.reminders = nil
	r.persistReminders(ctx)
	return n
}

// index returns the position of text in the bag, or -1. Caller holds r.mu.
func (r *Repository) index(text string) int {
	for i, rem := range r.reminders {
		if rem == text {
			return i
		}
	}
	return -1
}

// persistReminders rewrites the reminder store. Caller holds r.mu.
func (r *Repository) persistReminders(ctx context.Context) {
	if err := r.reminderStore.WriteLines(ctx, r.reminders); err != nil {
		slog.Warn("store_write_failed", "store", r.reminderStore.Name(), "error", err)
	}
}
