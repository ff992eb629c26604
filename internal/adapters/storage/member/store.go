package member

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"swimclub/internal/adapters/storage"
	"swimclub/internal/domain/failure"
	domain "swimclub/internal/domain/member"
)

// Repository is the authoritative in-memory member collection bound to a record store.
// Every mutation rewrites the whole store.
type Repository struct {
	mu        sync.Mutex
	store     storage.RecordStore
	delimiter string
	members   []*domain.Member
	unsaved   bool
	degraded  bool // last read of the store failed
}

// NewRepository creates an empty repository over store.
// PRE: store is non-nil
// POST: Nothing is read until Reload
func NewRepository(store storage.RecordStore, delimiter string) *Repository {
	if delimiter == "" {
		delimiter = storage.DefaultDelimiter
	}
	return &Repository{store: store, delimiter: delimiter}
}

// Open creates a repository and loads the store.
// POST: I/O failures leave an empty repository; corrupt records are returned as errors
func Open(ctx context.Context, store storage.RecordStore, delimiter string) (*Repository, error) {
	r := NewRepository(store, delimiter)
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload discards the in-memory collection and re-reads the store.
// PRE: none
// POST: On read failure the collection is unchanged and the failure is logged;
// a corrupt record leaves the collection unchanged and is returned
// INVARIANT: changes that failed to persist are never discarded
func (r *Repository) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.unsaved {
		r.persist(ctx)
		if r.unsaved {
			slog.Warn("member_reload_skipped", "store", r.store.Name(), "reason", "unsaved changes")
			return nil
		}
	}

	lines, err := r.store.ReadLines(ctx)
	if err != nil {
		slog.Warn("store_read_failed", "store", r.store.Name(), "error", err)
		r.degraded = true
		return nil
	}
	loaded := make([]*domain.Member, 0, len(lines))
	seen := make(map[int]bool, len(lines))
	for i, line := range lines {
		m, err := DecodeMember(line, r.delimiter)
		if err != nil {
			return fmt.Errorf("%s line %d: %w", r.store.Name(), i+1, err)
		}
		if seen[m.ID] {
			return fmt.Errorf("%s line %d: %w: duplicate member id %d", r.store.Name(), i+1, storage.ErrCorruptRecord, m.ID)
		}
		seen[m.ID] = true
		loaded = append(loaded, &m)
	}
	r.members = loaded
	r.degraded = false
	slog.Debug("members_loaded", "store", r.store.Name(), "count", len(loaded))
	return nil
}

// NextID returns the id for the next registration.
// POST: 1 for an empty collection, else max(existing ids)+1
// Recomputed from the live collection on every call.
func (r *Repository) NextID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextID()
}

// nextID is NextID for callers holding r.mu.
func (r *Repository) nextID() int {
	maxID := 0
	for _, m := range r.members {
		if m.ID > maxID {
			maxID = m.ID
		}
	}
	return maxID + 1
}

// FindByID returns a copy of the member with id.
// POST: ok is false when no member has id
func (r *Repository) FindByID(id int) (domain.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.find(id); m != nil {
		return *m, true
	}
	return domain.Member{}, false
}

// FindAll returns a snapshot of the collection ordered by id.
func (r *Repository) FindAll() []domain.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindByName returns members whose name contains query, case-insensitively.
// PRE: query is non-empty
func (r *Repository) FindByName(query string) []domain.Member {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.Member
	for _, m := range r.FindAll() {
		if strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	return out
}

// Count returns the number of members.
func (r *Repository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Save appends m and rewrites the store.
// PRE: m has passed validation; m.ID comes from NextID
// POST: m is tracked; a duplicate id or unencodable field is an ErrInvalidInput error and nothing changes
func (r *Repository) Save(ctx context.Context, m domain.Member) error {
	if _, err := EncodeMember(m, r.delimiter); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(m.ID) != nil {
		return failure.InvalidInput("member id %d is already in use", m.ID)
	}
	tracked := m
	r.members = append(r.members, &tracked)
	r.persist(ctx)
	return nil
}

// SaveNew registers a member built from d under the next free id.
// PRE: d has passed validation
// POST: Returns the tracked member; an unencodable field is an ErrInvalidInput error and nothing changes
// INVARIANT: id assignment and append happen under one lock, so concurrent registrations get distinct ids
func (r *Repository) SaveNew(ctx context.Context, d domain.Details) (domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := domain.New(r.nextID(), d)
	if _, err := EncodeMember(m, r.delimiter); err != nil {
		return domain.Member{}, err
	}
	tracked := m
	r.members = append(r.members, &tracked)
	r.persist(ctx)
	return m, nil
}

// Update copies m's editable attributes onto the tracked member with the same id.
// PRE: m has passed validation
// POST: The tracked object is mutated in place; unknown id is an ErrNotFound error
// INVARIANT: Variant and PaymentStatus are not mutated
func (r *Repository) Update(ctx context.Context, m domain.Member) error {
	if _, err := EncodeMember(m, r.delimiter); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tracked := r.find(m.ID)
	if tracked == nil {
		return failure.NotFound("no member with id %d", m.ID)
	}
	tracked.Apply(m.Details())
	r.persist(ctx)
	return nil
}

// SetPaymentStatus sets the fee standing of member id.
// POST: unknown id is an ErrNotFound error
func (r *Repository) SetPaymentStatus(ctx context.Context, id int, status domain.PaymentStatus) error {
	return r.SetPaymentStatusWith(ctx, id, status, nil)
}

// SetPaymentStatusWith sets the fee standing of member id once apply succeeds.
// PRE: apply does not call back into r
// POST: unknown id is an ErrNotFound error; an apply error is returned and the member is unchanged
// INVARIANT: member id cannot be deleted while apply runs
func (r *Repository) SetPaymentStatusWith(ctx context.Context, id int, status domain.PaymentStatus, apply func(domain.Member) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tracked := r.find(id)
	if tracked == nil {
		return failure.NotFound("no member with id %d", id)
	}
	if apply != nil {
		if err := apply(*tracked); err != nil {
			return err
		}
	}
	tracked.PaymentStatus = status
	r.persist(ctx)
	return nil
}

// SetAllPaymentStatus sets every member's fee standing.
// POST: Returns how many members changed; the store is rewritten only if any did
func (r *Repository) SetAllPaymentStatus(ctx context.Context, status domain.PaymentStatus) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := 0
	for _, m := range r.members {
		if m.PaymentStatus != status {
			m.PaymentStatus = status
			changed++
		}
	}
	if changed > 0 {
		r.persist(ctx)
	}
	return changed
}

// Delete removes member id and rewrites the store.
// POST: unknown id is an ErrNotFound error
func (r *Repository) Delete(ctx context.Context, id int) error {
	return r.DeleteIf(ctx, id, nil)
}

// DeleteIf removes member id when guard accepts it.
// PRE: guard does not call back into r
// POST: unknown id is an ErrNotFound error; a guard error is returned and nothing changes
func (r *Repository) DeleteIf(ctx context.Context, id int, guard func(domain.Member) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.members {
		if m.ID == id {
			if guard != nil {
				if err := guard(*m); err != nil {
					return err
				}
			}
			r.members = append(r.members[:i], r.members[i+1:]...)
			r.persist(ctx)
			return nil
		}
	}
	return failure.NotFound("no member with id %d", id)
}

// Degraded reports whether the last read of the store failed, leaving the
// collection short of what the store holds.
func (r *Repository) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.degraded
}

// Unsaved reports whether the last rewrite of the store failed.
func (r *Repository) Unsaved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unsaved
}

// find returns the tracked member with id. Caller holds r.mu.
func (r *Repository) find(id int) *domain.Member {
	for _, m := range r.members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// persist rewrites the store from the collection. Caller holds r.mu.
// A failed write is logged and the in-memory state is kept.
func (r *Repository) persist(ctx context.Context) {
	lines := make([]string, 0, len(r.members))
	for _, m := range r.members {
		line, err := EncodeMember(*m, r.delimiter)
		if err != nil {
			// Save and Update reject unencodable members before tracking them.
			slog.Error("member_encode_failed", "member_id", m.ID, "error", err)
			continue
		}
		lines = append(lines, line)
	}
	if err := r.store.WriteLines(ctx, lines); err != nil {
		slog.Warn("store_write_failed", "store", r.store.Name(), "error", err)
		r.unsaved = true
		return
	}
	r.unsaved = false
}
