package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"swimclub/internal/adapters/storage"
	domain "swimclub/internal/domain/account"
)

// ErrAccountNotFound is returned when no account has the username.
var ErrAccountNotFound = errors.New("account not found")

// Repository holds staff accounts, one record per line: username; role; hash.
type Repository struct {
	mu        sync.Mutex
	store     storage.RecordStore
	delimiter string
	accounts  []domain.Account
}

// Open creates a repository and loads the store.
// POST: An unreadable store is logged and treated as empty; corrupt lines are returned as errors
func Open(ctx context.Context, store storage.RecordStore, delimiter string) (*Repository, error) {
	if delimiter == "" {
		delimiter = storage.DefaultDelimiter
	}
	r := &Repository{store: store, delimiter: delimiter}
	lines, err := store.ReadLines(ctx)
	if err != nil {
		slog.Warn("store_read_failed", "store", store.Name(), "error", err)
		return r, nil
	}
	for i, line := range lines {
		f := strings.Split(line, delimiter)
		if len(f) != 3 {
			return nil, fmt.Errorf("%s line %d: %w: account record has %d fields, want 3", store.Name(), i+1, storage.ErrCorruptRecord, len(f))
		}
		a := domain.Account{Username: f[0], Role: f[1], PasswordHash: f[2]}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("%s line %d: %w: %v", store.Name(), i+1, storage.ErrCorruptRecord, err)
		}
		r.accounts = append(r.accounts, a)
	}
	return r, nil
}

// GetByUsername retrieves an account.
// POST: Returns ErrAccountNotFound if no account matches
func (r *Repository) GetByUsername(username string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return domain.Account{}, ErrAccountNotFound
}

// Count returns the number of accounts.
func (r *Repository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

// Save inserts or replaces a by username and rewrites the store.
// PRE: a has passed Validate and has a password hash
// POST: Returns the store error if the write fails; memory holds a either way
func (r *Repository) Save(ctx context.Context, a domain.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	replaced := false
	for i := range r.accounts {
		if r.accounts[i].Username == a.Username {
			r.accounts[i] = a
			replaced = true
		}
	}
	if !replaced {
		r.accounts = append(r.accounts, a)
	}
	lines := make([]string, 0, len(r.accounts))
	for _, acc := range r.accounts {
		lines = append(lines, strings.Join([]string{acc.Username, acc.Role, acc.PasswordHash}, r.delimiter))
	}
	return r.store.WriteLines(ctx, lines)
}
