package orchestrators

import (
	"context"
	"errors"
	"testing"

	"swimclub/internal/domain/account"
)

// mockAccountStore implements AccountStoreForCreate and AccountStoreForLogin for testing.
type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

func (m *mockAccountStore) GetByUsername(username string) (account.Account, error) {
	a, ok := m.accounts[username]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.Username] = a
	return nil
}

func (m *mockAccountStore) Count() int {
	return len(m.accounts)
}

// TestExecuteCreateAccount tests bootstrap, uniqueness and validation rules.
func TestExecuteCreateAccount(t *testing.T) {
	ctx := context.Background()
	store := newMockAccountStore()
	deps := CreateAccountDeps{AccountStore: store}

	err := ExecuteCreateAccount(ctx, CreateAccountInput{Username: "tina", Password: "longenough", Role: account.RoleTreasurer}, deps)
	if !errors.Is(err, ErrBootstrapRole) {
		t.Fatalf("expected ErrBootstrapRole, got %v", err)
	}

	if err := ExecuteCreateAccount(ctx, CreateAccountInput{Username: "chair", Password: "longenough", Role: account.RoleChairman}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.accounts["chair"].PasswordHash == "" || store.accounts["chair"].PasswordHash == "longenough" {
		t.Error("expected hashed password")
	}

	tests := []struct {
		name  string
		input CreateAccountInput
		want  error
	}{
		{"duplicate", CreateAccountInput{Username: "chair", Password: "longenough", Role: account.RoleCoach}, ErrUsernameAlreadyExists},
		{"short password", CreateAccountInput{Username: "tina", Password: "short", Role: account.RoleTreasurer}, account.ErrPasswordTooShort},
		{"empty password", CreateAccountInput{Username: "tina", Role: account.RoleTreasurer}, account.ErrEmptyPassword},
		{"bad role", CreateAccountInput{Username: "tina", Password: "longenough", Role: "lifeguard"}, account.ErrInvalidRole},
		{"empty username", CreateAccountInput{Password: "longenough", Role: account.RoleCoach}, account.ErrEmptyUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ExecuteCreateAccount(ctx, tt.input, deps); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestExecuteLogin tests credential and permission checks.
func TestExecuteLogin(t *testing.T) {
	ctx := context.Background()
	store := newMockAccountStore()
	deps := CreateAccountDeps{AccountStore: store}
	_ = ExecuteCreateAccount(ctx, CreateAccountInput{Username: "chair", Password: "longenough", Role: account.RoleChairman}, deps)
	_ = ExecuteCreateAccount(ctx, CreateAccountInput{Username: "coach", Password: "poolside!", Role: account.RoleCoach}, deps)
	login := LoginDeps{AccountStore: store}

	res, err := ExecuteLogin(LoginInput{Username: "chair", Password: "longenough", Permission: account.PermPayments}, login)
	if err != nil || res.Role != account.RoleChairman {
		t.Fatalf("expected chairman login, got %+v, %v", res, err)
	}

	tests := []struct {
		name  string
		input LoginInput
		want  error
	}{
		{"wrong password", LoginInput{Username: "chair", Password: "nope-nope"}, account.ErrWrongPassword},
		{"unknown user", LoginInput{Username: "ghost", Password: "longenough"}, account.ErrWrongPassword},
		{"missing password", LoginInput{Username: "chair"}, account.ErrWrongPassword},
		{"forbidden", LoginInput{Username: "coach", Password: "poolside!", Permission: account.PermPayments}, account.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExecuteLogin(tt.input, login); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := ExecuteLogin(LoginInput{Username: "coach", Password: "poolside!", Permission: account.PermReadMembers}, login); err != nil {
		t.Errorf("expected coach to read members, got %v", err)
	}
}

// TestExecuteChangePassword tests password rotation and its rejections.
// PRE: one chairman account with password "longenough"
// POST: only the new password verifies after a successful change
func TestExecuteChangePassword(t *testing.T) {
	ctx := context.Background()
	store := newMockAccountStore()
	if err := ExecuteCreateAccount(ctx, CreateAccountInput{Username: "chair", Password: "longenough", Role: account.RoleChairman}, CreateAccountDeps{AccountStore: store}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	deps := ChangePasswordDeps{AccountStore: store}

	tests := []struct {
		name  string
		input ChangePasswordInput
		want  error
	}{
		{"unknown user", ChangePasswordInput{Username: "ghost", CurrentPassword: "longenough", NewPassword: "evenlonger"}, account.ErrWrongPassword},
		{"wrong current", ChangePasswordInput{Username: "chair", CurrentPassword: "guessing1", NewPassword: "evenlonger"}, ErrCurrentPasswordWrong},
		{"same password", ChangePasswordInput{Username: "chair", CurrentPassword: "longenough", NewPassword: "longenough"}, ErrNewPasswordSame},
		{"too short", ChangePasswordInput{Username: "chair", CurrentPassword: "longenough", NewPassword: "short"}, account.ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ExecuteChangePassword(ctx, tt.input, deps); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if err := ExecuteChangePassword(ctx, ChangePasswordInput{}, deps); err == nil {
		t.Error("expected error for empty input")
	}

	if err := ExecuteChangePassword(ctx, ChangePasswordInput{Username: "chair", CurrentPassword: "longenough", NewPassword: "evenlonger"}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	acct := store.accounts["chair"]
	if acct.CheckPassword("evenlonger") != nil || acct.CheckPassword("longenough") == nil {
		t.Error("expected only the new password to verify")
	}
}
