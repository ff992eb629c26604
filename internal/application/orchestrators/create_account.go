package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"swimclub/internal/domain/account"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByUsername(username string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count() int
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Username string
	Password string
	Role     string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
}

var ErrUsernameAlreadyExists = errors.New("an account with this username already exists")

// ErrBootstrapRole is returned when the first account is not a chairman.
var ErrBootstrapRole = errors.New("the first account must have the chairman role")

// ExecuteCreateAccount coordinates staff account creation.
// PRE: Valid username, password >= 8 chars, valid role
// POST: Account created with hashed password
// INVARIANT: Username must be unique; the first account is a chairman
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) error {
	if input.Password == "" {
		return account.ErrEmptyPassword
	}

	if _, err := deps.AccountStore.GetByUsername(input.Username); err == nil {
		return ErrUsernameAlreadyExists
	}
	if deps.AccountStore.Count() == 0 && input.Role != account.RoleChairman {
		return ErrBootstrapRole
	}

	acct := account.Account{
		Username: input.Username,
		Role:     input.Role,
	}

	// Validate domain rules
	if err := acct.Validate(); err != nil {
		return err
	}

	// Set password (handles hashing and length validation)
	if err := acct.SetPassword(input.Password); err != nil {
		return err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "account_created", "username", input.Username, "role", input.Role)
	return nil
}
