package orchestrators

import (
	"log/slog"

	"swimclub/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByUsername(username string) (account.Account, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username   string
	Password   string
	Permission account.Permission // action the caller is about to perform
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	Username string
	Role     string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
}

// ExecuteLogin validates credentials and the permission for one command.
// PRE: none
// POST: Returns account info on success; unknown user and wrong password are
// both ErrWrongPassword; a role without the permission is ErrForbidden
func ExecuteLogin(input LoginInput, deps LoginDeps) (LoginResult, error) {
	if input.Username == "" || input.Password == "" {
		return LoginResult{}, account.ErrWrongPassword
	}

	acct, err := deps.AccountStore.GetByUsername(input.Username)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "username", input.Username, "reason", "not_found")
		return LoginResult{}, account.ErrWrongPassword
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "username", input.Username, "reason", "wrong_password")
		return LoginResult{}, err
	}

	if input.Permission != "" && !acct.Can(input.Permission) {
		slog.Info("auth_event", "event", "login_blocked", "username", input.Username, "reason", "forbidden", "permission", string(input.Permission))
		return LoginResult{}, account.ErrForbidden
	}

	slog.Debug("auth_event", "event", "login_success", "username", input.Username, "role", acct.Role)
	return LoginResult{Username: acct.Username, Role: acct.Role}, nil
}
