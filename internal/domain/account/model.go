package account

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted staff password.
const MinPasswordLength = 8

// PasswordCost is the bcrypt cost for staff passwords.
const PasswordCost = bcrypt.DefaultCost

// Role constants
const (
	RoleChairman  = "chairman"
	RoleTreasurer = "treasurer"
	RoleCoach     = "coach"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleChairman, RoleTreasurer, RoleCoach}

// Permission names an action guarded at the CLI boundary.
type Permission string

// Permission values
const (
	PermReadMembers   Permission = "members:read"
	PermManageMembers Permission = "members:write"
	PermPayments      Permission = "payments"
)

var grants = map[string][]Permission{
	RoleChairman:  {PermReadMembers, PermManageMembers, PermPayments},
	RoleTreasurer: {PermReadMembers, PermPayments},
	RoleCoach:     {PermReadMembers},
}

// Domain errors
var (
	ErrEmptyUsername    = errors.New("username cannot be empty")
	ErrInvalidUsername  = errors.New("username cannot contain ';' or whitespace")
	ErrInvalidRole      = errors.New("role must be one of: chairman, treasurer, coach")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrWrongPassword    = errors.New("incorrect username or password")
	ErrForbidden        = errors.New("role is not allowed to perform this action")
)

// Account is a staff login.
type Account struct {
	Username     string
	Role         string
	PasswordHash string
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return ErrEmptyUsername
	}
	if strings.ContainsAny(a.Username, "; \t\r\n") {
		return ErrInvalidUsername
	}
	if !isValidRole(a.Role) {
		return ErrInvalidRole
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is at least MinPasswordLength characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// Can reports whether the account's role grants p.
func (a *Account) Can(p Permission) bool {
	for _, g := range grants[a.Role] {
		if g == p {
			return true
		}
	}
	return false
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
