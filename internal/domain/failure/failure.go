// Package failure holds the error taxonomy shared by every layer.
//
// Callers branch on the kind with errors.Is; the wrapped message carries the
// specific reason shown to the user.
package failure

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrInvalidInput marks a validation failure. The operation is aborted before any mutation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks an unknown member or payment id. No mutation is attempted.
	ErrNotFound = errors.New("not found")
	// ErrIOFailure marks a store read or write failure.
	ErrIOFailure = errors.New("io failure")
)

// InvalidInput returns an error of kind ErrInvalidInput with the formatted reason.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound returns an error of kind ErrNotFound with the formatted reason.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// IO wraps err as an ErrIOFailure for the named store.
// POST: errors.Is(result, ErrIOFailure) and errors.Is(result, err) both hold
func IO(store string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIOFailure, store, err)
}

// Reason strips the kind prefix and returns the user-facing reason of err.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, kind := range []error{ErrInvalidInput, ErrNotFound, ErrIOFailure} {
		prefix := kind.Error() + ": "
		if errors.Is(err, kind) && len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
