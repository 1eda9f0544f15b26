// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrNotFound covers unknown contract, audit, and check identifiers.
	// Surfaced to the caller as-is; never retried.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput covers malformed caller input such as an empty auditor
	// name or an unknown check status value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCatalogIntegrity indicates the embedded checklist catalog is broken
	// (duplicate id, empty pattern list, malformed pattern). It is only
	// raised at startup and is fatal.
	ErrCatalogIntegrity = errors.New("catalog integrity violation")

	// ErrStorage wraps transient persistence failures. The engine performs
	// no retries itself; callers may.
	ErrStorage = errors.New("storage failure")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry by the caller.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorage) ||
		errors.Is(err, context.DeadlineExceeded)
}
