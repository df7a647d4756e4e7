// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Input errors.
	ErrInvalidInput = errors.New("invalid input")

	// Analytics errors.
	ErrInsufficientData = errors.New("insufficient data")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// InputError reports a statement that cannot be ingested at all, such as one
// missing required columns or with a broken tabular structure.
type InputError struct {
	Err     error
	Missing []string
}

func (e *InputError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("statement missing required columns: %s", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed statement: %v", e.Err)
	}
	return "malformed statement"
}

// Unwrap lets callers match ErrInvalidInput as well as the underlying cause.
func (e *InputError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// NewMissingColumnsError creates an InputError listing the absent columns.
func NewMissingColumnsError(missing []string) error {
	return &InputError{Missing: missing}
}

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

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrBusy) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
