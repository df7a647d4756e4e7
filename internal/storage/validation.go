// Package storage provides the data persistence layer for finsight.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/finsight/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidBudget      = errors.New("invalid budget")
	ErrInvalidFestival    = errors.New("invalid festival")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction validates a single transaction before it is persisted.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Hash == "" {
		return fmt.Errorf("%w: missing hash", ErrInvalidTransaction)
	}
	if txn.Date == "" {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if !txn.Direction.IsValid() {
		return fmt.Errorf("%w: invalid direction %q", ErrInvalidTransaction, txn.Direction)
	}
	if txn.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount", ErrInvalidTransaction)
	}
	return nil
}

// daysInMonth counts days in a leap year so 29 February stays valid.
func daysInMonth(month int) int {
	return time.Date(2024, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func validateFestival(f *model.Festival) error {
	if f == nil {
		return fmt.Errorf("%w: festival", ErrNilParameter)
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidFestival)
	}
	if f.Month < 1 || f.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidFestival, f.Month)
	}
	if maxDay := daysInMonth(f.Month); f.Day < 1 || f.Day > maxDay {
		return fmt.Errorf("%w: day %d out of range for month %d", ErrInvalidFestival, f.Day, f.Month)
	}
	if f.DurationDays < 1 {
		return fmt.Errorf("%w: duration must be at least one day", ErrInvalidFestival)
	}
	return nil
}
