package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether money entered or left the account.
type Direction string

const (
	// DirectionCredit represents money entering the account.
	DirectionCredit Direction = "Credit"
	// DirectionDebit represents money leaving the account.
	DirectionDebit Direction = "Debit"
)

// IsValid reports whether d is a known direction.
func (d Direction) IsValid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// Transaction represents a single classified bank-statement row.
type Transaction struct {
	IngestedAt  time.Time
	Category    *string // nil until classified or corrected
	ID          string
	Date        string // YYYY-MM-DD, or the raw statement value when unparseable
	Description string // Raw narration
	Hash        string
	Direction   Direction
	Amount      decimal.Decimal
	IsSaving    bool
}

// CategoryName returns the category or an empty string when uncategorized.
func (t *Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// Month returns the YYYY-MM prefix of the transaction date.
func (t *Transaction) Month() string {
	if len(t.Date) < 7 {
		return t.Date
	}
	return t.Date[:7]
}

// ContentHash creates the deduplication key for a statement row. The
// description must already be normalized so cosmetic differences in
// narration collapse to the same key. Amounts are hashed exactly; callers
// round them to two places before hashing and storing.
func ContentHash(date, normalizedDescription string, amount decimal.Decimal, direction Direction) string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		date,
		normalizedDescription,
		amount.String(),
		direction)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// StringPtr returns a pointer to s, or nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
