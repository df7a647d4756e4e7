// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/finsight/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	Month     string // YYYY-MM prefix match; empty for all months
	Direction model.Direction
	Search    string // case-insensitive substring of description or category
	Limit     int
	Offset    int
}

// LedgerReader is the read side of the ledger used by analytics consumers.
type LedgerReader interface {
	// ListLedger returns every transaction ordered by date, then insertion.
	ListLedger(ctx context.Context) ([]model.Transaction, error)
}

// FeedbackStore holds the statistical classifier's training corpus.
type FeedbackStore interface {
	AddFeedback(ctx context.Context, sample model.FeedbackSample) error
	ListFeedback(ctx context.Context) ([]model.FeedbackSample, error)
	CountFeedback(ctx context.Context) (int, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	LedgerReader
	FeedbackStore

	// Transaction operations
	InsertTransaction(ctx context.Context, txn *model.Transaction) error
	TransactionExists(ctx context.Context, hash string) (bool, error)
	GetTransactionByHash(ctx context.Context, hash string) (*model.Transaction, error)
	UpdateTransactionCategory(ctx context.Context, hash, category string, isSaving bool) error
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	ListUncategorized(ctx context.Context) ([]model.Transaction, error)

	// Budget operations
	UpsertBudget(ctx context.Context, category string, monthlyLimit float64) error
	GetBudgets(ctx context.Context) ([]model.Budget, error)
	DeleteBudget(ctx context.Context, category string) error

	// Festival operations
	AddFestival(ctx context.Context, festival *model.Festival) error
	SeedFestival(ctx context.Context, festival *model.Festival) error
	GetActiveFestivals(ctx context.Context) ([]model.Festival, error)
	DeactivateFestival(ctx context.Context, id int64) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
