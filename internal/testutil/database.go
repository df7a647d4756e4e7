// Package testutil provides shared test helpers for finsight packages.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestDB represents a migrated in-memory test database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// TxnOption customises a seeded transaction.
type TxnOption func(*model.Transaction)

// WithCategory sets the category of a seeded transaction.
func WithCategory(category string) TxnOption {
	return func(txn *model.Transaction) {
		txn.Category = model.StringPtr(category)
	}
}

// AsSaving marks a seeded debit as a saving.
func AsSaving() TxnOption {
	return func(txn *model.Transaction) {
		txn.IsSaving = true
	}
}

// MustInsert seeds a transaction or fails the test. The amount is a plain
// number string such as "500" or "12.50".
func (db *TestDB) MustInsert(date, description, amount string, direction model.Direction, opts ...TxnOption) *model.Transaction {
	db.t.Helper()

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		db.t.Fatalf("bad amount %q: %v", amount, err)
	}

	txn := &model.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Description: description,
		Amount:      amt,
		Direction:   direction,
		Hash:        model.ContentHash(date, description, amt, direction),
	}
	for _, opt := range opts {
		opt(txn)
	}

	if err := db.Storage.InsertTransaction(context.Background(), txn); err != nil {
		db.t.Fatalf("failed to seed transaction %q: %v", description, err)
	}
	return txn
}

// MustAddFeedback seeds a feedback sample or fails the test.
func (db *TestDB) MustAddFeedback(description, category string) {
	db.t.Helper()

	sample := model.FeedbackSample{Description: description, Category: category}
	if err := db.Storage.AddFeedback(context.Background(), sample); err != nil {
		db.t.Fatalf("failed to seed feedback: %v", err)
	}
}
