package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, hash, date, description, amount, direction, category, is_saving, ingested_at`

// InsertTransaction persists a single transaction. A row whose hash already
// exists is rejected with common.ErrDuplicateEntry.
func (s *SQLiteStorage) InsertTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.IngestedAt.IsZero() {
		txn.IngestedAt = time.Now().UTC()
	}

	var category sql.NullString
	if txn.Category != nil {
		category = sql.NullString{String: *txn.Category, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, txn.ID, txn.Hash, txn.Date, txn.Description, txn.Amount.String(),
		string(txn.Direction), category, txn.IsSaving, txn.IngestedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", translateError(err))
	}

	return nil
}

// TransactionExists reports whether a transaction with the given hash is stored.
func (s *SQLiteStorage) TransactionExists(ctx context.Context, hash string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(hash, "hash"); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM transactions WHERE hash = ?)`, hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction: %w", translateError(err))
	}
	return exists, nil
}

// GetTransactionByHash retrieves a transaction by its content hash.
func (s *SQLiteStorage) GetTransactionByHash(ctx context.Context, hash string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(hash, "hash"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE hash = ?`, hash)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", hash, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// UpdateTransactionCategory assigns a category to a stored transaction.
func (s *SQLiteStorage) UpdateTransactionCategory(ctx context.Context, hash, category string, isSaving bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(hash, "hash"); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET category = ?, is_saving = ? WHERE hash = ?`,
		category, isSaving, hash)
	if err != nil {
		return fmt.Errorf("failed to update transaction category: %w", translateError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transaction %s: %w", hash, common.ErrNotFound)
	}

	return nil
}

// ListLedger returns every transaction ordered by date, then insertion order.
func (s *SQLiteStorage) ListLedger(ctx context.Context) ([]model.Transaction, error) {
	return s.ListTransactions(ctx, service.TransactionFilter{})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListTransactions returns transactions matching the filter.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		conditions []string
		args       []any
	)

	if filter.Month != "" {
		conditions = append(conditions, "date LIKE ?")
		args = append(args, filter.Month+"%")
	}
	if filter.Direction != "" {
		conditions = append(conditions, "direction = ?")
		args = append(args, string(filter.Direction))
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		conditions = append(conditions, `(description LIKE ? ESCAPE '\' OR category LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, rowid"

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	return s.queryTransactions(ctx, query, args...)
}

// ListUncategorized returns transactions that have no category yet.
func (s *SQLiteStorage) ListUncategorized(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	return s.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE category IS NULL ORDER BY date, rowid`)
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", translateError(err))
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*model.Transaction, error) {
	var (
		txn       model.Transaction
		amount    string
		direction string
		category  sql.NullString
	)

	err := row.Scan(&txn.ID, &txn.Hash, &txn.Date, &txn.Description, &amount,
		&direction, &category, &txn.IsSaving, &txn.IngestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q for transaction %s: %w", amount, txn.ID, common.ErrDatabaseCorrupted)
	}
	txn.Direction = model.Direction(direction)
	if category.Valid {
		txn.Category = &category.String
	}

	return &txn, nil
}
