package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
)

// UpsertBudget creates or replaces the monthly limit for a category.
func (s *SQLiteStorage) UpsertBudget(ctx context.Context, category string, monthlyLimit float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}
	if monthlyLimit <= 0 {
		return fmt.Errorf("%w: monthly limit must be positive", ErrInvalidBudget)
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (category, monthly_limit, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET
			monthly_limit = excluded.monthly_limit,
			updated_at = excluded.updated_at
	`, category, monthlyLimit, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert budget: %w", translateError(err))
	}
	return nil
}

// GetBudgets returns every budget ordered by category.
func (s *SQLiteStorage) GetBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, monthly_limit, created_at, updated_at
		FROM budgets
		ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", translateError(err))
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.ID, &b.Category, &b.MonthlyLimit, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}

	return budgets, rows.Err()
}

// DeleteBudget removes the budget for a category.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE category = ?`, category)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", translateError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("budget %s: %w", category, common.ErrNotFound)
	}
	return nil
}
