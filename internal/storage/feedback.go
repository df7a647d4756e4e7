package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/finsight/internal/model"
)

// AddFeedback appends a labelled description to the training corpus.
func (s *SQLiteStorage) AddFeedback(ctx context.Context, sample model.FeedbackSample) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(sample.Category, "category"); err != nil {
		return err
	}

	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback_samples (description, category, created_at) VALUES (?, ?, ?)`,
		sample.Description, sample.Category, sample.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add feedback: %w", translateError(err))
	}
	return nil
}

// ListFeedback returns every feedback sample in insertion order.
func (s *SQLiteStorage) ListFeedback(ctx context.Context) ([]model.FeedbackSample, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, category, created_at FROM feedback_samples ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", translateError(err))
	}
	defer func() { _ = rows.Close() }()

	var samples []model.FeedbackSample
	for rows.Next() {
		var sample model.FeedbackSample
		if err := rows.Scan(&sample.ID, &sample.Description, &sample.Category, &sample.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		samples = append(samples, sample)
	}

	return samples, rows.Err()
}

// CountFeedback returns the size of the training corpus.
func (s *SQLiteStorage) CountFeedback(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback_samples`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", translateError(err))
	}
	return count, nil
}
