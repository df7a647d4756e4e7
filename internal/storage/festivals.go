package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
)

// AddFestival stores a festival and sets its ID. Adding a festival that was
// previously deactivated reactivates it.
func (s *SQLiteStorage) AddFestival(ctx context.Context, festival *model.Festival) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateFestival(festival); err != nil {
		return err
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO festivals (name, month, day, duration_days, is_active)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(name, month, day) DO UPDATE SET
			duration_days = excluded.duration_days,
			is_active = 1
		RETURNING id
	`, festival.Name, festival.Month, festival.Day, festival.DurationDays).Scan(&festival.ID)
	if err != nil {
		return fmt.Errorf("failed to add festival: %w", translateError(err))
	}

	festival.IsActive = true
	return nil
}

// SeedFestival inserts a festival unless one with the same name and date
// already exists, active or not.
func (s *SQLiteStorage) SeedFestival(ctx context.Context, festival *model.Festival) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateFestival(festival); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO festivals (name, month, day, duration_days, is_active)
		VALUES (?, ?, ?, ?, 1)
	`, festival.Name, festival.Month, festival.Day, festival.DurationDays)
	if err != nil {
		return fmt.Errorf("failed to seed festival: %w", translateError(err))
	}
	return nil
}

// GetActiveFestivals returns active festivals in calendar order.
func (s *SQLiteStorage) GetActiveFestivals(ctx context.Context) ([]model.Festival, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, month, day, duration_days, is_active
		FROM festivals
		WHERE is_active = 1
		ORDER BY month, day, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query festivals: %w", translateError(err))
	}
	defer func() { _ = rows.Close() }()

	var festivals []model.Festival
	for rows.Next() {
		var f model.Festival
		if err := rows.Scan(&f.ID, &f.Name, &f.Month, &f.Day, &f.DurationDays, &f.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan festival: %w", err)
		}
		festivals = append(festivals, f)
	}

	return festivals, rows.Err()
}

// DeactivateFestival hides a festival from upcoming alerts.
func (s *SQLiteStorage) DeactivateFestival(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE festivals SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate festival: %w", translateError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("festival %d: %w", id, common.ErrNotFound)
	}
	return nil
}
