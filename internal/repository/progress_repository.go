package repository

import (
	"database/sql"
	"fmt"

	"github.com/weylan/street-coverage-go/internal/database"
	"github.com/weylan/street-coverage-go/internal/models"
)

// StreetProgressRepository handles database operations for cumulative
// street progress. All writes are monotone: percentage only rises,
// ever_completed never unsets, counters only increment.
type StreetProgressRepository struct {
	db *sql.DB
}

// NewStreetProgressRepository creates a new street progress repository
func NewStreetProgressRepository(db *sql.DB) *StreetProgressRepository {
	return &StreetProgressRepository{db: db}
}

// Upsert applies one run's merged progress for a street. The monotone merge
// happens in SQL so concurrent runs for the same user cannot regress the
// row. The interval set is replaced with the merged superset in the same
// transaction; the superset already contains every previously stored span.
func (r *StreetProgressRepository) Upsert(p models.StreetProgress, completedThisRun bool) error {
	completionDelta := 0
	if completedThisRun {
		completionDelta = 1
	}
	everCompleted := 0
	if p.EverCompleted {
		everCompleted = 1
	}

	return database.Transaction(r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO street_progress (
				user_id, street_key, street_name, road_type, percentage,
				ever_completed, run_count, completion_count,
				first_run_date, last_run_date
			) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
			ON CONFLICT(user_id, street_key) DO UPDATE SET
				street_name = CASE WHEN excluded.street_name != '' THEN excluded.street_name ELSE street_name END,
				percentage = MAX(percentage, excluded.percentage),
				ever_completed = MAX(ever_completed, excluded.ever_completed),
				run_count = run_count + 1,
				completion_count = completion_count + ?,
				first_run_date = CASE WHEN first_run_date = 0 THEN excluded.first_run_date
					ELSE MIN(first_run_date, excluded.first_run_date) END,
				last_run_date = MAX(last_run_date, excluded.last_run_date),
				updated_at = CURRENT_TIMESTAMP
		`
		_, err := tx.Exec(query,
			p.UserID, p.StreetKey, p.DisplayName, p.RoadType, p.Percentage,
			everCompleted, completionDelta, p.FirstRunDate, p.LastRunDate,
			completionDelta,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert street progress: %w", err)
		}

		if _, err := tx.Exec(
			"DELETE FROM street_intervals WHERE user_id = ? AND street_key = ?",
			p.UserID, p.StreetKey,
		); err != nil {
			return fmt.Errorf("failed to clear street intervals: %w", err)
		}

		for _, iv := range p.Intervals {
			if _, err := tx.Exec(
				"INSERT INTO street_intervals (user_id, street_key, start_percent, end_percent) VALUES (?, ?, ?, ?)",
				p.UserID, p.StreetKey, iv.StartPercent, iv.EndPercent,
			); err != nil {
				return fmt.Errorf("failed to insert street interval: %w", err)
			}
		}

		return nil
	})
}

// GetByUser retrieves a user's street progress with pagination, most
// covered first.
func (r *StreetProgressRepository) GetByUser(userID string, page, pageSize int) ([]models.StreetProgress, int64, error) {
	var total int64
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM street_progress WHERE user_id = ?", userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count street progress: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	if pageSize > 1000 {
		pageSize = 1000
	}
	offset := (page - 1) * pageSize

	query := `
		SELECT user_id, street_key, street_name, road_type, percentage,
			ever_completed, run_count, completion_count, first_run_date, last_run_date
		FROM street_progress
		WHERE user_id = ?
		ORDER BY percentage DESC, street_key ASC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.Query(query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query street progress: %w", err)
	}
	defer rows.Close()

	var result []models.StreetProgress
	for rows.Next() {
		var p models.StreetProgress
		var everCompleted int
		if err := rows.Scan(
			&p.UserID, &p.StreetKey, &p.DisplayName, &p.RoadType, &p.Percentage,
			&everCompleted, &p.RunCount, &p.CompletionCount, &p.FirstRunDate, &p.LastRunDate,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan street progress: %w", err)
		}
		p.EverCompleted = everCompleted != 0
		result = append(result, p)
	}

	return result, total, nil
}

// GetByKey retrieves one street's progress with its merged intervals.
// Returns nil when the user has no progress on the street.
func (r *StreetProgressRepository) GetByKey(userID, streetKey string) (*models.StreetProgress, error) {
	query := `
		SELECT user_id, street_key, street_name, road_type, percentage,
			ever_completed, run_count, completion_count, first_run_date, last_run_date
		FROM street_progress
		WHERE user_id = ? AND street_key = ?
	`
	var p models.StreetProgress
	var everCompleted int
	err := r.db.QueryRow(query, userID, streetKey).Scan(
		&p.UserID, &p.StreetKey, &p.DisplayName, &p.RoadType, &p.Percentage,
		&everCompleted, &p.RunCount, &p.CompletionCount, &p.FirstRunDate, &p.LastRunDate,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get street progress: %w", err)
	}
	p.EverCompleted = everCompleted != 0

	intervals, err := r.GetIntervals(userID, streetKey)
	if err != nil {
		return nil, err
	}
	p.Intervals = intervals

	return &p, nil
}

// GetIntervals returns the stored interval set for a street, sorted by start.
func (r *StreetProgressRepository) GetIntervals(userID, streetKey string) ([]models.CoverageInterval, error) {
	rows, err := r.db.Query(
		"SELECT start_percent, end_percent FROM street_intervals WHERE user_id = ? AND street_key = ? ORDER BY start_percent",
		userID, streetKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query street intervals: %w", err)
	}
	defer rows.Close()

	var intervals []models.CoverageInterval
	for rows.Next() {
		var iv models.CoverageInterval
		if err := rows.Scan(&iv.StartPercent, &iv.EndPercent); err != nil {
			return nil, fmt.Errorf("failed to scan street interval: %w", err)
		}
		intervals = append(intervals, iv)
	}

	return intervals, nil
}
