package repository

import (
	"database/sql"
	"fmt"

	"github.com/weylan/street-coverage-go/internal/database"
	"github.com/weylan/street-coverage-go/internal/models"
)

// ValidatedEdgeRepository handles database operations for validated edges.
// Edge identity is (user, way, node_a, node_b) with node_a < node_b, so
// re-running the same route never creates duplicate rows. A row that has
// once been recorded valid stays valid.
type ValidatedEdgeRepository struct {
	db *sql.DB
}

// NewValidatedEdgeRepository creates a new validated edge repository
func NewValidatedEdgeRepository(db *sql.DB) *ValidatedEdgeRepository {
	return &ValidatedEdgeRepository{db: db}
}

// UpsertEdges records one run's edge validation outcomes.
func (r *ValidatedEdgeRepository) UpsertEdges(userID string, edges []models.ValidatedEdge) error {
	if len(edges) == 0 {
		return nil
	}

	return database.Transaction(r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO validated_edges (
				user_id, way_id, node_a, node_b, way_name, road_type,
				length_meters, is_valid, rejection_reason
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id, way_id, node_a, node_b) DO UPDATE SET
				is_valid = MAX(is_valid, excluded.is_valid),
				rejection_reason = CASE
					WHEN MAX(is_valid, excluded.is_valid) = 1 THEN ''
					ELSE excluded.rejection_reason
				END
		`
		stmt, err := tx.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare edge upsert: %w", err)
		}
		defer stmt.Close()

		for _, e := range edges {
			isValid := 0
			if e.IsValid {
				isValid = 1
			}
			if _, err := stmt.Exec(
				userID, e.WayID, e.NodeA, e.NodeB, e.WayName, e.RoadType,
				e.LengthMeters, isValid, e.RejectionReason,
			); err != nil {
				return fmt.Errorf("failed to upsert edge %d-%d: %w", e.NodeA, e.NodeB, err)
			}
		}
		return nil
	})
}

// CountDistinctByWay returns, per way, the distinct valid edges the user
// has ever recorded.
func (r *ValidatedEdgeRepository) CountDistinctByWay(userID string) (map[int64]int, error) {
	rows, err := r.db.Query(
		"SELECT way_id, COUNT(*) FROM validated_edges WHERE user_id = ? AND is_valid = 1 GROUP BY way_id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count edges by way: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var wayID int64
		var count int
		if err := rows.Scan(&wayID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan edge count: %w", err)
		}
		counts[wayID] = count
	}

	return counts, nil
}

// CountForWay returns the distinct valid edges for a single way.
func (r *ValidatedEdgeRepository) CountForWay(userID string, wayID int64) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM validated_edges WHERE user_id = ? AND way_id = ? AND is_valid = 1",
		userID, wayID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count edges for way %d: %w", wayID, err)
	}
	return count, nil
}

// RejectionHistogram returns rejection reason counts for a user's
// still-rejected edges.
func (r *ValidatedEdgeRepository) RejectionHistogram(userID string) (map[string]int, error) {
	rows, err := r.db.Query(
		"SELECT rejection_reason, COUNT(*) FROM validated_edges WHERE user_id = ? AND is_valid = 0 GROUP BY rejection_reason",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rejection histogram: %w", err)
	}
	defer rows.Close()

	histogram := make(map[string]int)
	for rows.Next() {
		var reason string
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, fmt.Errorf("failed to scan rejection count: %w", err)
		}
		histogram[reason] = count
	}

	return histogram, nil
}
