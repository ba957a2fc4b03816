package repository

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/weylan/street-coverage-go/internal/database"
	"github.com/weylan/street-coverage-go/internal/models"
)

// WayStatsRepository handles database operations for per-way completion
// denominators (total node and edge counts) and the way_nodes membership
// table backing node-hit aggregation.
type WayStatsRepository struct {
	db *sql.DB
}

// NewWayStatsRepository creates a new way stats repository
func NewWayStatsRepository(db *sql.DB) *WayStatsRepository {
	return &WayStatsRepository{db: db}
}

// Upsert stores a way's stats and replaces its node membership rows.
func (r *WayStatsRepository) Upsert(stats models.WayStats, nodeOrder []int64) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO way_stats (way_id, way_name, road_type, node_count, edge_count, length_meters, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(way_id) DO UPDATE SET
				way_name = excluded.way_name,
				road_type = excluded.road_type,
				node_count = excluded.node_count,
				edge_count = excluded.edge_count,
				length_meters = excluded.length_meters,
				updated_at = CURRENT_TIMESTAMP
		`
		if _, err := tx.Exec(query,
			stats.WayID, stats.WayName, stats.RoadType,
			stats.TotalNodes, stats.TotalEdges, stats.LengthMeters,
		); err != nil {
			return fmt.Errorf("failed to upsert way stats: %w", err)
		}

		if _, err := tx.Exec("DELETE FROM way_nodes WHERE way_id = ?", stats.WayID); err != nil {
			return fmt.Errorf("failed to clear way nodes: %w", err)
		}
		for i, nodeID := range nodeOrder {
			if _, err := tx.Exec(
				"INSERT OR REPLACE INTO way_nodes (way_id, node_id, position) VALUES (?, ?, ?)",
				stats.WayID, nodeID, i,
			); err != nil {
				return fmt.Errorf("failed to insert way node %d: %w", nodeID, err)
			}
		}
		return nil
	})
}

// WaysContaining returns the distinct ways any of the given nodes belong
// to, in ascending order.
func (r *WayStatsRepository) WaysContaining(nodeIDs []int64) ([]int64, error) {
	if len(nodeIDs) == 0 {
		return nil, nil
	}

	stmt, err := r.db.Prepare("SELECT way_id FROM way_nodes WHERE node_id = ?")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare way membership lookup: %w", err)
	}
	defer stmt.Close()

	seen := make(map[int64]bool)
	var ways []int64
	for _, nodeID := range nodeIDs {
		rows, err := stmt.Query(nodeID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up ways for node %d: %w", nodeID, err)
		}
		for rows.Next() {
			var wayID int64
			if err := rows.Scan(&wayID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan way id: %w", err)
			}
			if !seen[wayID] {
				seen[wayID] = true
				ways = append(ways, wayID)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to iterate ways for node %d: %w", nodeID, err)
		}
		rows.Close()
	}

	sort.Slice(ways, func(i, j int) bool { return ways[i] < ways[j] })
	return ways, nil
}

// Get returns a way's stats, or nil when unknown.
func (r *WayStatsRepository) Get(wayID int64) (*models.WayStats, error) {
	var s models.WayStats
	err := r.db.QueryRow(
		"SELECT way_id, way_name, road_type, node_count, edge_count, length_meters FROM way_stats WHERE way_id = ?",
		wayID,
	).Scan(&s.WayID, &s.WayName, &s.RoadType, &s.TotalNodes, &s.TotalEdges, &s.LengthMeters)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get way stats: %w", err)
	}
	return &s, nil
}

// GetAll returns stats for every known way, keyed by way ID.
func (r *WayStatsRepository) GetAll() (map[int64]models.WayStats, error) {
	rows, err := r.db.Query(
		"SELECT way_id, way_name, road_type, node_count, edge_count, length_meters FROM way_stats",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query way stats: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]models.WayStats)
	for rows.Next() {
		var s models.WayStats
		if err := rows.Scan(&s.WayID, &s.WayName, &s.RoadType, &s.TotalNodes, &s.TotalEdges, &s.LengthMeters); err != nil {
			return nil, fmt.Errorf("failed to scan way stats: %w", err)
		}
		result[s.WayID] = s
	}

	return result, nil
}
