package repository

import (
	"database/sql"
	"fmt"

	"github.com/weylan/street-coverage-go/internal/database"
)

// NodeHitRepository handles database operations for node-proximity hits.
// A hit is identified by (user, node), so revisiting a node is a no-op.
type NodeHitRepository struct {
	db *sql.DB
}

// NewNodeHitRepository creates a new node hit repository
func NewNodeHitRepository(db *sql.DB) *NodeHitRepository {
	return &NodeHitRepository{db: db}
}

// UpsertHits records the nodes a run came within snap radius of.
func (r *NodeHitRepository) UpsertHits(userID string, nodeIDs []int64) error {
	if len(nodeIDs) == 0 {
		return nil
	}

	return database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(
			"INSERT INTO node_hits (user_id, node_id) VALUES (?, ?) ON CONFLICT(user_id, node_id) DO NOTHING",
		)
		if err != nil {
			return fmt.Errorf("failed to prepare node hit upsert: %w", err)
		}
		defer stmt.Close()

		for _, id := range nodeIDs {
			if _, err := stmt.Exec(userID, id); err != nil {
				return fmt.Errorf("failed to upsert node hit %d: %w", id, err)
			}
		}
		return nil
	})
}

// CountByWay returns, per way, how many of the way's nodes the user has
// ever hit, resolved through the way_nodes membership table.
func (r *NodeHitRepository) CountByWay(userID string) (map[int64]int, error) {
	query := `
		SELECT wn.way_id, COUNT(DISTINCT nh.node_id)
		FROM node_hits nh
		JOIN way_nodes wn ON wn.node_id = nh.node_id
		WHERE nh.user_id = ?
		GROUP BY wn.way_id
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count node hits by way: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var wayID int64
		var count int
		if err := rows.Scan(&wayID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan node hit count: %w", err)
		}
		counts[wayID] = count
	}

	return counts, nil
}

// CountForWay returns the user's distinct hit count on one way.
func (r *NodeHitRepository) CountForWay(userID string, wayID int64) (int, error) {
	query := `
		SELECT COUNT(DISTINCT nh.node_id)
		FROM node_hits nh
		JOIN way_nodes wn ON wn.node_id = nh.node_id
		WHERE nh.user_id = ? AND wn.way_id = ?
	`
	var count int
	if err := r.db.QueryRow(query, userID, wayID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count node hits for way %d: %w", wayID, err)
	}
	return count, nil
}
