package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/weylan/street-coverage-go/internal/database"
	"github.com/weylan/street-coverage-go/internal/roadgraph"
)

// WayCacheRepository persists the node→ways membership cache across
// restarts. Rows may be overwritten with fresher data at any time; the
// cache is an optimization, not a source of truth.
type WayCacheRepository struct {
	db *sql.DB
}

// NewWayCacheRepository creates a new way cache repository
func NewWayCacheRepository(db *sql.DB) *WayCacheRepository {
	return &WayCacheRepository{db: db}
}

// GetNodes loads cached way membership for the given nodes. Nodes without
// a row are simply absent from the result.
func (r *WayCacheRepository) GetNodes(nodeIDs []int64) (map[int64][]roadgraph.WayRef, error) {
	result := make(map[int64][]roadgraph.WayRef)
	if len(nodeIDs) == 0 {
		return result, nil
	}

	stmt, err := r.db.Prepare("SELECT ways_json FROM node_way_cache WHERE node_id = ?")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare cache lookup: %w", err)
	}
	defer stmt.Close()

	for _, id := range nodeIDs {
		var waysJSON string
		err := stmt.QueryRow(id).Scan(&waysJSON)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read cache for node %d: %w", id, err)
		}

		var refs []roadgraph.WayRef
		if err := json.Unmarshal([]byte(waysJSON), &refs); err != nil {
			// Corrupt row: treat as a miss, it will be rewritten.
			continue
		}
		result[id] = refs
	}

	return result, nil
}

// PutNodes stores way membership for a batch of nodes, overwriting any
// existing rows.
func (r *WayCacheRepository) PutNodes(entries map[int64][]roadgraph.WayRef) error {
	if len(entries) == 0 {
		return nil
	}

	return database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO node_way_cache (node_id, ways_json, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(node_id) DO UPDATE SET
				ways_json = excluded.ways_json,
				updated_at = CURRENT_TIMESTAMP
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare cache write: %w", err)
		}
		defer stmt.Close()

		for nodeID, refs := range entries {
			waysJSON, err := json.Marshal(refs)
			if err != nil {
				return fmt.Errorf("failed to marshal ways for node %d: %w", nodeID, err)
			}
			if _, err := stmt.Exec(nodeID, string(waysJSON)); err != nil {
				return fmt.Errorf("failed to write cache for node %d: %w", nodeID, err)
			}
		}
		return nil
	})
}
