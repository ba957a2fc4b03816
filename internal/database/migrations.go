package database

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered, embedded migration list. New schema changes are
// appended with the next version number; applied versions are never edited.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "001_progress_tables",
		SQL: `
			CREATE TABLE IF NOT EXISTS street_progress (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				street_key TEXT NOT NULL,
				street_name TEXT NOT NULL DEFAULT '',
				road_type TEXT NOT NULL DEFAULT '',
				percentage REAL NOT NULL DEFAULT 0,
				ever_completed INTEGER NOT NULL DEFAULT 0,
				run_count INTEGER NOT NULL DEFAULT 0,
				completion_count INTEGER NOT NULL DEFAULT 0,
				first_run_date INTEGER NOT NULL DEFAULT 0,
				last_run_date INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, street_key)
			);

			CREATE TABLE IF NOT EXISTS street_intervals (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				street_key TEXT NOT NULL,
				start_percent REAL NOT NULL,
				end_percent REAL NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_street_intervals_user_key
				ON street_intervals(user_id, street_key);
		`,
	},
	{
		Version: 2,
		Name:    "002_way_graph_tables",
		SQL: `
			CREATE TABLE IF NOT EXISTS validated_edges (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				way_id INTEGER NOT NULL,
				node_a INTEGER NOT NULL,
				node_b INTEGER NOT NULL,
				way_name TEXT NOT NULL DEFAULT '',
				road_type TEXT NOT NULL DEFAULT '',
				length_meters REAL NOT NULL DEFAULT 0,
				is_valid INTEGER NOT NULL DEFAULT 0,
				rejection_reason TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, way_id, node_a, node_b)
			);

			CREATE TABLE IF NOT EXISTS node_hits (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				node_id INTEGER NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, node_id)
			);

			CREATE TABLE IF NOT EXISTS way_stats (
				way_id INTEGER PRIMARY KEY,
				way_name TEXT NOT NULL DEFAULT '',
				road_type TEXT NOT NULL DEFAULT '',
				node_count INTEGER NOT NULL DEFAULT 0,
				edge_count INTEGER NOT NULL DEFAULT 0,
				length_meters REAL NOT NULL DEFAULT 0,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);

			CREATE TABLE IF NOT EXISTS way_nodes (
				way_id INTEGER NOT NULL,
				node_id INTEGER NOT NULL,
				position INTEGER NOT NULL,
				PRIMARY KEY (way_id, node_id)
			);

			CREATE INDEX IF NOT EXISTS idx_way_nodes_node ON way_nodes(node_id);

			CREATE TABLE IF NOT EXISTS node_way_cache (
				node_id INTEGER PRIMARY KEY,
				ways_json TEXT NOT NULL,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db *sql.DB
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{db: db}
}

// InitMigrationsTable creates the migrations tracking table
func (m *MigrationManager) InitMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := m.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns a list of applied migration versions
func (m *MigrationManager) GetAppliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, nil
}

// ApplyMigration applies a single migration
func (m *MigrationManager) ApplyMigration(migration Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if _, err := tx.Exec(migration.SQL); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
	}

	if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", migration.Version, migration.Name); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}

	logrus.Infof("Applied migration %d: %s", migration.Version, migration.Name)
	return nil
}

// RunMigrations runs all pending migrations
func (m *MigrationManager) RunMigrations() error {
	if err := m.InitMigrationsTable(); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := m.ApplyMigration(migration); err != nil {
			return err
		}
	}

	return nil
}
