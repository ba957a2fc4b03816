package repository

import (
	"database/sql"
	"testing"

	"github.com/weylan/street-coverage-go/internal/database"
)

// newTestDB opens a migrated in-memory database. A single connection keeps
// every statement on the same :memory: instance.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.NewMigrationManager(db).RunMigrations(); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
