package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/teranos/ionclm/db"
)

// CreateTestDB opens a migrated SQLite database in t.TempDir().
// Automatically registers cleanup via t.Cleanup().
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenWithMigrations(filepath.Join(t.TempDir(), "ionclm.db"), nil)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
	})

	return conn
}
