package db

import (
	"database/sql"
	"testing"
)

// NewTestDB creates a migrated in-memory SQLite database for testing.
//
// Always use this in tests rather than a file-based database.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	t.Cleanup(func() { d.Close() })
	return d
}
