package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/gnfinvest/gnf/internal/db"
)

// NewTestDB opens a migrated in-memory store. The connection pool is pinned
// to one connection so every query sees the same database.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return open(t, ":memory:")
}

// NewFileTestDB opens a migrated store in a temp file, for tests that need
// several connections or two handles on the same data.
func NewFileTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gnf.db")
	return open(t, path), path
}

// ReopenTestDB opens a second handle on a file created by NewFileTestDB.
func ReopenTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	return open(t, path)
}

func open(t *testing.T, path string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(path)
	if err != nil {
		t.Fatalf("opening test store %s: %v", path, err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// NewTestUoW wraps database in the production unit of work.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
