package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenForTest opens a migrated database in t.TempDir and closes it on cleanup.
func OpenForTest(t testing.TB) *sql.DB {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := (Manager{}).UpToLatest(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}
