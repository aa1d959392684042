package sqlite

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB opens a migrated in-memory database named after the test, so
// parallel tests never share rows.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := newMemoryDB(url.PathEscape(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(context.Background(), db.handle))
	return db
}

// countRows reads the table directly. Callers must have released any
// acquired conn first; the DB has only one.
func countRows(t *testing.T, db *DB) int64 {
	t.Helper()

	var n int64
	err := db.handle.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM hits`).Scan(&n)
	require.NoError(t, err)
	return n
}
