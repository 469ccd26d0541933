package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"registry_state",
		"projects",
		"change_log",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	require.NoError(t, db.RunMigrations(), "migrations must be re-runnable")
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestProjectsTable verifies the status constraint
func TestProjectsTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO projects (id, name, status) VALUES (?, ?, ?)`,
		"p1", "Test Project", "L2")
	require.NoError(t, err)

	var name, sections string
	err = db.QueryRowContext(ctx,
		`SELECT name, sections FROM projects WHERE id = ?`, "p1").Scan(&name, &sections)
	require.NoError(t, err)
	require.Equal(t, "Test Project", name)
	require.Equal(t, "{}", sections)

	_, err = db.ExecContext(ctx,
		`INSERT INTO projects (id, name, status) VALUES (?, ?, ?)`,
		"p2", "Broken", "L9")
	require.Error(t, err)
	require.True(t, isCheckViolation(err))
}

// TestFileDatabasePersists verifies data survives reopening a file database
func TestFileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smartpm.db")
	ctx := context.Background()

	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	_, err = db.ExecContext(ctx, `INSERT INTO projects (id, name, status) VALUES ('p1', 'n', 'L0')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })
	require.NoError(t, reopened.RunMigrations())

	var count int
	require.NoError(t, reopened.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count))
	require.Equal(t, 1, count)
}
