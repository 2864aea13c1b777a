package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"projects", "holidays", "tasks", "dependencies", "resources",
		"resource_exceptions", "assignments", "baselines", "baseline_tasks", "history",
	}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, idx := range []string{"idx_projects_short_id", "idx_tasks_parent", "idx_resource_exceptions", "idx_baselines_name"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysCascade(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO projects (id, name, start_date, created_at, updated_at) VALUES ('p1', 'P', '2025-03-03', 'now', 'now')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tasks (project_id, id, position, name, start_at, end_at) VALUES ('p1', 1, 0, 'A', 's', 'e'), ('p1', 2, 1, 'B', 's', 'e')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO dependencies (project_id, predecessor_id, successor_id, position) VALUES ('p1', 1, 2, 0)`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM projects WHERE id = 'p1'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM dependencies`).Scan(&n))
	assert.Zero(t, n)
}

func TestMigrate_RejectsBadDependencyType(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO projects (id, name, start_date, created_at, updated_at) VALUES ('p1', 'P', '2025-03-03', 'now', 'now')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tasks (project_id, id, position, name, start_at, end_at) VALUES ('p1', 1, 0, 'A', 's', 'e'), ('p1', 2, 1, 'B', 's', 'e')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO dependencies (project_id, predecessor_id, successor_id, type, position) VALUES ('p1', 1, 2, 'XX', 0)`)
	assert.Error(t, err)
}
