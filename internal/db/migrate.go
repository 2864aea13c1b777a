package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent, so it is
// safe to call on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE statements are re-run on every open.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id               TEXT PRIMARY KEY,
		short_id         TEXT NOT NULL DEFAULT '',
		name             TEXT NOT NULL,
		start_date       TEXT NOT NULL,
		target_date      TEXT,
		unit             TEXT NOT NULL DEFAULT 'days'
		                 CHECK(unit IN ('days','hours')),
		currency         TEXT NOT NULL DEFAULT '',
		working_days     TEXT NOT NULL DEFAULT '1,2,3,4,5',
		hours_per_day    REAL NOT NULL DEFAULT 8 CHECK(hours_per_day > 0 AND hours_per_day <= 24),
		day_start_min    INTEGER NOT NULL DEFAULT 480,
		next_task_id     INTEGER NOT NULL DEFAULT 1,
		next_resource_id INTEGER NOT NULL DEFAULT 1,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_short_id ON projects(short_id) WHERE short_id != ''`,

	`CREATE TABLE IF NOT EXISTS holidays (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		day        TEXT NOT NULL,
		PRIMARY KEY (project_id, day)
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		project_id       TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		id               INTEGER NOT NULL CHECK(id > 0),
		parent_id        INTEGER,
		position         INTEGER NOT NULL,
		name             TEXT NOT NULL,
		notes            TEXT NOT NULL DEFAULT '',
		start_at         TEXT NOT NULL,
		end_at           TEXT NOT NULL,
		duration         REAL NOT NULL DEFAULT 0,
		percent_complete REAL NOT NULL DEFAULT 0
		                 CHECK(percent_complete >= 0 AND percent_complete <= 100),
		milestone        INTEGER NOT NULL DEFAULT 0,
		mode             TEXT NOT NULL DEFAULT 'auto'
		                 CHECK(mode IN ('auto','manual')),
		est_optimistic   REAL,
		est_likely       REAL,
		est_pessimistic  REAL,
		style            TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (project_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(project_id, parent_id)`,

	`CREATE TABLE IF NOT EXISTS dependencies (
		project_id     TEXT NOT NULL,
		predecessor_id INTEGER NOT NULL,
		successor_id   INTEGER NOT NULL,
		type           TEXT NOT NULL DEFAULT 'FS'
		               CHECK(type IN ('FS','SS','FF','SF')),
		lag            REAL NOT NULL DEFAULT 0,
		position       INTEGER NOT NULL,
		PRIMARY KEY (project_id, predecessor_id, successor_id),
		FOREIGN KEY (project_id, predecessor_id) REFERENCES tasks(project_id, id) ON DELETE CASCADE,
		FOREIGN KEY (project_id, successor_id) REFERENCES tasks(project_id, id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS resources (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		id         INTEGER NOT NULL CHECK(id > 0),
		name       TEXT NOT NULL,
		rate       REAL NOT NULL DEFAULT 0 CHECK(rate >= 0),
		capacity   REAL NOT NULL DEFAULT 100 CHECK(capacity >= 0),
		PRIMARY KEY (project_id, id)
	)`,

	`CREATE TABLE IF NOT EXISTS resource_exceptions (
		project_id  TEXT NOT NULL,
		resource_id INTEGER NOT NULL,
		start_day   TEXT NOT NULL,
		end_day     TEXT NOT NULL,
		FOREIGN KEY (project_id, resource_id) REFERENCES resources(project_id, id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_resource_exceptions ON resource_exceptions(project_id, resource_id)`,

	`CREATE TABLE IF NOT EXISTS assignments (
		project_id  TEXT NOT NULL,
		task_id     INTEGER NOT NULL,
		resource_id INTEGER NOT NULL,
		allocation  REAL NOT NULL CHECK(allocation > 0 AND allocation <= 1000),
		position    INTEGER NOT NULL,
		PRIMARY KEY (project_id, task_id, resource_id),
		FOREIGN KEY (project_id, task_id) REFERENCES tasks(project_id, id) ON DELETE CASCADE,
		FOREIGN KEY (project_id, resource_id) REFERENCES resources(project_id, id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS baselines (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_baselines_name ON baselines(project_id, name COLLATE NOCASE)`,

	`CREATE TABLE IF NOT EXISTS baseline_tasks (
		baseline_id      TEXT NOT NULL REFERENCES baselines(id) ON DELETE CASCADE,
		task_id          INTEGER NOT NULL,
		name             TEXT NOT NULL,
		wbs              TEXT NOT NULL,
		start_at         TEXT NOT NULL,
		end_at           TEXT NOT NULL,
		duration         REAL NOT NULL,
		percent_complete REAL NOT NULL,
		summary          INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (baseline_id, task_id)
	)`,

	`CREATE TABLE IF NOT EXISTS history (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		stack      TEXT NOT NULL CHECK(stack IN ('undo','redo')),
		seq        INTEGER NOT NULL,
		label      TEXT NOT NULL DEFAULT '',
		snapshot   TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (project_id, stack, seq)
	)`,
}
