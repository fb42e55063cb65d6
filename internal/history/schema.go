package history

import "database/sql"

const currentSchemaVersion = 1

type migration struct {
	version int
	up      []string
}

var migrations = []migration{
	{
		version: 1,
		up: []string{
			`CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,

			`CREATE TABLE runs (
				id TEXT PRIMARY KEY,
				triggered_by TEXT NOT NULL,

				-- Request
				table_path TEXT NOT NULL,
				dir TEXT NOT NULL,
				team_column TEXT NOT NULL,
				photo_column TEXT NOT NULL,
				dry_run INTEGER NOT NULL DEFAULT 0,

				-- Counts
				moved INTEGER NOT NULL DEFAULT 0,
				missing INTEGER NOT NULL DEFAULT 0,
				in_place INTEGER NOT NULL DEFAULT 0,
				empty_photo INTEGER NOT NULL DEFAULT 0,
				planned INTEGER NOT NULL DEFAULT 0,
				failed INTEGER NOT NULL DEFAULT 0,
				dirs_created INTEGER NOT NULL DEFAULT 0,
				bytes INTEGER NOT NULL DEFAULT 0,

				-- Unix milliseconds
				started_at INTEGER NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0,

				aborted INTEGER NOT NULL DEFAULT 0,
				error TEXT
			)`,
			`CREATE INDEX idx_runs_started ON runs(started_at)`,
			`CREATE INDEX idx_runs_dir ON runs(dir)`,

			`CREATE TABLE operations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				line INTEGER NOT NULL,
				team TEXT NOT NULL,
				photo TEXT NOT NULL,
				action TEXT NOT NULL,
				source_path TEXT,
				target_path TEXT,
				bytes INTEGER NOT NULL DEFAULT 0,
				error TEXT
			)`,
			`CREATE INDEX idx_operations_run ON operations(run_id)`,

			`INSERT INTO schema_version (version) VALUES (1)`,
		},
	},
}

// applyMigrations applies any pending schema migrations
func applyMigrations(db *sql.DB) error {
	var currentVersion int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		// fresh database
		currentVersion = 0
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}

		for _, stmt := range m.up {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return err
			}
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}
