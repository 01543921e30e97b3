package store

import (
	"database/sql"
	"fmt"

	"github.com/ppiankov/veracity/internal/log"
)

type migration struct {
	version     int
	description string
	up          func(tx *sql.Tx) error
}

// Append new migrations with increasing versions
var migrations = []migration{
	{
		version:     1,
		description: "runs and results",
		up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    video_title TEXT NOT NULL,
    video_url TEXT NOT NULL DEFAULT '',
    channel TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    claims INTEGER NOT NULL DEFAULT 0,
    summary TEXT NOT NULL DEFAULT '{}',
    report TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
    run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    claim TEXT NOT NULL,
    verdict TEXT NOT NULL,
    outcome TEXT NOT NULL,
    p_true REAL NOT NULL,
    p_false REAL NOT NULL,
    p_uncertain REAL NOT NULL,
    PRIMARY KEY (run_id, position)
);`)
			return err
		},
	},
	{
		version:     2,
		description: "claim type and run ordering index",
		up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`ALTER TABLE results ADD COLUMN claim_type TEXT NOT NULL DEFAULT ''`); err != nil {
				return err
			}
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`)
			return err
		},
	},
}

func latestVersion() int {
	return migrations[len(migrations)-1].version
}

func schemaVersion(conn *sql.DB) (int, error) {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// migrate applies pending migrations, tracking progress in PRAGMA user_version
func migrate(conn *sql.DB) error {
	current, err := schemaVersion(conn)
	if err != nil {
		return err
	}
	if current >= latestVersion() {
		return nil
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		log.Debug("Applying store migration %d: %s", m.version, m.description)

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if err := m.up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}

		// modernc/sqlite rejects user_version changes inside a transaction
		if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return fmt.Errorf("set version %d: %w", m.version, err)
		}
	}
	return nil
}
