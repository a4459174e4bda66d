package store

import (
	"database/sql"
	"fmt"
)

// All contains the ordered list of migrations to apply.
var All = []string{
	`CREATE TABLE files (
		id         INTEGER PRIMARY KEY,
		file_path  TEXT UNIQUE NOT NULL,
		created_at DATETIME NOT NULL DEFAULT (datetime('now')),
		updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE features (
		id             INTEGER PRIMARY KEY,
		file_id        INTEGER NOT NULL REFERENCES files(id),
		name           TEXT NOT NULL,
		scenario_count INTEGER NOT NULL DEFAULT 0,
		created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
		updated_at     DATETIME NOT NULL DEFAULT (datetime('now')),
		UNIQUE (file_id, name)
	)`,
	`CREATE TABLE compilations (
		id          INTEGER PRIMARY KEY,
		feature_id  INTEGER NOT NULL REFERENCES features(id),
		status      TEXT NOT NULL,
		code        TEXT NOT NULL DEFAULT '',
		error_count INTEGER NOT NULL DEFAULT 0,
		compiled_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE diagnostics (
		id             INTEGER PRIMARY KEY,
		compilation_id INTEGER NOT NULL REFERENCES compilations(id),
		stage          TEXT NOT NULL,
		line           INTEGER NOT NULL,
		col            INTEGER NOT NULL,
		message        TEXT NOT NULL
	)`,
}

// Migrate brings the schema up to date, applying each pending migration in
// its own transaction.
func Migrate(db *sql.DB) error {
	current, err := schemaVersion(db)
	if err != nil {
		return err
	}

	for i := current; i < len(All); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(All[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}

		if _, err := tx.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("updating schema version to %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}

	return nil
}

// schemaVersion reads the applied migration count, creating the bookkeeping
// row on first contact.
func schemaVersion(db *sql.DB) (int, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
	if err != nil {
		return 0, fmt.Errorf("creating schema_version table: %w", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
		return 0, fmt.Errorf("checking schema_version: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return 0, fmt.Errorf("initializing schema version: %w", err)
		}
	}

	var version int
	if err := db.QueryRow(`SELECT version FROM schema_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}
