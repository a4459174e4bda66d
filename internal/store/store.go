// Package store keeps the compile catalog: the source files seen, the
// features they contain, and the outcome of every compilation, so `vero
// list` and `vero show` work without recompiling anything.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens the catalog at path, creating it and bringing the schema up to
// date as needed.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA foreign_keys = ON`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring catalog: %w", err)
		}
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CompiledFeature is one feature's outcome within a single compile run.
type CompiledFeature struct {
	Name      string
	Scenarios int
	Status    string // "ok" or "err"
	Code      string
	Diags     []StageDiag
}

// StageDiag is a diagnostic row, labeled with the stage that produced it.
type StageDiag struct {
	Stage   string
	Line    int
	Col     int
	Message string
}

// RecordCompilation upserts the file and its features and appends one
// compilation row per feature, all in one transaction.
func RecordCompilation(db *sql.DB, filePath string, features []CompiledFeature) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning compilation record: %w", err)
	}
	defer tx.Rollback()

	fileID, err := upsertFile(tx, filePath)
	if err != nil {
		return err
	}

	for _, f := range features {
		featureID, err := upsertFeature(tx, fileID, f)
		if err != nil {
			return err
		}

		res, err := tx.Exec(
			`INSERT INTO compilations (feature_id, status, code, error_count) VALUES (?, ?, ?, ?)`,
			featureID, f.Status, f.Code, len(f.Diags),
		)
		if err != nil {
			return fmt.Errorf("recording compilation of %s: %w", f.Name, err)
		}
		compilationID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading compilation id: %w", err)
		}

		for _, d := range f.Diags {
			_, err := tx.Exec(
				`INSERT INTO diagnostics (compilation_id, stage, line, col, message) VALUES (?, ?, ?, ?, ?)`,
				compilationID, d.Stage, d.Line, d.Col, d.Message,
			)
			if err != nil {
				return fmt.Errorf("recording diagnostic: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing compilation record: %w", err)
	}
	return nil
}

func upsertFile(tx *sql.Tx, path string) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT id FROM files WHERE file_path = ?`, path).Scan(&id)
	if err == sql.ErrNoRows {
		res, err := tx.Exec(`INSERT INTO files (file_path) VALUES (?)`, path)
		if err != nil {
			return 0, fmt.Errorf("inserting file %s: %w", path, err)
		}
		return res.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("querying file %s: %w", path, err)
	}

	if _, err := tx.Exec(`UPDATE files SET updated_at = datetime('now') WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("touching file %s: %w", path, err)
	}
	return id, nil
}

func upsertFeature(tx *sql.Tx, fileID int64, f CompiledFeature) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT id FROM features WHERE file_id = ? AND name = ?`, fileID, f.Name).Scan(&id)
	if err == sql.ErrNoRows {
		res, err := tx.Exec(
			`INSERT INTO features (file_id, name, scenario_count) VALUES (?, ?, ?)`,
			fileID, f.Name, f.Scenarios,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting feature %s: %w", f.Name, err)
		}
		return res.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("querying feature %s: %w", f.Name, err)
	}

	_, err = tx.Exec(
		`UPDATE features SET scenario_count = ?, updated_at = datetime('now') WHERE id = ?`,
		f.Scenarios, id,
	)
	if err != nil {
		return 0, fmt.Errorf("updating feature %s: %w", f.Name, err)
	}
	return id, nil
}
