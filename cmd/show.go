package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verolang/vero/internal/config"
	"github.com/verolang/vero/internal/store"
	"github.com/verolang/vero/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <feature>",
	Short: "Show a feature's last compilation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunShow(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func RunShow(w io.Writer, feature string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Source); os.IsNotExist(err) {
		return fmt.Errorf("run `vero init` first")
	}

	sqlDB, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var featureID int64
	var filePath string
	err = sqlDB.QueryRow(`
		SELECT ft.id, f.file_path
		FROM features ft
		JOIN files f ON ft.file_id = f.id
		WHERE ft.name = ?
		ORDER BY ft.id DESC LIMIT 1
	`, feature).Scan(&featureID, &filePath)
	if err == sql.ErrNoRows {
		return fmt.Errorf("feature %q not found", feature)
	}
	if err != nil {
		return fmt.Errorf("querying feature %q: %w", feature, err)
	}

	var compilationID int64
	var status, code, compiledAt string
	err = sqlDB.QueryRow(`
		SELECT id, status, code, compiled_at
		FROM compilations
		WHERE feature_id = ?
		ORDER BY id DESC LIMIT 1
	`, featureID).Scan(&compilationID, &status, &code, &compiledAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("feature %q has never been compiled", feature)
	}
	if err != nil {
		return fmt.Errorf("querying compilations: %w", err)
	}

	ui.ShowHeader(w, feature, filepath.Base(filePath), status, compiledAt)

	rows, err := sqlDB.Query(`
		SELECT stage, line, col, message
		FROM diagnostics
		WHERE compilation_id = ?
		ORDER BY id
	`, compilationID)
	if err != nil {
		return fmt.Errorf("querying diagnostics: %w", err)
	}
	defer rows.Close()

	printed := false
	for rows.Next() {
		var stage, message string
		var line, col int
		if err := rows.Scan(&stage, &line, &col, &message); err != nil {
			return fmt.Errorf("scanning diagnostic: %w", err)
		}
		if !printed {
			fmt.Fprintln(w)
			printed = true
		}
		ui.DiagLine(w, filePath, line, col, stage+": "+message)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating diagnostics: %w", err)
	}

	if code != "" {
		fmt.Fprintln(w)
		ui.Code(w, code)
	}

	return nil
}
