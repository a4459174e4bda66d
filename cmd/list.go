package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verolang/vero/internal/config"
	"github.com/verolang/vero/internal/store"
	"github.com/verolang/vero/internal/ui"
)

var statusFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged features and their last compile status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunList(cmd.OutOrStdout(), statusFlag)
	},
}

func init() {
	listCmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status (ok, err)")
	rootCmd.AddCommand(listCmd)
}

type listRow struct {
	feature   string
	fileName  string
	scenarios int
	status    string
}

func RunList(w io.Writer, statusFilter string) error {
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

	rows, err := sqlDB.Query(`
		SELECT ft.name, f.file_path, ft.scenario_count,
			COALESCE(
				(SELECT status FROM compilations WHERE feature_id = ft.id ORDER BY id DESC LIMIT 1),
				'new'
			) AS last_status
		FROM features ft
		JOIN files f ON ft.file_id = f.id
		ORDER BY f.file_path, ft.id
	`)
	if err != nil {
		return fmt.Errorf("querying features: %w", err)
	}
	defer rows.Close()

	var results []listRow
	for rows.Next() {
		var r listRow
		var filePath string
		if err := rows.Scan(&r.feature, &filePath, &r.scenarios, &r.status); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}
		r.fileName = filepath.Base(filePath)

		if statusFilter != "" && r.status != statusFilter {
			continue
		}

		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rows: %w", err)
	}

	if len(results) == 0 {
		return nil
	}

	// Compute column widths
	featureWidth, fileWidth := 0, 0
	for _, r := range results {
		if len(r.feature) > featureWidth {
			featureWidth = len(r.feature)
		}
		if len(r.fileName) > fileWidth {
			fileWidth = len(r.fileName)
		}
	}

	for _, r := range results {
		ui.ListRow(w, r.feature, r.fileName, r.scenarios, r.status, featureWidth, fileWidth)
	}

	return nil
}
