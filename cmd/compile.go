package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verolang/vero/internal/config"
	"github.com/verolang/vero/internal/parser"
	"github.com/verolang/vero/internal/store"
	"github.com/verolang/vero/internal/ui"
	"github.com/verolang/vero/internal/vero"
)

var compileCmd = &cobra.Command{
	Use:   "compile [file...]",
	Short: "Compile .vero files into Playwright specs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCompile(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

func RunCompile(w io.Writer, paths []string) error {
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

	if len(paths) == 0 {
		paths, err = sourceFiles(cfg)
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", cfg.Output, err)
	}

	files, features, problems := 0, 0, 0
	for _, path := range paths {
		nf, np, err := compileFile(w, sqlDB, cfg, path)
		if err != nil {
			return err
		}
		files++
		features += nf
		problems += np
	}

	ui.CompileSummary(w, files, features, problems)
	if problems > 0 {
		return fmt.Errorf("compilation failed")
	}
	return nil
}

// compileFile compiles one source file, writes its generated specs when the
// run is clean, and records the outcome in the catalog. It returns the number
// of features seen and diagnostics reported.
func compileFile(w io.Writer, sqlDB *sql.DB, cfg config.Config, path string) (int, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("reading %s: %w", path, err)
	}

	var fileID int64
	qerr := sqlDB.QueryRow(`SELECT id FROM files WHERE file_path = ?`, path).Scan(&fileID)
	if qerr != nil && qerr != sql.ErrNoRows {
		return 0, 0, fmt.Errorf("querying %s: %w", path, qerr)
	}
	tracked := qerr == nil

	res := vero.Compile(string(data), vero.Options{BaseURL: cfg.BaseURL, Vars: cfg.Vars})
	staged := res.Staged()

	switch {
	case len(staged) > 0:
		ui.ErrLine(w, path)
		for _, d := range staged {
			ui.DiagLine(w, path, d.Pos.Line, d.Pos.Col, d.Message)
		}
	case tracked:
		ui.OkLine(w, path)
	default:
		ui.NewLine(w, path)
	}

	if len(staged) == 0 {
		for _, f := range res.Features {
			out := filepath.Join(cfg.Output, specFileName(f.Name))
			if err := os.WriteFile(out, []byte(res.Tests[f.Name]), 0o644); err != nil {
				return 0, 0, fmt.Errorf("writing %s: %w", out, err)
			}
		}
	}

	status := "ok"
	if len(staged) > 0 {
		status = "err"
	}
	diags := make([]store.StageDiag, 0, len(staged))
	for _, d := range staged {
		diags = append(diags, store.StageDiag{
			Stage:   d.Stage,
			Line:    d.Pos.Line,
			Col:     d.Pos.Col,
			Message: d.Message,
		})
	}
	compiled := make([]store.CompiledFeature, 0, len(res.Features))
	for _, o := range parser.Outline(res.Features) {
		compiled = append(compiled, store.CompiledFeature{
			Name:      o.Name,
			Scenarios: len(o.Scenarios),
			Status:    status,
			Code:      res.Tests[o.Name],
			Diags:     diags,
		})
	}
	if err := store.RecordCompilation(sqlDB, path, compiled); err != nil {
		return 0, 0, err
	}

	return len(res.Features), len(staged), nil
}

func sourceFiles(cfg config.Config) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(cfg.Source, "*.vero"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s/: %w", cfg.Source, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// specFileName maps a feature name onto a filesystem-safe spec file name.
func specFileName(feature string) string {
	var b strings.Builder
	for _, r := range feature {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String() + ".spec.ts"
}
