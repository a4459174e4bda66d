package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verolang/vero/internal/config"
	"github.com/verolang/vero/internal/ui"
	"github.com/verolang/vero/internal/vero"
)

var checkCmd = &cobra.Command{
	Use:   "check [file...]",
	Short: "Report diagnostics without writing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCheck(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// RunCheck runs the full pipeline over each file and reports diagnostics. It
// writes no specs and touches no catalog, so it works on any path, inside a
// project or not.
func RunCheck(w io.Writer, paths []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		if _, err := os.Stat(cfg.Source); os.IsNotExist(err) {
			return fmt.Errorf("run `vero init` first")
		}
		paths, err = sourceFiles(cfg)
		if err != nil {
			return err
		}
	}

	files, problems := 0, 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		src := string(data)
		files++

		res := vero.Compile(src, vero.Options{BaseURL: cfg.BaseURL, Vars: cfg.Vars})
		staged := res.Staged()
		if len(staged) == 0 {
			continue
		}

		lines := strings.Split(src, "\n")
		for _, d := range staged {
			ui.DiagLine(w, path, d.Pos.Line, d.Pos.Col, d.Message)
			if d.Pos.Line >= 1 && d.Pos.Line <= len(lines) {
				ui.Excerpt(w, d.Pos.Line, lines[d.Pos.Line-1], d.Pos.Col)
			}
			problems++
		}
	}

	ui.CheckSummary(w, files, problems)
	if problems > 0 {
		return fmt.Errorf("check failed")
	}
	return nil
}
