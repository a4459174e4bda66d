package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verolang/vero/internal/config"
	"github.com/verolang/vero/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a vero project in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunInit(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func RunInit(w io.Writer) error {
	// vero.yaml
	_, err := os.Stat(config.File)
	cfgExists := err == nil
	if !cfgExists {
		if err := os.WriteFile(config.File, []byte(config.Starter), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", config.File, err)
		}
	}
	if cfgExists {
		fmt.Fprintln(w, config.File+" already exists")
	} else {
		fmt.Fprintln(w, config.File+" created")
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	// source directory
	_, err = os.Stat(cfg.Source)
	srcExists := err == nil
	if err := os.MkdirAll(cfg.Source, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", cfg.Source, err)
	}
	if srcExists {
		fmt.Fprintln(w, cfg.Source+"/ already exists")
	} else {
		fmt.Fprintln(w, cfg.Source+"/ created")
	}

	// catalog
	dbPath := filepath.ToSlash(cfg.DBPath())
	_, err = os.Stat(dbPath)
	dbExists := err == nil
	sqlDB, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	sqlDB.Close()
	if dbExists {
		fmt.Fprintln(w, dbPath+" already exists")
	} else {
		fmt.Fprintln(w, dbPath+" created")
	}

	// gitignore
	msgs, err := ensureGitignore(dbPath)
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	for _, msg := range msgs {
		fmt.Fprintln(w, msg)
	}

	return nil
}

func ensureGitignore(entry string) ([]string, error) {
	data, err := os.ReadFile(".gitignore")
	if os.IsNotExist(err) {
		if err := os.WriteFile(".gitignore", []byte(entry+"\n"), 0o644); err != nil {
			return nil, err
		}
		return []string{".gitignore created", entry + " added to .gitignore"}, nil
	}
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == entry {
			return []string{entry + " already in .gitignore"}, nil
		}
	}

	content := string(data)
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"

	if err := os.WriteFile(".gitignore", []byte(content), 0o644); err != nil {
		return nil, err
	}
	return []string{entry + " added to .gitignore"}, nil
}
