package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/verolang/vero/internal/config"
	"github.com/verolang/vero/internal/store"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompile .vero files as they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return RunWatch(cmd.OutOrStdout(), ctx.Done())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// RunWatch compiles everything once, then recompiles files as they change
// until done closes. Compile diagnostics are reported and watched past, never
// returned.
func RunWatch(w io.Writer, done <-chan struct{}) error {
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

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", cfg.Output, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.Source); err != nil {
		return fmt.Errorf("watching %s/: %w", cfg.Source, err)
	}

	// Full pass first so every file starts current.
	paths, err := sourceFiles(cfg)
	if err != nil {
		return err
	}
	for _, path := range paths {
		if _, _, err := compileFile(w, sqlDB, cfg, path); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "watching %s/ for changes\n", cfg.Source)

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	pending := map[string]struct{}{}

	for {
		select {
		case <-done:
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".vero" {
				continue
			}
			pending[event.Name] = struct{}{}
			debounce.Reset(200 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "watch error: %v\n", err)

		case <-debounce.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				delete(pending, path)
				// A rename or delete leaves a stale event behind.
				if _, err := os.Stat(path); err == nil {
					changed = append(changed, path)
				}
			}
			sort.Strings(changed)
			for _, path := range changed {
				if _, _, err := compileFile(w, sqlDB, cfg, path); err != nil {
					fmt.Fprintf(w, "watch error: %v\n", err)
				}
			}
		}
	}
}
