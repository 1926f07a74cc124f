package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dperalta86/chameleondb/internal/cli"
	"github.com/dperalta86/chameleondb/pkg/migrator"
	"github.com/dperalta86/chameleondb/pkg/parser"
	"github.com/dperalta86/chameleondb/tooling"
)

var (
	watchMigrate  bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Validate on every schema change",
	Long: `Watch a schema file or directory and validate the schema whenever a .cham
file changes. With --migrate a valid schema also rewrites the migration.`,
	Example: `  # Validate on change
  chameleon watch

  # Keep migrations/schema.sql in sync while editing
  chameleon watch --migrate`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := schemaArg(args)
		debounce := watchDebounce
		if debounce <= 0 {
			debounce = cfg.Watch.Debounce
		}

		w, err := fsnotify.NewWatcher()
		if err != nil {
			return cli.GeneralError("starting watcher", err)
		}
		defer func() { _ = w.Close() }()
		if err := addWatchDirs(w, path); err != nil {
			return cli.GeneralError("watching schema", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		check := func() { runWatchCheck(ctx, out, path) }
		check()
		if !quiet {
			_, _ = fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", path)
		}
		return watchLoop(ctx, w, debounce, check)
	},
}

func init() {
	f := watchCmd.Flags()
	f.BoolVar(&watchMigrate, "migrate", false, "rewrite the migration after each valid change")
	f.DurationVar(&watchDebounce, "debounce", 0, "wait this long after the last change (default: from config)")
}

// addWatchDirs watches path, or the directory of path when it is a file, and
// every non-hidden directory below it.
func addWatchDirs(w *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.Add(filepath.Dir(path))
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}

// watchLoop calls onChange once per burst of schema file events, debounce
// after the last one. New directories are watched as they appear.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, debounce time.Duration, onChange func()) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addWatchDirs(w, ev.Name)
					continue
				}
			}
			if filepath.Ext(ev.Name) != parser.FileExtension || ev.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("schema file changed", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
				fire = timer.C
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-fire:
			onChange()
		}
	}
}

func runWatchCheck(ctx context.Context, out io.Writer, path string) {
	stamp := time.Now().Format(time.TimeOnly)
	s, err := tooling.LoadSchema(path)
	if err != nil {
		_, _ = fmt.Fprintf(out, "[%s] ", stamp)
		cli.PrintError(out, cli.Classify("schema is invalid", err))
		return
	}
	_, _ = fmt.Fprintf(out, "[%s] Schema is valid (%d entities)\n", stamp, len(s.Entities))

	if !watchMigrate {
		return
	}
	dir := cfg.Migrate.Dir
	skipped, err := migrator.NewMigrator(dir, migrator.Options{Naming: cfg.SchemaNaming()}).
		Migrate(ctx, s, migrator.MigrateOptions{Split: cfg.Migrate.Split})
	switch {
	case err != nil:
		cli.PrintError(out, cli.Classify("migration failed", err))
	case !skipped:
		_, _ = fmt.Fprintf(out, "[%s] Wrote %s\n", stamp, filepath.Join(dir, migrator.FileName))
	}
}
