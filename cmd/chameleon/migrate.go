package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dperalta86/chameleondb/internal/cli"
	"github.com/dperalta86/chameleondb/pkg/migrator"
	"github.com/dperalta86/chameleondb/tooling"
)

var (
	migrateDir    string
	migrateDryRun bool
	migrateForce  bool
	migrateSplit  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [path]",
	Short: "Write the schema migration",
	Long: `Write the CREATE TABLE statements of a schema to <dir>/schema.sql, ordered so
every table is created after the tables its foreign keys reference.

The file header records a checksum of the schema. When the schema has not
changed the file is left alone unless --force is given.`,
	Example: `  # Write migrations/schema.sql
  chameleon migrate

  # Preview the DDL without writing
  chameleon migrate --dry-run

  # Also write one file per table
  chameleon migrate --split --dir db/migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := schemaArg(args)
		dir := resolveString(migrateDir, cfg.Migrate.Dir)
		opts := migrator.MigrateOptions{
			Force: resolveBool(migrateForce, cfg.Migrate.Force),
			Split: resolveBool(migrateSplit, cfg.Migrate.Split),
		}
		dryRun := resolveBool(migrateDryRun, cfg.Migrate.DryRun)
		if dryRun {
			opts.DryRun = cmd.OutOrStdout()
		}

		logger.Info("migrating", "schema", schemaPath, "dir", dir, "dry_run", dryRun, "force", opts.Force, "split", opts.Split)
		return runMigrate(cmd, schemaPath, dir, opts)
	},
}

func init() {
	f := migrateCmd.Flags()
	f.StringVar(&migrateDir, "dir", "", "migrations directory (default: migrations)")
	f.BoolVar(&migrateDryRun, "dry-run", false, "print the migration instead of writing it")
	f.BoolVar(&migrateForce, "force", false, "rewrite the migration even if the schema is unchanged")
	f.BoolVar(&migrateSplit, "split", false, "also write one file per table under <dir>/tables")
}

func runMigrate(cmd *cobra.Command, schemaPath, dir string, opts migrator.MigrateOptions) error {
	skipped, err := tooling.MigrateWithOptions(cmd.Context(), schemaPath, dir, cfg.SchemaNaming(), opts)
	if err != nil {
		return cli.Classify("migration failed", err)
	}

	if opts.DryRun != nil || quiet {
		return nil
	}
	out := cmd.OutOrStdout()
	if skipped {
		_, _ = fmt.Fprintln(out, "Schema unchanged, migration skipped.")
		_, _ = fmt.Fprintln(out, "Use --force to rewrite.")
		return nil
	}
	_, _ = fmt.Fprintf(out, "Wrote %s\n", filepath.Join(dir, migrator.FileName))
	if opts.Split {
		entries, err := os.ReadDir(filepath.Join(dir, "tables"))
		if err == nil {
			_, _ = fmt.Fprintf(out, "Wrote %d table files to %s\n", len(entries), filepath.Join(dir, "tables"))
		}
	}
	return nil
}
