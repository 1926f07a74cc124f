package tooling

import (
	"context"
	"fmt"

	"github.com/dperalta86/chameleondb/pkg/migrator"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// MigrateOptions controls migration behavior. It is an alias so callers do
// not need to import pkg/migrator.
type MigrateOptions = migrator.MigrateOptions

// Migrate loads the project at schemaPath and writes its migration to
// outDir. This combines LoadSchema + migrator.NewMigrator + Migrate into a
// single operation.
//
// The migration process:
//  1. Finds and parses every .cham file under schemaPath
//  2. Validates the merged schema
//  3. Orders tables by their foreign keys (fails on a cycle)
//  4. Writes outDir/schema.sql unless the schema is unchanged
//
// The migration is idempotent. Safe to run on every build.
func Migrate(ctx context.Context, schemaPath, outDir string) error {
	_, err := MigrateWithOptions(ctx, schemaPath, outDir, schema.Naming{}, MigrateOptions{})
	return err
}

// MigrateWithOptions is like Migrate but with a naming strategy and
// options for dry-run, force and split output.
//
// Returns (skipped, error) where skipped is true if migration was skipped
// because the schema is unchanged (and Force is false).
func MigrateWithOptions(ctx context.Context, schemaPath, outDir string, naming schema.Naming, opts MigrateOptions) (skipped bool, err error) {
	s, err := LoadSchema(schemaPath)
	if err != nil {
		return false, fmt.Errorf("loading schema: %w", err)
	}
	m := migrator.NewMigrator(outDir, migrator.Options{Naming: naming})
	return m.Migrate(ctx, s, opts)
}
