package migrator

import (
	"context"
	"fmt"

	"github.com/dperalta86/chameleondb/pkg/parser"
)

// Migrate parses a schema file and writes its migration to dir in one
// operation. This is the recommended high-level API for most applications.
//
// The function is idempotent - safe to call on every build. It validates the
// schema, orders the tables by their foreign keys and writes dir/schema.sql,
// leaving the file untouched when the schema has not changed.
//
//	if err := migrator.Migrate(ctx, "migrations", "schema.cham"); err != nil {
//	    log.Fatalf("migration failed: %v", err)
//	}
//
// For embedded schemas (no file I/O), use MigrateFromString.
// For dry-run, force or split output, use MigrateWithOptions.
func Migrate(ctx context.Context, dir, schemaPath string) error {
	_, err := MigrateWithOptions(ctx, dir, schemaPath, MigrateOptions{})
	return err
}

// MigrateFromString parses schema content and writes its migration to dir.
// Useful for testing or when the schema is embedded in the application
// binary:
//
//	//go:embed schema.cham
//	var embeddedSchema string
//
//	err := migrator.MigrateFromString(ctx, "migrations", embeddedSchema)
func MigrateFromString(ctx context.Context, dir, content string) error {
	s, err := parser.ParseSchemaString(content)
	if err != nil {
		return fmt.Errorf("parsing schema: %w", err)
	}
	_, err = NewMigrator(dir, Options{}).Migrate(ctx, s, MigrateOptions{})
	return err
}

// MigrateWithOptions performs migration with control over dry-run, force and
// split output.
//
// Returns (skipped, error):
//   - skipped=true if migration was skipped due to unchanged schema (only when Force=false and DryRun=nil)
//   - error is non-nil if migration failed (parse error, validation error, cycle, I/O error)
//
// Example: Preview the DDL without writing
//
//	var buf bytes.Buffer
//	_, err := migrator.MigrateWithOptions(ctx, "migrations", "schema.cham", migrator.MigrateOptions{
//	    DryRun: &buf,
//	})
func MigrateWithOptions(ctx context.Context, dir, schemaPath string, opts MigrateOptions) (skipped bool, err error) {
	s, err := parser.ParseSchema(schemaPath)
	if err != nil {
		return false, fmt.Errorf("parsing schema: %w", err)
	}
	return NewMigrator(dir, Options{}).Migrate(ctx, s, opts)
}
