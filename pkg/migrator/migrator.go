package migrator

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dperalta86/chameleondb/internal/sqlgen/sqldsl"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// CodegenVersion is incremented when DDL generation changes.
// This ensures migrations are rewritten even if the schema checksum matches.
const CodegenVersion = "1"

// FileName is the name of the combined migration file.
const FileName = "schema.sql"

// tablesDir holds the per-table files written with MigrateOptions.Split.
const tablesDir = "tables"

// MigrateOptions controls migration behavior.
type MigrateOptions struct {
	// DryRun outputs the migration to the provided writer without touching
	// the migrations directory.
	DryRun io.Writer

	// Force rewrites the migration even if schema and codegen are unchanged.
	Force bool

	// Split additionally writes one file per table under tables/, numbered
	// in creation order. Stale table files are removed.
	Split bool
}

// MigrationRecord is the header of a migration file.
type MigrationRecord struct {
	SchemaChecksum string
	CodegenVersion string
	Tables         []string
}

// Migrator writes the DDL of a schema to a migrations directory.
// Migrate is idempotent: an unchanged schema leaves the directory untouched.
//
//	m := migrator.NewMigrator("migrations", migrator.Options{})
//	skipped, err := m.Migrate(ctx, s, migrator.MigrateOptions{})
type Migrator struct {
	dir  string
	opts Options
}

// NewMigrator creates a migrator writing to dir.
func NewMigrator(dir string, opts Options) *Migrator {
	return &Migrator{dir: dir, opts: opts}
}

// Path returns the path of the combined migration file.
func (m *Migrator) Path() string {
	return filepath.Join(m.dir, FileName)
}

// ComputeSchemaChecksum returns a SHA256 hash of the schema content.
// Used to detect schema changes for skip-if-unchanged optimization.
func ComputeSchemaChecksum(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// SchemaChecksum hashes the canonical JSON form of s, so formatting and
// comments in the source do not count as changes.
func SchemaChecksum(s *schema.Schema) (string, error) {
	data, err := schema.Encode(s)
	if err != nil {
		return "", err
	}
	return ComputeSchemaChecksum(string(data)), nil
}

// GetLastMigration reads the header of the existing migration file. It
// returns nil if there is none.
func (m *Migrator) GetLastMigration() (*MigrationRecord, error) {
	f, err := os.Open(m.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening last migration: %w", err)
	}
	defer func() { _ = f.Close() }()

	var rec MigrationRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "--") {
			break
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "--")), ": ")
		if !ok {
			continue
		}
		switch key {
		case "Schema checksum":
			rec.SchemaChecksum = value
		case "Codegen version":
			rec.CodegenVersion = value
		case "Tables":
			rec.Tables = strings.Split(value, ", ")
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading last migration: %w", err)
	}
	return &rec, nil
}

// shouldSkipMigration returns true if the schema and codegen version are unchanged.
func shouldSkipMigration(lastMigration *MigrationRecord, schemaChecksum string) bool {
	if lastMigration == nil {
		return false
	}
	return lastMigration.SchemaChecksum == schemaChecksum &&
		lastMigration.CodegenVersion == CodegenVersion
}

// Migrate validates s, generates its DDL and writes it to the migrations
// directory. It reports skipped=true when the existing file already holds
// the same schema checksum and codegen version (only when Force is false and
// DryRun is nil).
func (m *Migrator) Migrate(ctx context.Context, s *schema.Schema, opts MigrateOptions) (skipped bool, err error) {
	// 1. Validate schema before any computation
	if err := schema.Validate(s); err != nil {
		return false, err
	}

	// 2. Compute schema checksum
	checksum, err := SchemaChecksum(s)
	if err != nil {
		return false, fmt.Errorf("computing schema checksum: %w", err)
	}

	// 3. Check if we can skip migration (unless force or dry-run)
	if !opts.Force && opts.DryRun == nil {
		last, err := m.GetLastMigration()
		if err != nil {
			return false, fmt.Errorf("checking last migration: %w", err)
		}
		if shouldSkipMigration(last, checksum) {
			return true, nil
		}
	}

	// 4. Generate DDL
	plan, err := Generate(s, m.opts)
	if err != nil {
		return false, err
	}
	content := render(checksum, plan)

	if opts.DryRun != nil {
		_, err := io.WriteString(opts.DryRun, content)
		return false, err
	}

	// 5. Write files
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return false, fmt.Errorf("creating migrations directory: %w", err)
	}
	if err := writeFileAtomic(m.Path(), []byte(content)); err != nil {
		return false, err
	}
	if opts.Split {
		dir := filepath.Join(m.dir, tablesDir)
		written, err := WriteFiles(ctx, dir, plan)
		if err != nil {
			return false, err
		}
		if err := dropOrphanedFiles(dir, written); err != nil {
			return false, err
		}
	}
	return false, nil
}

// render produces the migration file: a comment header followed by the DDL.
func render(checksum string, plan *Plan) string {
	tables := make([]string, len(plan.Statements))
	for i, st := range plan.Statements {
		tables[i] = st.Table
	}
	header := sqldsl.Sqlf(`
		-- Generated by chameleon. DO NOT EDIT.
		-- Schema checksum: %s
		-- Codegen version: %s
		%s
	`, checksum, CodegenVersion, sqldsl.Optf(len(tables) > 0, "-- Tables: %s", strings.Join(tables, ", ")))
	if len(plan.Statements) == 0 {
		return header + "\n"
	}
	return header + "\n\n" + plan.SQL() + "\n"
}

// TableFileName returns the file name of the n-th (zero-based) statement.
func TableFileName(n int, st Statement) string {
	return fmt.Sprintf("%03d_%s.sql", n+1, strings.Trim(st.Table, `"`))
}

// WriteFiles writes each statement of plan to its own file in dir,
// concurrently, and returns the file names written.
func WriteFiles(ctx context.Context, dir string, plan *Plan) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	names := make([]string, len(plan.Statements))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(8)
	for i, st := range plan.Statements {
		i, st := i, st
		names[i] = TableFileName(i, st)
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return writeFileAtomic(filepath.Join(dir, names[i]), []byte(st.SQL+"\n"))
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}

// dropOrphanedFiles removes .sql files in dir that are not in keep.
func dropOrphanedFiles(dir string, keep []string) error {
	expected := make(map[string]bool, len(keep))
	for _, name := range keep {
		expected[name] = true
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sql" || expected[e.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("removing orphaned %s: %w", e.Name(), err)
		}
	}
	return nil
}

// writeFileAtomic writes data to a temporary file and renames it over path,
// skipping the write when the content is already identical.
func writeFileAtomic(path string, data []byte) error {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) { //nolint:gosec // path is from trusted source
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".chameleon-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
