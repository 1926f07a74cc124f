// Package doctor provides health checks for a chameleon schema project.
//
// The doctor command checks that the configuration resolves, the schema
// files parse and validate, the tables can be ordered by their foreign keys,
// the migration file is up to date and every entity compiles to a query.
//
// Example usage:
//
//	d := doctor.New(doctor.Options{SchemaPath: "schema", MigrationsDir: "migrations"})
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dperalta86/chameleondb/pkg/compiler"
	"github.com/dperalta86/chameleondb/pkg/migrator"
	"github.com/dperalta86/chameleondb/pkg/parser"
	"github.com/dperalta86/chameleondb/pkg/query"
	"github.com/dperalta86/chameleondb/pkg/schema"
	"github.com/dperalta86/chameleondb/tooling"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "Schema Files", "Migrations").
	Category string

	// Name is a short identifier for the check.
	Name string

	Status  Status
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Check returns the result with the given category and name.
func (r *Report) Check(category, name string) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Category == category && c.Name == name {
			return c, true
		}
	}
	return CheckResult{}, false
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Options locates the project to check.
type Options struct {
	// ConfigPath is the config file in use, empty when running on defaults.
	ConfigPath    string
	SchemaPath    string
	MigrationsDir string
	Naming        schema.Naming
}

// Doctor performs health checks on a schema project.
type Doctor struct {
	opts Options

	// Populated during Run
	files  []string
	parsed *schema.Schema
	plan   *migrator.Plan
}

// New creates a new Doctor instance.
func New(opts Options) *Doctor {
	return &Doctor{opts: opts}
}

// Run executes all health checks and returns a report. Later checks are
// skipped when the schema they need could not be loaded.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	d.checkConfig(report)
	if err := d.checkSchemaFiles(ctx, report); err != nil {
		return nil, fmt.Errorf("checking schema files: %w", err)
	}
	if d.parsed == nil {
		return report, nil
	}
	d.checkMigrationOrder(report)
	if err := d.checkMigrationFile(report); err != nil {
		return nil, fmt.Errorf("checking migration file: %w", err)
	}
	if err := d.checkQueries(ctx, report); err != nil {
		return nil, fmt.Errorf("checking queries: %w", err)
	}

	return report, nil
}

func (d *Doctor) checkConfig(report *Report) {
	if d.opts.ConfigPath == "" {
		report.AddCheck(CheckResult{
			Category: "Configuration",
			Name:     "file",
			Status:   StatusPass,
			Message:  "No config file, using defaults",
			Details:  "Searched for chameleon.yaml and chameleon.yml up to the repository root",
		})
	} else {
		report.AddCheck(CheckResult{
			Category: "Configuration",
			Name:     "file",
			Status:   StatusPass,
			Message:  fmt.Sprintf("Config file loaded from %s", d.opts.ConfigPath),
		})
	}

	naming := d.opts.Naming.Strategy
	if naming == "" {
		naming = schema.NamingIdentity
	}
	report.AddCheck(CheckResult{
		Category: "Configuration",
		Name:     "naming",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Naming strategy: %s", naming),
	})
}

// checkSchemaFiles finds, parses and validates the schema.
func (d *Doctor) checkSchemaFiles(ctx context.Context, report *Report) error {
	const category = "Schema Files"
	path := d.opts.SchemaPath

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "exists",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Schema not found at %s", path),
			FixHint:  "Create a .cham file or point 'schema' in chameleon.yaml at your schema directory",
		})
		return nil
	}
	if err != nil {
		return err
	}

	if info.IsDir() {
		d.files, err = tooling.FindSchemaFiles(path)
		if err != nil {
			return err
		}
	} else {
		d.files = []string{path}
	}
	if len(d.files) == 0 {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "exists",
			Status:   StatusFail,
			Message:  fmt.Sprintf("No %s files in %s", parser.FileExtension, path),
			FixHint:  "Add at least one entity definition",
		})
		return nil
	}
	report.AddCheck(CheckResult{
		Category: category,
		Name:     "exists",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Found %d schema file(s) at %s", len(d.files), path),
		Details:  strings.Join(d.files, "\n"),
	})

	s, err := tooling.ParseFiles(ctx, d.files)
	if err != nil {
		if !parser.IsSyntaxErr(err) {
			return err
		}
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "parse",
			Status:   StatusFail,
			Message:  "Schema has syntax errors",
			Details:  err.Error(),
			FixHint:  "Run 'chameleon check' to see the error location",
		})
		return nil
	}

	relations := 0
	for _, e := range s.Entities {
		relations += len(e.Relations)
	}
	report.AddCheck(CheckResult{
		Category: category,
		Name:     "parse",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Schema parses (%d entities, %d relations)", len(s.Entities), relations),
	})

	if err := schema.Validate(s); err != nil {
		var verrs schema.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		lines := make([]string, len(verrs))
		for i, v := range verrs {
			lines[i] = fmt.Sprintf("%s [%s]", v.Error(), v.Kind)
		}
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "valid",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Schema has %d validation error(s)", len(verrs)),
			Details:  strings.Join(lines, "\n"),
			FixHint:  "Run 'chameleon check' for the full list",
		})
		return nil
	}

	d.parsed = s
	report.AddCheck(CheckResult{
		Category: category,
		Name:     "valid",
		Status:   StatusPass,
		Message:  "Schema is valid",
	})
	return nil
}

func (d *Doctor) checkMigrationOrder(report *Report) {
	plan, err := migrator.Generate(d.parsed, migrator.Options{Naming: d.opts.Naming})
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "Migrations",
			Name:     "order",
			Status:   StatusFail,
			Message:  "Tables cannot be ordered by their foreign keys",
			Details:  err.Error(),
			FixHint:  "Make one side of the cycle nullable and move it to a later migration, or remove a relation",
		})
		return
	}
	d.plan = plan

	tables := make([]string, len(plan.Statements))
	for i, st := range plan.Statements {
		tables[i] = st.Table
	}
	report.AddCheck(CheckResult{
		Category: "Migrations",
		Name:     "order",
		Status:   StatusPass,
		Message:  fmt.Sprintf("%d tables in dependency order", len(tables)),
		Details:  strings.Join(tables, " -> "),
	})
}

// checkMigrationFile compares the migration header with the current schema.
func (d *Doctor) checkMigrationFile(report *Report) error {
	if d.plan == nil {
		return nil
	}
	m := migrator.NewMigrator(d.opts.MigrationsDir, migrator.Options{Naming: d.opts.Naming})
	last, err := m.GetLastMigration()
	if err != nil {
		return err
	}
	if last == nil {
		report.AddCheck(CheckResult{
			Category: "Migrations",
			Name:     "fresh",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("No migration at %s", m.Path()),
			FixHint:  "Run 'chameleon migrate' to write it",
		})
		return nil
	}

	checksum, err := migrator.SchemaChecksum(d.parsed)
	if err != nil {
		return err
	}

	var details []string
	if last.SchemaChecksum != checksum {
		details = append(details, fmt.Sprintf("schema checksum: file %s, current %s", short(last.SchemaChecksum), short(checksum)))
	}
	if last.CodegenVersion != migrator.CodegenVersion {
		details = append(details, fmt.Sprintf("codegen version: file %s, current %s", last.CodegenVersion, migrator.CodegenVersion))
	}
	tables := make([]string, len(d.plan.Statements))
	for i, st := range d.plan.Statements {
		tables[i] = st.Table
	}
	if !slices.Equal(last.Tables, tables) {
		details = append(details, fmt.Sprintf("tables: file [%s], current [%s]",
			strings.Join(last.Tables, ", "), strings.Join(tables, ", ")))
	}

	if len(details) > 0 {
		report.AddCheck(CheckResult{
			Category: "Migrations",
			Name:     "fresh",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("Migration at %s is out of date", m.Path()),
			Details:  strings.Join(details, "\n"),
			FixHint:  "Run 'chameleon migrate' to rewrite it",
		})
		return nil
	}
	report.AddCheck(CheckResult{
		Category: "Migrations",
		Name:     "fresh",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Migration at %s is up to date", m.Path()),
	})
	return nil
}

// checkQueries compiles a lookup by primary key for every entity.
func (d *Doctor) checkQueries(ctx context.Context, report *Report) error {
	reqs := make([]compiler.Request, len(d.parsed.Entities))
	for i, e := range d.parsed.Entities {
		q := &query.Query{Entity: e.Name, Limit: 1}
		if pk := e.PrimaryKey(); pk != nil {
			q.Filters = []query.Filter{query.Eq(pk.Name, SampleValue(pk.Type))}
		}
		reqs[i] = compiler.Request{Query: q}
	}

	resps, err := compiler.CompileBatch(ctx, d.parsed, reqs, compiler.Options{Naming: d.opts.Naming}, 0)
	if err != nil {
		return err
	}

	var failed, compiled []string
	for i, resp := range resps {
		name := d.parsed.Entities[i].Name
		if resp.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", name, resp.Err))
			continue
		}
		compiled = append(compiled, resp.SQL.SQL)
	}

	if len(failed) > 0 {
		report.AddCheck(CheckResult{
			Category: "Queries",
			Name:     "compile",
			Status:   StatusFail,
			Message:  fmt.Sprintf("%d of %d entities failed to compile", len(failed), len(resps)),
			Details:  strings.Join(failed, "\n"),
		})
		return nil
	}
	report.AddCheck(CheckResult{
		Category: "Queries",
		Name:     "compile",
		Status:   StatusPass,
		Message:  fmt.Sprintf("All %d entities compile to a lookup query", len(resps)),
		Details:  strings.Join(compiled, "\n"),
	})
	return nil
}

// SampleValue returns a value of type t accepted by the compiler.
func SampleValue(t schema.FieldType) any {
	switch t {
	case schema.TypeUUID:
		return uuid.NewString()
	case schema.TypeDecimal:
		return decimal.NewFromInt(1).StringFixed(2)
	case schema.TypeInteger:
		return 1
	case schema.TypeFloat:
		return 1.5
	case schema.TypeBoolean:
		return true
	case schema.TypeTimestamp:
		return time.Now().UTC().Format(time.RFC3339)
	case schema.TypeDate:
		return time.Now().UTC().Format(schema.DateLayout)
	case schema.TypeJSON:
		return map[string]any{}
	}
	return "sample"
}

func short(checksum string) string {
	if len(checksum) > 12 {
		return checksum[:12]
	}
	return checksum
}
