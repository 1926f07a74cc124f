package migrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dperalta86/chameleondb/internal/sqlgen/sqldsl"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// columnTypes maps field types to SQL column types.
var columnTypes = map[schema.FieldType]string{
	schema.TypeUUID:      "UUID",
	schema.TypeString:    "TEXT",
	schema.TypeInteger:   "INTEGER",
	schema.TypeFloat:     "DOUBLE PRECISION",
	schema.TypeDecimal:   "NUMERIC",
	schema.TypeBoolean:   "BOOLEAN",
	schema.TypeTimestamp: "TIMESTAMP",
	schema.TypeDate:      "DATE",
	schema.TypeJSON:      "JSON",
}

// ColumnType returns the SQL type used for a field type.
func ColumnType(t schema.FieldType) (string, bool) {
	sqlType, ok := columnTypes[t]
	return sqlType, ok
}

// Options configures DDL generation.
type Options struct {
	Naming schema.Naming
}

// Statement is the CREATE TABLE of one entity.
type Statement struct {
	// Entity is the index of the entity in Schema.Entities.
	Entity int
	Table  string
	SQL    string
}

// Plan is the ordered DDL of a schema.
type Plan struct {
	Statements []Statement
}

// SQL joins the statements with blank lines.
func (p *Plan) SQL() string {
	parts := make([]string, len(p.Statements))
	for i, st := range p.Statements {
		parts[i] = st.SQL
	}
	return strings.Join(parts, "\n\n")
}

// Order returns the entity indices in emission order.
func (p *Plan) Order() []int {
	order := make([]int, len(p.Statements))
	for i, st := range p.Statements {
		order[i] = st.Entity
	}
	return order
}

// Generate emits one CREATE TABLE per entity in dependency order, so every
// table is created after the tables its foreign keys reference. s must be a
// confirmed schema. A cycle of two or more entities fails with a
// circular_dependency *schema.GenerationError and no DDL.
func Generate(s *schema.Schema, opts Options) (*Plan, error) {
	order, err := BuildGraph(s).Order()
	if err != nil {
		return nil, err
	}
	plan := &Plan{Statements: make([]Statement, 0, len(order))}
	for _, idx := range order {
		e := &s.Entities[idx]
		stmt, err := createTable(s, e, opts.Naming)
		if err != nil {
			return nil, err
		}
		plan.Statements = append(plan.Statements, Statement{
			Entity: idx,
			Table:  opts.Naming.Table(e.Name),
			SQL:    stmt,
		})
	}
	return plan, nil
}

// GenerateSQL is Generate followed by Plan.SQL.
func GenerateSQL(s *schema.Schema, opts Options) (string, error) {
	plan, err := Generate(s, opts)
	if err != nil {
		return "", err
	}
	return plan.SQL(), nil
}

func createTable(s *schema.Schema, e *schema.Entity, naming schema.Naming) (string, error) {
	cols := s.Columns(e)
	defs := make([]string, len(cols))
	for i, c := range cols {
		def, err := columnDef(s, e, c, naming)
		if err != nil {
			return "", err
		}
		defs[i] = def
	}
	return fmt.Sprintf("CREATE TABLE %s (\n    %s\n);", naming.Table(e.Name), strings.Join(defs, ",\n    ")), nil
}

func columnDef(s *schema.Schema, e *schema.Entity, c schema.Column, naming schema.Naming) (string, error) {
	path := e.Name + "." + c.Name
	sqlType, ok := ColumnType(c.Type)
	if !ok {
		return "", schema.Generationf(schema.KindTypeMismatch, path, "no SQL type for %s field %s", c.Type, path)
	}
	parts := []string{naming.Column(c.Name), sqlType}
	switch {
	case c.Primary:
		parts = append(parts, "PRIMARY KEY")
	default:
		if c.Required {
			parts = append(parts, "NOT NULL")
		}
		if c.Unique {
			parts = append(parts, "UNIQUE")
		}
	}
	if c.Default != nil {
		def, err := defaultSQL(c, path)
		if err != nil {
			return "", err
		}
		parts = append(parts, "DEFAULT "+def)
	}
	if c.References != "" {
		target := s.Entity(c.References)
		if target == nil || target.PrimaryKey() == nil {
			return "", schema.Generationf(schema.KindUnknownEntity, path,
				"foreign key %s references %q, which has no primary key", path, c.References)
		}
		parts = append(parts, fmt.Sprintf("REFERENCES %s(%s)",
			naming.Table(target.Name), naming.Column(target.PrimaryKey().Name)))
	}
	return strings.Join(parts, " "), nil
}

// defaultSQL renders a column default. Literals come from the schema, never
// from a request, so they are inlined.
func defaultSQL(c schema.Column, path string) (string, error) {
	d := c.Default
	switch d.Kind {
	case schema.DefaultNow:
		if c.Type == schema.TypeDate {
			return "CURRENT_DATE", nil
		}
		return "CURRENT_TIMESTAMP", nil
	case schema.DefaultUUIDv4:
		return sqldsl.Paren{Expr: sqldsl.Call("gen_random_uuid")}.SQL(), nil
	case schema.DefaultLiteral:
		switch v := d.Value.(type) {
		case nil:
			return sqldsl.Null{}.SQL(), nil
		case bool:
			return sqldsl.Bool(v).SQL(), nil
		case json.Number:
			if _, err := v.Float64(); err != nil {
				return "", schema.Generationf(schema.KindTypeMismatch, path, "invalid numeric default %q", v)
			}
			return v.String(), nil
		case string:
			return sqldsl.Lit(v).SQL(), nil
		case int, int64, float64:
			return fmt.Sprint(v), nil
		}
		return "", schema.Generationf(schema.KindTypeMismatch, path, "unsupported default value %v", d.Value)
	}
	return "", schema.Generationf(schema.KindTypeMismatch, path, "unknown default kind %q", d.Kind)
}
