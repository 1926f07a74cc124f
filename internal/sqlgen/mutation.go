package sqlgen

import (
	"slices"
	"strings"

	"github.com/dperalta86/chameleondb/internal/sqlgen/sqldsl"
	"github.com/dperalta86/chameleondb/pkg/query"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// CompileMutation compiles m into an INSERT, UPDATE or DELETE against s.
//
// Columns are emitted in declaration order restricted to the supplied
// fields. An insert must supply every required field without a default.
// An update or delete must carry at least one condition unless AllRows is
// set.
func CompileMutation(s *schema.Schema, m *query.Mutation, opts Options) (*GeneratedSQL, error) {
	root, err := lookupEntity(s, m.Entity)
	if err != nil {
		return nil, err
	}
	sc := newScope(s, root, opts, false)
	cols := s.Columns(root)

	if err := checkNames(sc, m.Fields); err != nil {
		return nil, err
	}
	if err := checkNames(sc, m.Match); err != nil {
		return nil, err
	}

	var stmt sqldsl.Stmt
	switch m.Type {
	case query.Insert:
		stmt, err = sc.insert(m, cols)
	case query.Update:
		stmt, err = sc.update(m, cols)
	case query.Delete:
		stmt, err = sc.delete(m, cols)
	default:
		err = schema.Generationf(schema.KindInvalidMutation, m.Entity, "unknown mutation type %q", m.Type)
	}
	if err != nil {
		return nil, err
	}
	return render(stmt)
}

// checkNames reports the first unknown name in values, in sorted order so
// the error does not depend on map iteration.
func checkNames(sc *scope, values map[string]any) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if _, _, _, err := sc.column(name); err != nil {
			return err
		}
	}
	return nil
}

func (sc *scope) insert(m *query.Mutation, cols []schema.Column) (sqldsl.Stmt, error) {
	if m.HasConditions() {
		return nil, schema.Generationf(schema.KindInvalidMutation, m.Entity, "insert into %s does not take filters", m.Entity)
	}

	var missing []string
	for _, c := range cols {
		if _, ok := m.Fields[c.Name]; !ok && c.Required && c.Default == nil {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return nil, schema.Generationf(schema.KindMissingRequiredField, m.Entity+"."+missing[0],
			"insert into %s is missing required field(s): %s", m.Entity, strings.Join(missing, ", "))
	}

	stmt := sqldsl.InsertStmt{Table: sc.root.ref, Returning: returning(m)}
	for _, c := range cols {
		v, ok := m.Fields[c.Name]
		if !ok {
			continue
		}
		value, err := assignValue(m.Entity, c, v)
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, sc.naming.Column(c.Name))
		stmt.Values = append(stmt.Values, value)
	}
	return stmt, nil
}

func (sc *scope) update(m *query.Mutation, cols []schema.Column) (sqldsl.Stmt, error) {
	if len(m.Fields) == 0 {
		return nil, schema.Generationf(schema.KindEmptyMutation, m.Entity, "update of %s assigns no fields", m.Entity)
	}
	stmt := sqldsl.UpdateStmt{Table: sc.root.ref, Returning: returning(m)}
	for _, c := range cols {
		v, ok := m.Fields[c.Name]
		if !ok {
			continue
		}
		if c.Primary {
			return nil, schema.Generationf(schema.KindImmutableField, m.Entity+"."+c.Name,
				"primary key %s.%s cannot be updated", m.Entity, c.Name)
		}
		value, err := assignValue(m.Entity, c, v)
		if err != nil {
			return nil, err
		}
		stmt.Set = append(stmt.Set, sqldsl.Assignment{Column: sc.naming.Column(c.Name), Value: value})
	}
	where, err := sc.conditions(m, cols)
	if err != nil {
		return nil, err
	}
	stmt.Where = where
	return stmt, nil
}

func (sc *scope) delete(m *query.Mutation, cols []schema.Column) (sqldsl.Stmt, error) {
	if len(m.Fields) > 0 {
		return nil, schema.Generationf(schema.KindInvalidMutation, m.Entity, "delete from %s does not take fields", m.Entity)
	}
	where, err := sc.conditions(m, cols)
	if err != nil {
		return nil, err
	}
	return sqldsl.DeleteStmt{Table: sc.root.ref, Where: where, Returning: returning(m)}, nil
}

// conditions builds the WHERE of an update or delete: object-form matches
// in column declaration order, then array-form filters, all ANDed.
func (sc *scope) conditions(m *query.Mutation, cols []schema.Column) (sqldsl.Expr, error) {
	if !m.HasConditions() {
		if m.AllRows {
			return nil, nil
		}
		return nil, schema.Generationf(schema.KindUnsafeMutation, m.Entity,
			"%s of %s without filters affects every row; set all_rows to confirm", m.Type, m.Entity)
	}

	filters := make([]query.Filter, 0, len(m.Match)+len(m.Filters))
	for _, c := range cols {
		if v, ok := m.Match[c.Name]; ok {
			filters = append(filters, query.Eq(c.Name, v))
		}
	}
	filters = append(filters, m.Filters...)
	if err := sc.registerFilters(filters); err != nil {
		return nil, err
	}
	return sc.filters(filters)
}

// assignValue binds a value for an INSERT or SET column.
func assignValue(entity string, c schema.Column, v any) (sqldsl.Expr, error) {
	path := entity + "." + c.Name
	if v == nil {
		if c.Required {
			return nil, schema.Generationf(schema.KindNotNullViolation, path, "%s.%s is required and cannot be null", entity, c.Name)
		}
		return sqldsl.Bind{Value: nil}, nil
	}
	if p, ok := v.(query.Placeholder); ok {
		return sqldsl.Bind{Value: p}, nil
	}
	value, err := bindValue(c, v, path)
	if err != nil {
		return nil, err
	}
	return sqldsl.Bind{Value: value}, nil
}

func returning(m *query.Mutation) []string {
	if m.Returning {
		return []string{"*"}
	}
	return nil
}
