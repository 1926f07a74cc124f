package sqlgen

import (
	"strings"

	"github.com/dperalta86/chameleondb/internal/sqlgen/sqldsl"
	"github.com/dperalta86/chameleondb/pkg/query"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// CompileQuery compiles q into a SELECT statement against s.
//
// Relation paths in joins, select, filters and order_by become LEFT JOINs,
// emitted in the order the paths are first referenced. Once a join is
// present every column is qualified. Every request value is bound as a
// parameter.
func CompileQuery(s *schema.Schema, q *query.Query, opts Options) (*GeneratedSQL, error) {
	root, err := lookupEntity(s, q.Entity)
	if err != nil {
		return nil, err
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, schema.Generationf(schema.KindInvalidPagination, q.Entity,
			"limit and offset must not be negative (limit %d, offset %d)", q.Limit, q.Offset)
	}

	sc := newScope(s, root, opts, true)
	if err := sc.registerQuery(q); err != nil {
		return nil, err
	}

	columns, err := sc.projection(q.Select)
	if err != nil {
		return nil, err
	}
	where, err := sc.filters(q.Filters)
	if err != nil {
		return nil, err
	}
	order := make([]sqldsl.OrderItem, 0, len(q.OrderBy))
	for _, o := range q.OrderBy {
		col, _, _, err := sc.column(o.Field)
		if err != nil {
			return nil, err
		}
		order = append(order, sqldsl.OrderItem{Expr: col, Desc: o.Desc})
	}

	return render(sqldsl.SelectStmt{
		Distinct: q.Distinct,
		Columns:  columns,
		From:     sqldsl.TableRef{Name: sc.root.ref},
		Joins:    sc.joins,
		Where:    where,
		OrderBy:  order,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
}

// registerQuery resolves every relation path of q in first-reference
// order: explicit joins, then select, filters and order_by.
func (sc *scope) registerQuery(q *query.Query) error {
	for _, j := range q.Joins {
		rels := strings.Split(j, ".")
		if _, err := sc.resolve(rels); err != nil {
			return err
		}
	}
	for _, sel := range q.Select {
		if err := sc.register(sel, true); err != nil {
			return err
		}
	}
	if err := sc.registerFilters(q.Filters); err != nil {
		return err
	}
	for _, o := range q.OrderBy {
		if err := sc.register(o.Field, false); err != nil {
			return err
		}
	}
	return nil
}

// projection builds the select list. An empty selection projects every
// column of the root entity. Columns of joined entities are aliased with
// the relation path (orders.total AS orders_total); naming a relation
// projects all of its columns that way.
func (sc *scope) projection(selected []string) ([]sqldsl.Expr, error) {
	if len(selected) == 0 {
		return sc.allColumns(&sc.root), nil
	}
	var exprs []sqldsl.Expr
	for _, path := range selected {
		if src, ok := sc.paths[path]; ok && !sc.isColumn(path) {
			exprs = append(exprs, sc.allColumns(src)...)
			continue
		}
		col, c, src, err := sc.column(path)
		if err != nil {
			return nil, err
		}
		if src == &sc.root {
			exprs = append(exprs, col)
			continue
		}
		exprs = append(exprs, sqldsl.SelectAs(col, sc.projectedName(src, c.Name)))
	}
	return exprs, nil
}

// isColumn reports whether the last segment of path names a column rather
// than a relation.
func (sc *scope) isColumn(path string) bool {
	rels, field := query.SplitPath(path)
	parent, err := sc.resolve(rels)
	if err != nil {
		return false
	}
	_, ok := sc.schema.Column(parent.entity, field)
	return ok
}

func (sc *scope) allColumns(src *source) []sqldsl.Expr {
	cols := sc.schema.Columns(src.entity)
	exprs := make([]sqldsl.Expr, len(cols))
	for i, c := range cols {
		col := sc.col(src, c.Name)
		if src == &sc.root {
			exprs[i] = col
			continue
		}
		exprs[i] = sqldsl.SelectAs(col, sc.projectedName(src, c.Name))
	}
	return exprs
}

func (sc *scope) projectedName(src *source, column string) string {
	return schema.QuoteIdent(src.prefix + "_" + sc.naming.ColumnName(column))
}

func lookupEntity(s *schema.Schema, name string) (*schema.Entity, error) {
	e := s.Entity(name)
	if e == nil {
		err := schema.Generationf(schema.KindUnknownEntity, name, "unknown entity %q", name)
		err.Suggestion = schema.Suggest(name, s.EntityNames())
		return nil, err
	}
	return e, nil
}
