package sqlgen

import (
	"github.com/dperalta86/chameleondb/internal/sqlgen/sqldsl"
	"github.com/dperalta86/chameleondb/pkg/query"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// registerFilters joins every relation path referenced by filters,
// depth-first in the order the filters appear.
func (sc *scope) registerFilters(filters []query.Filter) error {
	for _, f := range filters {
		var err error
		if f.IsGroup() {
			err = sc.registerFilters(append(append([]query.Filter(nil), f.And...), f.Or...))
		} else {
			err = sc.register(f.Field, false)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// filters compiles a list of filters combined with AND. It returns nil for
// an empty list.
func (sc *scope) filters(filters []query.Filter) (sqldsl.Expr, error) {
	if len(filters) == 0 {
		return nil, nil
	}
	exprs := make([]sqldsl.Expr, 0, len(filters))
	for _, f := range filters {
		e, err := sc.filter(f)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return sqldsl.And(exprs...), nil
}

func (sc *scope) filter(f query.Filter) (sqldsl.Expr, error) {
	switch {
	case f.And != nil:
		return sc.group(f.And, func(exprs ...sqldsl.Expr) sqldsl.Expr { return sqldsl.And(exprs...) })
	case f.Or != nil:
		return sc.group(f.Or, func(exprs ...sqldsl.Expr) sqldsl.Expr { return sqldsl.Or(exprs...) })
	}

	col, c, _, err := sc.column(f.Field)
	if err != nil {
		return nil, err
	}
	path := sc.root.entity.Name + "." + f.Field

	switch f.Op {
	case query.OpIsNull:
		return sqldsl.IsNull{Expr: col}, nil
	case query.OpIsNotNull:
		return sqldsl.IsNotNull{Expr: col}, nil
	}

	if f.Placeholder == "" && f.Value == nil {
		switch f.Op {
		case query.OpEq:
			return sqldsl.IsNull{Expr: col}, nil
		case query.OpNeq:
			return sqldsl.IsNotNull{Expr: col}, nil
		}
		return nil, schema.Generationf(schema.KindTypeMismatch, path,
			"operator %s on %s needs a non-null value", f.Op, f.Field)
	}

	if err := checkOperator(f.Op, c, path); err != nil {
		return nil, err
	}

	if f.Op == query.OpIn {
		return sc.in(f, col, c, path)
	}

	right, err := operand(f, c, path)
	if err != nil {
		return nil, err
	}
	switch f.Op {
	case query.OpEq:
		return sqldsl.Eq{Left: col, Right: right}, nil
	case query.OpNeq:
		return sqldsl.Ne{Left: col, Right: right}, nil
	case query.OpGt:
		return sqldsl.Gt{Left: col, Right: right}, nil
	case query.OpGte:
		return sqldsl.Gte{Left: col, Right: right}, nil
	case query.OpLt:
		return sqldsl.Lt{Left: col, Right: right}, nil
	case query.OpLte:
		return sqldsl.Lte{Left: col, Right: right}, nil
	case query.OpLike:
		return sqldsl.Like{Expr: col, Pattern: right}, nil
	}
	return nil, schema.Generationf(schema.KindUnsupportedOperator, path, "unsupported operator %q", f.Op)
}

func (sc *scope) group(children []query.Filter, combine func(...sqldsl.Expr) sqldsl.Expr) (sqldsl.Expr, error) {
	exprs := make([]sqldsl.Expr, 0, len(children))
	for _, child := range children {
		e, err := sc.filter(child)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return combine(exprs...), nil
}

// in compiles an IN filter. A placeholder stands for the whole list and
// renders as IN (?).
func (sc *scope) in(f query.Filter, col sqldsl.Col, c schema.Column, path string) (sqldsl.Expr, error) {
	if f.Placeholder != "" {
		return sqldsl.In{Expr: col, Values: []sqldsl.Expr{sqldsl.Bind{Value: query.Placeholder{Name: f.Placeholder}}}}, nil
	}
	items, ok := f.Value.([]any)
	if !ok {
		return nil, schema.Generationf(schema.KindTypeMismatch, path, "operator in on %s needs a list", f.Field)
	}
	values := make([]any, len(items))
	for i, item := range items {
		if item == nil {
			return nil, schema.Generationf(schema.KindTypeMismatch, path,
				"operator in on %s: item %d is null", f.Field, i)
		}
		v, err := bindValue(c, item, path)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return sqldsl.In{Expr: col, Values: sqldsl.BindAll(values)}, nil
}

// checkOperator rejects operators that make no sense for the column type.
func checkOperator(op query.Op, c schema.Column, path string) error {
	switch op {
	case query.OpLike:
		if c.Type != schema.TypeString {
			return schema.Generationf(schema.KindUnsupportedOperator, path,
				"operator like needs a string field, %s is %s", c.Name, c.Type)
		}
	case query.OpGt, query.OpGte, query.OpLt, query.OpLte:
		if c.Type == schema.TypeBoolean || c.Type == schema.TypeJSON {
			return schema.Generationf(schema.KindUnsupportedOperator, path,
				"operator %s cannot compare %s field %s", op, c.Type, c.Name)
		}
	}
	return nil
}

// operand binds the right-hand side of a comparison.
func operand(f query.Filter, c schema.Column, path string) (sqldsl.Expr, error) {
	if f.Placeholder != "" {
		return sqldsl.Bind{Value: query.Placeholder{Name: f.Placeholder}}, nil
	}
	if f.Op == query.OpLike {
		if _, ok := f.Value.(string); !ok {
			return nil, schema.Generationf(schema.KindTypeMismatch, path, "like pattern for %s must be a string", f.Field)
		}
		return sqldsl.Bind{Value: f.Value}, nil
	}
	v, err := bindValue(c, f.Value, path)
	if err != nil {
		return nil, err
	}
	return sqldsl.Bind{Value: v}, nil
}

// bindValue type-checks a request value against a column and converts it to
// its parameter form.
func bindValue(c schema.Column, v any, path string) (any, error) {
	if err := schema.CheckValue(c.Type, v); err != nil {
		return nil, schema.Generationf(schema.KindTypeMismatch, path, "%s: %v", c.Name, err)
	}
	return schema.NormalizeValue(c.Type, v), nil
}
