package sqldsl

import (
	"strings"
)

// Comparison operators

// binarySQL renders "left op right".
func binarySQL(left Expr, op string, right Expr) string {
	return left.SQL() + " " + op + " " + right.SQL()
}

// Eq represents an equality comparison (=).
type Eq struct {
	Left  Expr
	Right Expr
}

func (e Eq) SQL() string { return binarySQL(e.Left, "=", e.Right) }
func (e Eq) Args() []any { return collectArgs(e.Left, e.Right) }

// Ne represents a not-equal comparison (<>).
type Ne struct {
	Left  Expr
	Right Expr
}

func (n Ne) SQL() string { return binarySQL(n.Left, "<>", n.Right) }
func (n Ne) Args() []any { return collectArgs(n.Left, n.Right) }

// Lt represents a less-than comparison (<).
type Lt struct {
	Left  Expr
	Right Expr
}

func (l Lt) SQL() string { return binarySQL(l.Left, "<", l.Right) }
func (l Lt) Args() []any { return collectArgs(l.Left, l.Right) }

// Gt represents a greater-than comparison (>).
type Gt struct {
	Left  Expr
	Right Expr
}

func (g Gt) SQL() string { return binarySQL(g.Left, ">", g.Right) }
func (g Gt) Args() []any { return collectArgs(g.Left, g.Right) }

// Lte represents a less-than-or-equal comparison (<=).
type Lte struct {
	Left  Expr
	Right Expr
}

func (l Lte) SQL() string { return binarySQL(l.Left, "<=", l.Right) }
func (l Lte) Args() []any { return collectArgs(l.Left, l.Right) }

// Gte represents a greater-than-or-equal comparison (>=).
type Gte struct {
	Left  Expr
	Right Expr
}

func (g Gte) SQL() string { return binarySQL(g.Left, ">=", g.Right) }
func (g Gte) Args() []any { return collectArgs(g.Left, g.Right) }

// Like represents a pattern match (LIKE).
type Like struct {
	Expr    Expr
	Pattern Expr
}

func (l Like) SQL() string { return binarySQL(l.Expr, "LIKE", l.Pattern) }
func (l Like) Args() []any { return collectArgs(l.Expr, l.Pattern) }

// In represents an IN list. An empty list renders FALSE, since IN () is not
// valid SQL and matches nothing.
type In struct {
	Expr   Expr
	Values []Expr
}

func (i In) SQL() string {
	if len(i.Values) == 0 {
		return "FALSE"
	}
	return i.Expr.SQL() + " IN (" + joinSQL(i.Values, ", ") + ")"
}

func (i In) Args() []any {
	if len(i.Values) == 0 {
		return nil
	}
	return append(i.Expr.Args(), collectArgs(i.Values...)...)
}

// NotIn represents a NOT IN list. An empty list renders TRUE.
type NotIn struct {
	Expr   Expr
	Values []Expr
}

func (n NotIn) SQL() string {
	if len(n.Values) == 0 {
		return "TRUE"
	}
	return n.Expr.SQL() + " NOT IN (" + joinSQL(n.Values, ", ") + ")"
}

func (n NotIn) Args() []any {
	if len(n.Values) == 0 {
		return nil
	}
	return append(n.Expr.Args(), collectArgs(n.Values...)...)
}

// BindAll wraps each value in a Bind.
func BindAll(values []any) []Expr {
	exprs := make([]Expr, len(values))
	for i, v := range values {
		exprs[i] = Bind{Value: v}
	}
	return exprs
}

// Logical operators

// filterNilExprs removes nil expressions from the slice.
func filterNilExprs(exprs []Expr) []Expr {
	filtered := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// joinExprs renders expressions joined by a separator, wrapped in parentheses if more than one.
func joinExprs(exprs []Expr, sep, emptyVal string) string {
	switch len(exprs) {
	case 0:
		return emptyVal
	case 1:
		return exprs[0].SQL()
	default:
		parts := make([]string, len(exprs))
		for i, e := range exprs {
			parts[i] = e.SQL()
		}
		return "(" + strings.Join(parts, sep) + ")"
	}
}

// AndExpr represents a logical AND of multiple expressions.
type AndExpr struct {
	Exprs []Expr
}

func (a AndExpr) SQL() string { return joinExprs(a.Exprs, " AND ", "TRUE") }
func (a AndExpr) Args() []any { return collectArgs(a.Exprs...) }

// And creates an AND expression from multiple expressions.
func And(exprs ...Expr) AndExpr {
	return AndExpr{Exprs: filterNilExprs(exprs)}
}

// OrExpr represents a logical OR of multiple expressions.
type OrExpr struct {
	Exprs []Expr
}

func (o OrExpr) SQL() string { return joinExprs(o.Exprs, " OR ", "FALSE") }
func (o OrExpr) Args() []any { return collectArgs(o.Exprs...) }

// Or creates an OR expression from multiple expressions.
func Or(exprs ...Expr) OrExpr {
	return OrExpr{Exprs: filterNilExprs(exprs)}
}

// NotExpr represents a logical NOT of an expression.
type NotExpr struct {
	Expr Expr
}

func (n NotExpr) SQL() string { return "NOT (" + n.Expr.SQL() + ")" }
func (n NotExpr) Args() []any { return n.Expr.Args() }

// Not creates a NOT expression.
func Not(expr Expr) NotExpr { return NotExpr{Expr: expr} }

// IsNull represents IS NULL check.
type IsNull struct {
	Expr Expr
}

func (i IsNull) SQL() string { return i.Expr.SQL() + " IS NULL" }
func (i IsNull) Args() []any { return i.Expr.Args() }

// IsNotNull represents IS NOT NULL check.
type IsNotNull struct {
	Expr Expr
}

func (i IsNotNull) SQL() string { return i.Expr.SQL() + " IS NOT NULL" }
func (i IsNotNull) Args() []any { return i.Expr.Args() }
