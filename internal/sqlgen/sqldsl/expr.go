package sqldsl

import (
	"strings"
)

// Expr is the interface that all SQL expression types implement.
//
// SQL renders the expression; Args returns the values bound to the
// placeholders it renders, in textual order. len(Args()) always equals the
// number of "?" placeholders in SQL().
type Expr interface {
	SQL() string
	Args() []any
}

// Placeholder is the positional marker rendered for bound values.
const Placeholder = "?"

// Bind is a bound parameter. It renders as a placeholder and contributes
// Value to the argument list. User-supplied values must always be passed
// through Bind.
type Bind struct {
	Value any
}

// SQL renders the placeholder.
func (b Bind) SQL() string { return Placeholder }

// Args returns the bound value.
func (b Bind) Args() []any { return []any{b.Value} }

// Col represents a column reference (e.g., o.total). Table and Column are
// expected to be quoted identifiers already.
type Col struct {
	Table  string
	Column string
}

// SQL renders the column reference.
func (c Col) SQL() string {
	if c.Table == "" {
		return c.Column
	}
	return c.Table + "." + c.Column
}

// Args returns nil.
func (Col) Args() []any { return nil }

// Lit represents a literal string value (auto-quoted with single quotes).
// It is only meant for schema-defined constants such as column defaults,
// never for request values.
type Lit string

// SQL renders the literal with single quotes.
func (l Lit) SQL() string {
	// Escape single quotes by doubling them
	escaped := strings.ReplaceAll(string(l), "'", "''")
	return "'" + escaped + "'"
}

// Args returns nil.
func (Lit) Args() []any { return nil }

// Bool represents a boolean literal.
type Bool bool

// SQL renders the boolean.
func (b Bool) SQL() string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// Args returns nil.
func (Bool) Args() []any { return nil }

// Null represents SQL NULL.
type Null struct{}

// SQL renders NULL.
func (Null) SQL() string { return "NULL" }

// Args returns nil.
func (Null) Args() []any { return nil }

// Func represents a SQL function call.
type Func struct {
	Name   string
	Params []Expr
}

// Call creates a function call expression.
func Call(name string, args ...Expr) Func {
	return Func{Name: name, Params: args}
}

// SQL renders the function call.
func (f Func) SQL() string {
	return f.Name + "(" + joinSQL(f.Params, ", ") + ")"
}

// Args returns the arguments bound inside the call.
func (f Func) Args() []any { return collectArgs(f.Params...) }

// Alias wraps an expression with an alias (expr AS alias).
type Alias struct {
	Expr Expr
	Name string
}

// SQL renders the aliased expression.
func (a Alias) SQL() string { return a.Expr.SQL() + " AS " + a.Name }

// Args returns the arguments of the wrapped expression.
func (a Alias) Args() []any { return a.Expr.Args() }

// SelectAs creates an aliased column expression (expr AS alias).
// Shorthand for Alias{Expr: expr, Name: alias}.
func SelectAs(expr Expr, alias string) Alias {
	return Alias{Expr: expr, Name: alias}
}

// Paren wraps an expression in parentheses.
type Paren struct {
	Expr Expr
}

// SQL renders the parenthesized expression.
func (p Paren) SQL() string { return "(" + p.Expr.SQL() + ")" }

// Args returns the arguments of the wrapped expression.
func (p Paren) Args() []any { return p.Expr.Args() }

// joinSQL renders expressions joined by sep.
func joinSQL(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.SQL()
	}
	return strings.Join(parts, sep)
}

// collectArgs concatenates the arguments of exprs in order. Nil entries are
// skipped.
func collectArgs(exprs ...Expr) []any {
	var args []any
	for _, e := range exprs {
		if e == nil {
			continue
		}
		args = append(args, e.Args()...)
	}
	return args
}
