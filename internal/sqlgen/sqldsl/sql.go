package sqldsl

import (
	"fmt"
	"strings"
)

// Stmt is a complete SQL statement with its bound arguments.
type Stmt interface {
	SQL() string
	Args() []any
}

// Sqlf formats SQL with automatic dedenting and blank line removal.
// The SQL shape is visible in the format string.
func Sqlf(format string, args ...any) string {
	s := fmt.Sprintf(format, args...)
	lines := strings.Split(s, "\n")

	// Find minimum indentation (ignoring empty lines)
	minIndent := 1000
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if indent < minIndent {
			minIndent = indent
		}
	}

	// Remove common indent and empty lines
	var result []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) >= minIndent {
			result = append(result, line[minIndent:])
		} else {
			result = append(result, strings.TrimLeft(line, " \t"))
		}
	}

	return strings.Join(result, "\n")
}

// Optf returns formatted string if condition is true, empty string otherwise.
// Useful for optional SQL clauses.
func Optf(cond bool, format string, args ...any) string {
	if !cond {
		return ""
	}
	return fmt.Sprintf(format, args...)
}

// clauses joins the non-empty clauses with single spaces.
func clauses(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// JoinClause represents a SQL JOIN clause.
type JoinClause struct {
	Type  string // "INNER", "LEFT", etc.
	Table TableExpr
	On    Expr
}

// SQL renders the JOIN clause.
func (j JoinClause) SQL() string {
	joinKeyword := j.Type + " JOIN"
	if j.Type == "" {
		joinKeyword = "JOIN"
	}
	if j.On == nil {
		return joinKeyword + " " + j.Table.TableSQL()
	}
	return joinKeyword + " " + j.Table.TableSQL() + " ON " + j.On.SQL()
}

// Args returns the arguments bound in the ON condition.
func (j JoinClause) Args() []any { return collectArgs(j.On) }

// OrderItem is one ORDER BY term.
type OrderItem struct {
	Expr Expr
	Desc bool
}

// SQL renders the ordering term.
func (o OrderItem) SQL() string {
	if o.Desc {
		return o.Expr.SQL() + " DESC"
	}
	return o.Expr.SQL() + " ASC"
}

// SelectStmt represents a SELECT query.
type SelectStmt struct {
	Distinct bool
	Columns  []Expr // empty renders *
	From     TableExpr
	Joins    []JoinClause
	Where    Expr
	OrderBy  []OrderItem
	Limit    int // 0 means no LIMIT
	Offset   int // 0 means no OFFSET
}

// SQL renders the SELECT statement on a single line.
func (s SelectStmt) SQL() string {
	return clauses(
		"SELECT",
		Optf(s.Distinct, "DISTINCT"),
		s.columnsSQL(),
		s.fromSQL(),
		s.joinsSQL(),
		whereSQL(s.Where),
		s.orderSQL(),
		Optf(s.Limit > 0, "LIMIT %d", s.Limit),
		Optf(s.Offset > 0, "OFFSET %d", s.Offset),
	)
}

// Args returns the bound arguments in textual order.
func (s SelectStmt) Args() []any {
	args := collectArgs(s.Columns...)
	for _, j := range s.Joins {
		args = append(args, j.Args()...)
	}
	args = append(args, collectArgs(s.Where)...)
	for _, o := range s.OrderBy {
		args = append(args, o.Expr.Args()...)
	}
	return args
}

func (s SelectStmt) columnsSQL() string {
	if len(s.Columns) == 0 {
		return "*"
	}
	return joinSQL(s.Columns, ", ")
}

func (s SelectStmt) fromSQL() string {
	if s.From == nil {
		return ""
	}
	return "FROM " + s.From.TableSQL()
}

func (s SelectStmt) joinsSQL() string {
	if len(s.Joins) == 0 {
		return ""
	}
	parts := make([]string, len(s.Joins))
	for i, j := range s.Joins {
		parts[i] = j.SQL()
	}
	return strings.Join(parts, " ")
}

func (s SelectStmt) orderSQL() string {
	if len(s.OrderBy) == 0 {
		return ""
	}
	parts := make([]string, len(s.OrderBy))
	for i, o := range s.OrderBy {
		parts[i] = o.SQL()
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

// whereSQL renders the WHERE clause. A top-level AND is not parenthesized.
func whereSQL(where Expr) string {
	if where == nil {
		return ""
	}
	if and, ok := where.(AndExpr); ok && len(and.Exprs) > 1 {
		return "WHERE " + joinSQL(and.Exprs, " AND ")
	}
	return "WHERE " + where.SQL()
}

func returningSQL(cols []string) string {
	if len(cols) == 0 {
		return ""
	}
	return "RETURNING " + strings.Join(cols, ", ")
}

// InsertStmt represents a single-row INSERT.
type InsertStmt struct {
	Table     string
	Columns   []string
	Values    []Expr
	Returning []string
}

// SQL renders the INSERT statement. With no columns it inserts a row of
// defaults.
func (s InsertStmt) SQL() string {
	if len(s.Columns) == 0 {
		return clauses("INSERT INTO", s.Table, "DEFAULT VALUES", returningSQL(s.Returning))
	}
	return clauses(
		"INSERT INTO",
		s.Table,
		"("+strings.Join(s.Columns, ", ")+")",
		"VALUES ("+joinSQL(s.Values, ", ")+")",
		returningSQL(s.Returning),
	)
}

// Args returns the bound values in column order.
func (s InsertStmt) Args() []any { return collectArgs(s.Values...) }

// Assignment is one SET term of an UPDATE.
type Assignment struct {
	Column string
	Value  Expr
}

// UpdateStmt represents an UPDATE.
type UpdateStmt struct {
	Table     string
	Set       []Assignment
	Where     Expr
	Returning []string
}

// SQL renders the UPDATE statement.
func (s UpdateStmt) SQL() string {
	sets := make([]string, len(s.Set))
	for i, a := range s.Set {
		sets[i] = a.Column + " = " + a.Value.SQL()
	}
	return clauses(
		"UPDATE",
		s.Table,
		"SET "+strings.Join(sets, ", "),
		whereSQL(s.Where),
		returningSQL(s.Returning),
	)
}

// Args returns the SET values followed by the WHERE arguments.
func (s UpdateStmt) Args() []any {
	var args []any
	for _, a := range s.Set {
		args = append(args, a.Value.Args()...)
	}
	return append(args, collectArgs(s.Where)...)
}

// DeleteStmt represents a DELETE.
type DeleteStmt struct {
	Table     string
	Where     Expr
	Returning []string
}

// SQL renders the DELETE statement.
func (s DeleteStmt) SQL() string {
	return clauses("DELETE FROM", s.Table, whereSQL(s.Where), returningSQL(s.Returning))
}

// Args returns the WHERE arguments.
func (s DeleteStmt) Args() []any { return collectArgs(s.Where) }

// CountPlaceholders counts "?" markers outside single-quoted literals and
// double-quoted identifiers.
func CountPlaceholders(sql string) int {
	n := 0
	var quote rune
	for _, r := range sql {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '?':
			n++
		}
	}
	return n
}
