package sqldsl

import (
	"reflect"
	"testing"
)

func TestExpr_SQLAndArgs(t *testing.T) {
	name := Col{Table: "u", Column: "name"}
	age := Col{Column: "age"}

	tests := []struct {
		name string
		expr Expr
		sql  string
		args []any
	}{
		{"eq", Eq{Left: name, Right: Bind{Value: "Ann"}}, "u.name = ?", []any{"Ann"}},
		{"ne", Ne{Left: age, Right: Bind{Value: 3}}, "age <> ?", []any{3}},
		{"range", And(Gte{Left: age, Right: Bind{Value: 18}}, Lt{Left: age, Right: Bind{Value: 65}}), "(age >= ? AND age < ?)", []any{18, 65}},
		{"like", Like{Expr: name, Pattern: Bind{Value: "A%"}}, "u.name LIKE ?", []any{"A%"}},
		{"in", In{Expr: age, Values: BindAll([]any{1, 2, 3})}, "age IN (?, ?, ?)", []any{1, 2, 3}},
		{"empty in", In{Expr: age}, "FALSE", nil},
		{"empty not in", NotIn{Expr: age}, "TRUE", nil},
		{"or of and", Or(And(Eq{Left: age, Right: Bind{Value: 1}}, IsNull{Expr: name}), Gt{Left: age, Right: Bind{Value: 2}}), "((age = ? AND u.name IS NULL) OR age > ?)", []any{1, 2}},
		{"single and collapses", And(nil, IsNotNull{Expr: name}), "u.name IS NOT NULL", nil},
		{"empty and", And(), "TRUE", nil},
		{"not", Not(Lte{Left: age, Right: Bind{Value: 9}}), "NOT (age <= ?)", []any{9}},
		{"func", Call("lower", Bind{Value: "X"}), "lower(?)", []any{"X"}},
		{"alias", SelectAs(Col{Table: "o", Column: "total"}, "orders_total"), "o.total AS orders_total", nil},
		{"literal escaping", Lit("it's"), "'it''s'", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.SQL(); got != tt.sql {
				t.Errorf("SQL() = %q, want %q", got, tt.sql)
			}
			if got := tt.expr.Args(); !reflect.DeepEqual(got, tt.args) {
				t.Errorf("Args() = %#v, want %#v", got, tt.args)
			}
			if n := CountPlaceholders(tt.expr.SQL()); n != len(tt.args) {
				t.Errorf("placeholders = %d, args = %d", n, len(tt.args))
			}
		})
	}
}

func TestSelectStmt_SQL(t *testing.T) {
	u := TableAs("User", "u")
	o := TableAs(`"Order"`, "orders")
	stmt := SelectStmt{
		Distinct: true,
		Columns:  []Expr{Col{Table: "u", Column: "id"}, Col{Table: "orders", Column: "total"}},
		From:     u,
		Joins: []JoinClause{{
			Type:  "LEFT",
			Table: o,
			On:    Eq{Left: Col{Table: "orders", Column: "user_id"}, Right: Col{Table: "u", Column: "id"}},
		}},
		Where:   And(Gt{Left: Col{Table: "orders", Column: "total"}, Right: Bind{Value: 100}}, Eq{Left: Col{Table: "u", Column: "name"}, Right: Bind{Value: "Ann"}}),
		OrderBy: []OrderItem{{Expr: Col{Table: "u", Column: "id"}, Desc: true}},
		Limit:   10,
		Offset:  20,
	}

	want := `SELECT DISTINCT u.id, orders.total FROM User AS u LEFT JOIN "Order" AS orders ON orders.user_id = u.id ` +
		`WHERE orders.total > ? AND u.name = ? ORDER BY u.id DESC LIMIT 10 OFFSET 20`
	if got := stmt.SQL(); got != want {
		t.Errorf("SQL() =\n%s\nwant\n%s", got, want)
	}
	if got := stmt.Args(); !reflect.DeepEqual(got, []any{100, "Ann"}) {
		t.Errorf("Args() = %#v", got)
	}

	if got := (SelectStmt{From: TableRef{Name: "User"}}).SQL(); got != "SELECT * FROM User" {
		t.Errorf("minimal select = %q", got)
	}
}

func TestMutationStmts_SQL(t *testing.T) {
	tests := []struct {
		name string
		stmt Stmt
		sql  string
		args []any
	}{
		{
			name: "insert",
			stmt: InsertStmt{Table: "User", Columns: []string{"name", "age"}, Values: BindAll([]any{"Ann", 30})},
			sql:  "INSERT INTO User (name, age) VALUES (?, ?)",
			args: []any{"Ann", 30},
		},
		{
			name: "insert defaults returning",
			stmt: InsertStmt{Table: "User", Returning: []string{"*"}},
			sql:  "INSERT INTO User DEFAULT VALUES RETURNING *",
		},
		{
			name: "update",
			stmt: UpdateStmt{
				Table: "User",
				Set:   []Assignment{{Column: "name", Value: Bind{Value: "Bo"}}, {Column: "age", Value: Bind{Value: 31}}},
				Where: Eq{Left: Col{Column: "id"}, Right: Bind{Value: "x"}},
			},
			sql:  "UPDATE User SET name = ?, age = ? WHERE id = ?",
			args: []any{"Bo", 31, "x"},
		},
		{
			name: "delete",
			stmt: DeleteStmt{Table: `"Order"`, Where: In{Expr: Col{Column: "id"}, Values: BindAll([]any{1, 2})}, Returning: []string{"*"}},
			sql:  `DELETE FROM "Order" WHERE id IN (?, ?) RETURNING *`,
			args: []any{1, 2},
		},
		{
			name: "delete all",
			stmt: DeleteStmt{Table: "User"},
			sql:  "DELETE FROM User",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stmt.SQL(); got != tt.sql {
				t.Errorf("SQL() = %q, want %q", got, tt.sql)
			}
			if got := tt.stmt.Args(); !reflect.DeepEqual(got, tt.args) {
				t.Errorf("Args() = %#v, want %#v", got, tt.args)
			}
		})
	}
}

func TestCountPlaceholders(t *testing.T) {
	if n := CountPlaceholders(`SELECT '?' AS "a?", x FROM t WHERE y = ? AND z = ?`); n != 2 {
		t.Errorf("CountPlaceholders = %d, want 2", n)
	}
}

func TestSqlf(t *testing.T) {
	got := Sqlf(`
		CREATE TABLE %s (
		    %s
		);`, "User", "id UUID")
	want := "CREATE TABLE User (\n    id UUID\n);"
	if got != want {
		t.Errorf("Sqlf() = %q, want %q", got, want)
	}
}
