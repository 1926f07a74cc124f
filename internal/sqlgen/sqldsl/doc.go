// Package sqldsl provides a typed DSL for building parameterized SQL.
//
// # Overview
//
// Rather than constructing SQL strings through concatenation or templating,
// this package provides typed building blocks that compose together to form
// complete statements. Values supplied by callers are never rendered into the
// SQL text: they are wrapped in Bind, which renders a "?" placeholder and
// contributes the value to the argument list.
//
// # Core Interfaces
//
// All DSL types implement one of two interfaces:
//
//   - Expr: SQL expressions (columns, literals, operators, function calls)
//   - Stmt: complete statements (SELECT, INSERT, UPDATE, DELETE)
//
// Both define SQL() for the text and Args() for the bound values. Args are
// always returned in the order their placeholders appear in the text, so
// len(Args()) equals the number of placeholders.
//
// # Expression Types
//
// Basic expressions:
//
//	Col{Table: "o", Column: "total"}  // Column reference: o.total
//	Bind{Value: 42}                   // Placeholder: ? (args: [42])
//	Lit("pending")                    // Schema constant: 'pending'
//	Bool(true)                        // Boolean literal: TRUE
//	Null{}                            // NULL literal
//
// Operators:
//
//	Eq{Left: col, Right: Bind{Value: v}}   // col = ?
//	In{Expr: col, Values: BindAll(vs)}     // col IN (?, ?)
//	And(expr1, expr2, expr3)               // (expr1 AND expr2 AND expr3)
//	Or(expr1, expr2)                       // (expr1 OR expr2)
//	Not(expr)                              // NOT (expr)
//
// # Statements
//
//	stmt := SelectStmt{
//	    Columns: []Expr{Col{Table: "u", Column: "id"}},
//	    From:    TableAs("User", "u"),
//	    Where:   Eq{Left: Col{Table: "u", Column: "email"}, Right: Bind{Value: email}},
//	    Limit:   1,
//	}
//	stmt.SQL()  // SELECT u.id FROM User AS u WHERE u.email = ? LIMIT 1
//	stmt.Args() // [email]
//
// Identifiers handed to the DSL (table names, column names, aliases) must
// already be quoted by the caller; the DSL does not inspect them.
package sqldsl
