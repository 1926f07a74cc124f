// Package sqlgen compiles queries and mutations against a schema into
// parameterized SQL.
//
// # Overview
//
// The compilers take a confirmed schema.Schema plus one query.Query or
// query.Mutation and produce a GeneratedSQL: SQL text using "?" placeholders
// and the parameter values in the order the placeholders appear. Request
// values never reach the SQL text. They are always bound through
// sqldsl.Bind, so a value such as "'; DROP TABLE x; --" only ever appears in
// the parameter list.
//
// # Architecture
//
// Compilation runs in two passes over a scope rooted at the target entity:
//
//  1. Resolution: every relation path (joins, select, filters, order_by, in
//     that order) is walked and turned into LEFT JOIN clauses. Aliases are
//     the dotted path with "." replaced by "_".
//  2. Rendering: projection, WHERE and ORDER BY are built as sqldsl
//     expressions. Once any join exists, every column is qualified.
//
// Mutations use the same scope without joins. Unknown entities, fields and
// relations are reported as *schema.GenerationError with a suggestion when
// a close name exists.
//
// # SQL DSL
//
// The sqldsl subpackage provides the typed statement and expression nodes
// rendered here. Example - a filtered select:
//
//	stmt := sqldsl.SelectStmt{
//	    From:  sqldsl.TableRef{Name: "User"},
//	    Where: sqldsl.Eq{Left: sqldsl.Col{Column: "name"}, Right: sqldsl.Bind{Value: "Ann"}},
//	}
//	stmt.SQL()  // SELECT * FROM User WHERE name = ?
//	stmt.Args() // ["Ann"]
package sqlgen
