package sqlgen

import (
	"fmt"

	"github.com/dperalta86/chameleondb/internal/sqlgen/sqldsl"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// GeneratedSQL is a compiled statement: SQL text with positional "?"
// placeholders and the values bound to them, in emission order.
//
// A parameter is either a JSON-compatible value or a query.Placeholder the
// caller must bind before executing the statement.
type GeneratedSQL struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// Options configures compilation.
type Options struct {
	// Naming maps entity and field names to SQL identifiers. The zero value
	// uses names unchanged.
	Naming schema.Naming
}

// render turns a statement into GeneratedSQL, checking that every
// placeholder has exactly one parameter.
func render(stmt sqldsl.Stmt) (*GeneratedSQL, error) {
	sql := stmt.SQL()
	params := stmt.Args()
	if params == nil {
		params = []any{}
	}
	if n := sqldsl.CountPlaceholders(sql); n != len(params) {
		return nil, &schema.InternalError{
			Message: fmt.Sprintf("rendered %d placeholders for %d parameters", n, len(params)),
		}
	}
	return &GeneratedSQL{SQL: sql, Params: params}, nil
}
