// Package query defines the Query and Mutation documents compiled by
// pkg/compiler, and decodes them from their versioned JSON form.
//
// A Query selects rows of one entity, optionally traversing relations:
//
//	{"entity": "User",
//	 "select": ["id", "orders.total"],
//	 "filters": [{"field": "orders.total", "op": "gt", "value": 100}],
//	 "order_by": [{"field": "name", "direction": "desc"}],
//	 "limit": 10}
//
// A Mutation inserts, updates or deletes rows of one entity:
//
//	{"type": "update", "entity": "User",
//	 "fields": {"name": "Ann"},
//	 "filters": {"id": "7d444840-9dc0-11d1-b245-5ffdce74fad2"}}
//
// Decoding only checks structure. Whether entities, fields and values make
// sense against a schema is decided by the compiler.
package query

import (
	"strings"
)

// Op is a filter operator.
type Op string

// Supported operators.
const (
	OpEq        Op = "eq"
	OpNeq       Op = "neq"
	OpGt        Op = "gt"
	OpGte       Op = "gte"
	OpLt        Op = "lt"
	OpLte       Op = "lte"
	OpLike      Op = "like"
	OpIn        Op = "in"
	OpIsNull    Op = "is_null"
	OpIsNotNull Op = "is_not_null"
)

var ops = map[Op]bool{
	OpEq: true, OpNeq: true, OpGt: true, OpGte: true, OpLt: true,
	OpLte: true, OpLike: true, OpIn: true, OpIsNull: true, OpIsNotNull: true,
}

// Valid reports whether o is a supported operator.
func (o Op) Valid() bool { return ops[o] }

// TakesValue reports whether the operator compares against a value.
func (o Op) TakesValue() bool { return o != OpIsNull && o != OpIsNotNull }

// Placeholder is a named parameter left for the caller to bind. It appears
// in a compiled parameter list where the value would otherwise be.
type Placeholder struct {
	Name string `json:"placeholder"`
}

// Filter is either a condition on a field or a group of filters combined
// with AND or OR.
type Filter struct {
	// Field is a field name, or a dotted relation path ending in a field
	// (orders.total).
	Field string
	Op    Op
	// Value is the JSON-decoded operand. For OpIn it is a []any.
	Value any
	// Placeholder, if set, replaces Value with a named parameter.
	Placeholder string

	And []Filter
	Or  []Filter
}

// IsGroup reports whether f combines other filters.
func (f Filter) IsGroup() bool {
	return f.And != nil || f.Or != nil
}

// HasPredicate reports whether f contains at least one field condition.
// Groups whose members are all empty groups restrict nothing.
func (f Filter) HasPredicate() bool {
	if !f.IsGroup() {
		return true
	}
	for _, child := range append(f.And, f.Or...) {
		if child.HasPredicate() {
			return true
		}
	}
	return false
}

// Path splits Field into its relation path and the final field name.
func (f Filter) Path() (relations []string, field string) {
	return SplitPath(f.Field)
}

// SplitPath splits "a.b.c" into ([a b], c).
func SplitPath(path string) (relations []string, field string) {
	parts := strings.Split(path, ".")
	return parts[:len(parts)-1], parts[len(parts)-1]
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

// OrderBy is one ordering term.
type OrderBy struct {
	Field string
	Desc  bool
}

// Query selects rows of Entity.
type Query struct {
	Entity string
	// Select lists fields or relation paths; empty selects every column of
	// Entity.
	Select []string
	// Joins lists relation paths to join even if nothing else references
	// them.
	Joins []string
	// Filters are combined with AND.
	Filters  []Filter
	OrderBy  []OrderBy
	Limit    int
	Offset   int
	Distinct bool
}
