package query

// MutationType is the kind of write a Mutation performs.
type MutationType string

// Supported mutation types.
const (
	Insert MutationType = "insert"
	Update MutationType = "update"
	Delete MutationType = "delete"
)

// Valid reports whether t is a supported mutation type.
func (t MutationType) Valid() bool {
	return t == Insert || t == Update || t == Delete
}

// Mutation inserts, updates or deletes rows of Entity.
type Mutation struct {
	Type   MutationType
	Entity string
	// Fields holds the values to insert or assign.
	Fields map[string]any
	// Match holds equality conditions given in object form
	// ({"id": "..."}). They are ANDed with Filters.
	Match map[string]any
	// Filters holds conditions given in array form, with the same syntax as
	// Query filters.
	Filters []Filter
	// AllRows allows an update or delete without any condition.
	AllRows bool
	// Returning appends RETURNING * to the statement.
	Returning bool
}

// HasConditions reports whether the mutation restricts the affected rows.
// Filters made only of empty groups do not count.
func (m *Mutation) HasConditions() bool {
	if len(m.Match) > 0 {
		return true
	}
	for _, f := range m.Filters {
		if f.HasPredicate() {
			return true
		}
	}
	return false
}
