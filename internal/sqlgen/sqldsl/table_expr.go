package sqldsl

// TableExpr is anything that can stand after FROM or JOIN.
type TableExpr interface {
	TableSQL() string
}

// TableRef names a table, optionally aliased. Both parts are emitted as
// given, so callers pass identifiers that are already quoted where needed.
type TableRef struct {
	Name  string
	Alias string
}

// TableSQL implements TableExpr.
func (t TableRef) TableSQL() string {
	if t.Alias == "" {
		return t.Name
	}
	return t.Name + " AS " + t.Alias
}

// TableAs is shorthand for TableRef{Name: name, Alias: alias}.
func TableAs(name, alias string) TableRef {
	return TableRef{Name: name, Alias: alias}
}
