// Package schema provides the chameleon schema model and the logic that
// operates on it directly.
//
// A Schema is produced by pkg/parser from DSL text, or decoded from its
// versioned JSON form, and is read-only from then on. Everything downstream
// (validation, SQL generation, migration DDL) takes a *Schema and never
// mutates it.
//
// # Key Types
//
// Entity is a named record type that maps to one table. Fields are scalar
// columns; Relations describe associations to other entities and imply
// foreign-key columns. For example:
//
//	entity User {
//	    id: uuid primary,
//	    email: string unique required,
//	    orders: [Order] via user_id,
//	}
//
// # Validation
//
// Validate checks a Schema for structural and referential problems and
// collects every error it finds into a ValidationErrors value. A Schema with
// zero errors is "confirmed" and can be handed to the generators.
//
// # Columns and Foreign Keys
//
// Relations do not have to be backed by declared fields. Columns returns the
// full column list of an entity including foreign-key columns synthesized
// from relations, which is what the DDL and mutation generators operate on.
//
// This package is dependency-free apart from go-openapi/inflect, which backs
// the snake_plural naming strategy.
package schema

import (
	"fmt"
	"strings"
)

// Version is the JSON model version written by Encode and the highest
// version accepted by Decode.
const Version = 1

// FieldType is the scalar type of a field.
type FieldType string

// Supported field types.
const (
	TypeUUID      FieldType = "uuid"
	TypeString    FieldType = "string"
	TypeInteger   FieldType = "integer"
	TypeFloat     FieldType = "float"
	TypeDecimal   FieldType = "decimal"
	TypeBoolean   FieldType = "boolean"
	TypeTimestamp FieldType = "timestamp"
	TypeDate      FieldType = "date"
	TypeJSON      FieldType = "json"
)

// fieldTypes lists every accepted type spelling, aliases included.
var fieldTypes = map[string]FieldType{
	"uuid":      TypeUUID,
	"string":    TypeString,
	"integer":   TypeInteger,
	"int":       TypeInteger,
	"float":     TypeFloat,
	"decimal":   TypeDecimal,
	"boolean":   TypeBoolean,
	"bool":      TypeBoolean,
	"timestamp": TypeTimestamp,
	"date":      TypeDate,
	"json":      TypeJSON,
}

// ParseFieldType resolves a type name, accepting the short aliases
// int and bool. The second result is false for unknown names.
func ParseFieldType(name string) (FieldType, bool) {
	t, ok := fieldTypes[name]
	return t, ok
}

// Valid reports whether t is one of the canonical field types.
func (t FieldType) Valid() bool {
	c, ok := fieldTypes[string(t)]
	return ok && c == t
}

// String returns the type name.
func (t FieldType) String() string {
	return string(t)
}

// DefaultKind selects how a field default is produced.
type DefaultKind string

const (
	// DefaultNow uses the current timestamp (now()).
	DefaultNow DefaultKind = "now"
	// DefaultUUIDv4 uses a generated random UUID (uuid_v4()).
	DefaultUUIDv4 DefaultKind = "uuid_v4"
	// DefaultLiteral uses the constant in Default.Value.
	DefaultLiteral DefaultKind = "literal"
)

// Default describes a field's default value.
//
// For DefaultLiteral, Value holds a string, a json.Number, a bool or nil.
type Default struct {
	Kind  DefaultKind `json:"kind"`
	Value any         `json:"value,omitempty"`
}

// String renders the default the way it is written in the DSL.
func (d Default) String() string {
	switch d.Kind {
	case DefaultNow:
		return "now()"
	case DefaultUUIDv4:
		return "uuid_v4()"
	}
	switch v := d.Value.(type) {
	case nil:
		return "null"
	case string:
		return quoteDSL(v)
	default:
		return fmt.Sprint(v)
	}
}

// Position is a source location. Line and Column are 1-based; the zero
// value means "unknown".
type Position struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return p.File
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Field is a scalar column of an entity.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Primary  bool      `json:"primary,omitempty"`
	Required bool      `json:"required,omitempty"`
	Unique   bool      `json:"unique,omitempty"`
	Default  *Default  `json:"default,omitempty"`
	Pos      Position  `json:"-"`
}

// RelationKind is the cardinality of a relation as seen from the declaring
// entity.
type RelationKind string

// Supported relation kinds.
const (
	OneToOne   RelationKind = "one_to_one"
	OneToMany  RelationKind = "one_to_many"
	ManyToOne  RelationKind = "many_to_one"
	ManyToMany RelationKind = "many_to_many"
)

var relationKinds = map[string]RelationKind{
	"one_to_one":   OneToOne,
	"has_one":      OneToOne,
	"one_to_many":  OneToMany,
	"has_many":     OneToMany,
	"many_to_one":  ManyToOne,
	"belongs_to":   ManyToOne,
	"many_to_many": ManyToMany,
}

// ParseRelationKind resolves a relation kind keyword, accepting the
// has_one, has_many and belongs_to aliases.
func ParseRelationKind(name string) (RelationKind, bool) {
	k, ok := relationKinds[name]
	return k, ok
}

// Valid reports whether k is one of the canonical relation kinds.
func (k RelationKind) Valid() bool {
	c, ok := relationKinds[string(k)]
	return ok && c == k
}

// Relation is an association from the declaring entity to Target.
//
// ForeignKey overrides the default foreign-key column name. Through names
// the join entity of a many_to_many relation.
type Relation struct {
	Name       string       `json:"name"`
	Kind       RelationKind `json:"kind"`
	Target     string       `json:"target"`
	ForeignKey string       `json:"foreign_key,omitempty"`
	Through    string       `json:"through,omitempty"`
	Pos        Position     `json:"-"`
}

// Entity is a named record type, mapped to one table.
type Entity struct {
	Name      string     `json:"name"`
	Fields    []Field    `json:"fields"`
	Relations []Relation `json:"relations"`
	Pos       Position   `json:"-"`
}

// Field returns the field with the given name, or nil.
func (e *Entity) Field(name string) *Field {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			return &e.Fields[i]
		}
	}
	return nil
}

// Relation returns the relation with the given name, or nil.
func (e *Entity) Relation(name string) *Relation {
	for i := range e.Relations {
		if e.Relations[i].Name == name {
			return &e.Relations[i]
		}
	}
	return nil
}

// PrimaryKey returns the first field marked primary, or nil.
func (e *Entity) PrimaryKey() *Field {
	for i := range e.Fields {
		if e.Fields[i].Primary {
			return &e.Fields[i]
		}
	}
	return nil
}

// FieldNames returns the declared field names in declaration order.
func (e *Entity) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// Schema is an ordered collection of entities.
type Schema struct {
	Version  int      `json:"version"`
	Entities []Entity `json:"entities"`
}

// Index returns the position of the named entity, or -1.
func (s *Schema) Index(name string) int {
	for i := range s.Entities {
		if s.Entities[i].Name == name {
			return i
		}
	}
	return -1
}

// Entity returns the named entity, or nil.
func (s *Schema) Entity(name string) *Entity {
	if i := s.Index(name); i >= 0 {
		return &s.Entities[i]
	}
	return nil
}

// EntityNames returns entity names in declaration order.
func (s *Schema) EntityNames() []string {
	names := make([]string, len(s.Entities))
	for i, e := range s.Entities {
		names[i] = e.Name
	}
	return names
}

// Merge appends the entities of other to s. Duplicate names are kept so the
// validator can report them with both positions.
func (s *Schema) Merge(other *Schema) {
	if other == nil {
		return
	}
	s.Entities = append(s.Entities, other.Entities...)
}

// Normalize applies the model invariants that are implied rather than
// declared: primary fields are required and unique, nil slices become empty
// and the version is set.
func (s *Schema) Normalize() {
	if s.Version == 0 {
		s.Version = Version
	}
	if s.Entities == nil {
		s.Entities = []Entity{}
	}
	for i := range s.Entities {
		e := &s.Entities[i]
		if e.Fields == nil {
			e.Fields = []Field{}
		}
		if e.Relations == nil {
			e.Relations = []Relation{}
		}
		for j := range e.Fields {
			if e.Fields[j].Primary {
				e.Fields[j].Required = true
				e.Fields[j].Unique = true
			}
		}
	}
}

// quoteDSL renders s as a double-quoted DSL string literal.
func quoteDSL(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
