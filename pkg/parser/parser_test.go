package parser

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dperalta86/chameleondb/pkg/schema"
)

const shopSchema = `
// Shop schema
entity User {
    id: uuid primary default uuid_v4(),
    email: string required unique,
    age: int,
    created_at: timestamp default now(),
    orders: [Order] via user_id,
}

/* orders belong to users */
entity Order {
    id: uuid primary;
    total: decimal default 0.00;
    status: string default "pending";
    paid: bool default false;
    user: User;
}
`

func TestParseSchemaString_Shop(t *testing.T) {
	s, err := ParseSchemaString(shopSchema)
	require.NoError(t, err)
	require.Len(t, s.Entities, 2)

	user := s.Entities[0]
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, []string{"id", "email", "age", "created_at"}, user.FieldNames())

	id := user.Field("id")
	require.NotNil(t, id)
	assert.True(t, id.Primary)
	assert.True(t, id.Required, "primary implies required")
	assert.True(t, id.Unique, "primary implies unique")
	assert.Equal(t, &schema.Default{Kind: schema.DefaultUUIDv4}, id.Default)

	assert.Equal(t, schema.TypeInteger, user.Field("age").Type)
	assert.Equal(t, schema.DefaultNow, user.Field("created_at").Default.Kind)

	require.Len(t, user.Relations, 1)
	assert.Equal(t, schema.Relation{
		Name:       "orders",
		Kind:       schema.OneToMany,
		Target:     "Order",
		ForeignKey: "user_id",
		Pos:        schema.Position{Line: 8, Column: 5},
	}, user.Relations[0])

	order := s.Entities[1]
	assert.Equal(t, json.Number("0.00"), order.Field("total").Default.Value)
	assert.Equal(t, "pending", order.Field("status").Default.Value)
	assert.Equal(t, false, order.Field("paid").Default.Value)
	assert.Equal(t, schema.TypeBoolean, order.Field("paid").Type)

	require.Len(t, order.Relations, 1)
	assert.Equal(t, schema.ManyToOne, order.Relations[0].Kind)
	assert.Equal(t, "User", order.Relations[0].Target)
}

func TestParseSchemaString_RelationKeywordForm(t *testing.T) {
	s, err := ParseSchemaString(`
entity Post {
    id: integer primary,
    relation author: belongs_to User via writer_id,
    relation tags: many_to_many Tag through PostTag,
    relation cover: has_one Image,
}`)
	require.NoError(t, err)

	rels := s.Entities[0].Relations
	require.Len(t, rels, 3)
	assert.Equal(t, schema.ManyToOne, rels[0].Kind)
	assert.Equal(t, "writer_id", rels[0].ForeignKey)
	assert.Equal(t, schema.ManyToMany, rels[1].Kind)
	assert.Equal(t, "PostTag", rels[1].Through)
	assert.Equal(t, schema.OneToOne, rels[2].Kind)
}

func TestParseSchemaString_TrailingSeparatorOptional(t *testing.T) {
	withComma, err := ParseSchemaString(`entity User { id: uuid primary, name: string, }`)
	require.NoError(t, err)
	without, err := ParseSchemaString(`entity User { id: uuid primary, name: string }`)
	require.NoError(t, err)
	assert.Equal(t, withComma, without)
}

func TestParseSchemaString_FieldNamedRelation(t *testing.T) {
	s, err := ParseSchemaString(`entity Link { id: uuid primary, relation: string }`)
	require.NoError(t, err)
	assert.Equal(t, schema.TypeString, s.Entities[0].Field("relation").Type)
}

func TestParseSchemaString_Empty(t *testing.T) {
	s, err := ParseSchemaString("  // nothing here\n")
	require.NoError(t, err)
	assert.Empty(t, s.Entities)
	assert.Equal(t, schema.Version, s.Version)
}

func TestParseSchemaString_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		line     int
		column   int
		expected string
		found    string
		message  string
	}{
		{
			name:     "missing entity keyword",
			src:      "table User {}",
			line:     1,
			column:   1,
			expected: `"entity"`,
			found:    `"table"`,
		},
		{
			name:     "unknown type",
			src:      "entity User {\n  id: uuidd primary,\n}",
			line:     2,
			column:   7,
			expected: "field type (uuid, string, integer, float, decimal, boolean, timestamp, date, json)",
			found:    `"uuidd"`,
		},
		{
			name:     "unknown modifier",
			src:      "entity User {\n  id: uuid primery,\n}",
			line:     2,
			column:   12,
			expected: `modifier (primary, required, unique, nullable, default) or ","`,
			found:    `"primery"`,
		},
		{
			name:     "missing separator",
			src:      "entity User { id: uuid primary name: string }",
			line:     1,
			column:   32,
			expected: `modifier (primary, required, unique, nullable, default) or ","`,
			found:    `"name"`,
		},
		{
			name:     "missing colon",
			src:      "entity User { id uuid }",
			line:     1,
			column:   18,
			expected: `":"`,
			found:    `"uuid"`,
		},
		{
			name:     "unclosed entity",
			src:      "entity User { id: uuid primary,",
			line:     1,
			column:   32,
			expected: `field, relation or "}"`,
			found:    "end of input",
		},
		{
			name:     "unknown relation kind",
			src:      "entity A { relation b: lots_of B }",
			line:     1,
			column:   24,
			expected: "relation kind (one_to_one, one_to_many, many_to_one, many_to_many)",
			found:    `"lots_of"`,
		},
		{
			name:     "bad default",
			src:      "entity A { id: uuid primary default , }",
			line:     1,
			column:   37,
			expected: "default value (literal, now() or uuid_v4())",
			found:    `","`,
		},
		{
			name:    "unterminated string",
			src:     "entity A {\n  s: string default \"abc\n}",
			line:    2,
			column:  21,
			message: "unterminated string literal",
		},
		{
			name:    "unterminated comment",
			src:     "entity A { /* never closed",
			line:    1,
			column:  12,
			message: "unterminated block comment",
		},
		{
			name:    "stray character",
			src:     "entity A { id: uuid primary @ }",
			line:    1,
			column:  29,
			message: `unexpected character '@'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchemaString(tt.src)
			require.Error(t, err)
			assert.True(t, IsSyntaxErr(err))

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line(), "line")
			assert.Equal(t, tt.column, perr.Column(), "column")
			assert.Equal(t, tt.expected, perr.Expected)
			assert.Equal(t, tt.found, perr.Found)
			assert.Equal(t, tt.message, perr.Message)
		})
	}
}

func TestParseError_Message(t *testing.T) {
	_, err := ParseSchemaString("entity User { id uuid }")
	require.Error(t, err)
	assert.Equal(t, `line 1, column 18: expected ":", found "uuid"`, err.Error())

	_, err = ParseNamed("app.cham", "entity User { id uuid }")
	require.Error(t, err)
	assert.Equal(t, `app.cham:1:18: expected ":", found "uuid"`, err.Error())
}

func TestParseSchema_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app"+FileExtension)
	require.NoError(t, os.WriteFile(path, []byte("entity User {\n  id: uuid primary,\n}\n"), 0o600))

	s, err := ParseSchema(path)
	require.NoError(t, err)
	assert.Equal(t, schema.Position{File: path, Line: 1, Column: 1}, s.Entities[0].Pos)
	assert.Equal(t, schema.Position{File: path, Line: 2, Column: 3}, s.Entities[0].Fields[0].Pos)

	_, err = ParseSchema(filepath.Join(dir, "missing.cham"))
	require.Error(t, err)
	assert.False(t, IsSyntaxErr(err))
}

func TestFormatRoundTrip(t *testing.T) {
	first, err := ParseSchemaString(shopSchema + `
entity Tag { id: integer primary, label: string default "it's \"quoted\"" }
entity UserTag {
    id: integer primary,
    user: User,
    tag: Tag,
    note: string default "line\nbreak" nullable,
    relation extra: many_to_many Tag through UserTag,
}`)
	require.NoError(t, err)

	second, err := ParseSchemaString(schema.Format(first))
	require.NoError(t, err)

	a, err := schema.Encode(first)
	require.NoError(t, err)
	b, err := schema.Encode(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))

	decoded, err := schema.Decode(a)
	require.NoError(t, err)
	c, err := schema.Encode(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(c))
}

func TestParseSchemaString_ExponentDefaults(t *testing.T) {
	s, err := ParseSchemaString(`entity Metric { id: integer primary, big: float default 1e5, small: float default -2.5E-3 }`)
	require.NoError(t, err)
	m := s.Entity("Metric")
	assert.Equal(t, json.Number("1e5"), m.Field("big").Default.Value)
	assert.Equal(t, json.Number("-2.5E-3"), m.Field("small").Default.Value)

	// schemas decoded from JSON keep the number as written
	data, err := schema.Encode(s)
	require.NoError(t, err)
	decoded, err := schema.Decode(data)
	require.NoError(t, err)
	again, err := ParseSchemaString(schema.Format(decoded))
	require.NoError(t, err)
	b, err := schema.Encode(again)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(b))
}
