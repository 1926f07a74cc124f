package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dperalta86/chameleondb/pkg/schema"
)

func TestDecode(t *testing.T) {
	s, err := schema.Decode([]byte(`{
		"version": 1,
		"generator": "ignored",
		"entities": [{
			"name": "User",
			"comment": "unknown members are ignored",
			"fields": [
				{"name": "id", "type": "uuid", "primary": true},
				{"name": "age", "type": "int", "default": {"kind": "literal", "value": 18}}
			],
			"relations": [{"name": "orders", "kind": "has_many", "target": "Order", "foreign_key": "user_id"}]
		}]
	}`))
	require.NoError(t, err)

	require.Len(t, s.Entities, 1)
	id := s.Entities[0].Fields[0]
	assert.True(t, id.Required)
	assert.True(t, id.Unique)
	assert.Equal(t, schema.TypeInteger, s.Entities[0].Fields[1].Type)
	assert.Equal(t, json.Number("18"), s.Entities[0].Fields[1].Default.Value)
	assert.Equal(t, schema.OneToMany, s.Entities[0].Relations[0].Kind)
}

func TestDecode_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", ``, "empty document"},
		{"not json", `{"entities": [`, "invalid JSON: unexpected EOF"},
		{"missing entities", `{"version": 1}`, "entities is required"},
		{"future version", `{"version": 2, "entities": []}`, "version 2 is not supported (max 1)"},
		{"missing entity name", `{"entities": [{"fields": []}]}`, "entities[0].name is required"},
		{"missing field type", `{"entities": [{"name": "A", "fields": [{"name": "id"}]}]}`, "entities[0].fields[0].type is required"},
		{"missing relation target", `{"entities": [{"name": "A", "relations": [{"name": "b", "kind": "has_one"}]}]}`, "entities[0].relations[0].target is required"},
		{"missing default kind", `{"entities": [{"name": "A", "fields": [{"name": "id", "type": "uuid", "default": {}}]}]}`, "entities[0].fields[0].default.kind is required"},
		{"wrong json type", `{"entities": [{"name": 5}]}`, "name must be string, got number"},
		{"trailing data", `{"entities": []} {}`, "unexpected data after the JSON document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, schema.IsMalformedInputErr(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEncode_EmptyCollections(t *testing.T) {
	b, err := schema.Encode(&schema.Schema{Entities: []schema.Entity{{Name: "A"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"entities":[{"name":"A","fields":[],"relations":[]}]}`, string(b))

	b, err = schema.Encode(&schema.Schema{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"entities":[]}`, string(b))
}

func TestEncode_DoesNotMutate(t *testing.T) {
	s := &schema.Schema{Entities: []schema.Entity{{
		Name:   "A",
		Fields: []schema.Field{{Name: "id", Type: schema.TypeUUID, Primary: true}},
	}}}
	_, err := schema.Encode(s)
	require.NoError(t, err)
	assert.False(t, s.Entities[0].Fields[0].Required)
	assert.Nil(t, s.Entities[0].Relations)
}

func TestClone(t *testing.T) {
	s := &schema.Schema{Version: 1, Entities: []schema.Entity{{
		Name:   "A",
		Fields: []schema.Field{{Name: "n", Type: schema.TypeInteger, Default: &schema.Default{Kind: schema.DefaultLiteral, Value: json.Number("1")}}},
	}}}
	c := s.Clone()
	c.Entities[0].Name = "B"
	c.Entities[0].Fields[0].Default.Value = json.Number("2")

	assert.Equal(t, "A", s.Entities[0].Name)
	assert.Equal(t, json.Number("1"), s.Entities[0].Fields[0].Default.Value)
}
