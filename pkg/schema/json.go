package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// The raw types mirror the JSON model with pointers for required members so
// that an absent member can be told apart from a zero value.
type rawSchema struct {
	Version  *int         `json:"version"`
	Entities *[]rawEntity `json:"entities"`
}

type rawEntity struct {
	Name      *string       `json:"name"`
	Fields    []rawField    `json:"fields"`
	Relations []rawRelation `json:"relations"`
}

type rawField struct {
	Name     *string     `json:"name"`
	Type     *string     `json:"type"`
	Primary  bool        `json:"primary"`
	Required bool        `json:"required"`
	Unique   bool        `json:"unique"`
	Default  *rawDefault `json:"default"`
}

type rawDefault struct {
	Kind  *string `json:"kind"`
	Value any     `json:"value"`
}

type rawRelation struct {
	Name       *string `json:"name"`
	Kind       *string `json:"kind"`
	Target     *string `json:"target"`
	ForeignKey string  `json:"foreign_key"`
	Through    string  `json:"through"`
}

// Decode parses the versioned JSON form of a schema. Unknown members are
// ignored. A missing required member, a wrong JSON type or an unsupported
// version produces an *InputError naming the offending path. Field types and
// relation kinds are accepted with their aliases and canonicalized; unknown
// ones are kept verbatim for Validate to report.
//
// Numbers in literal defaults are decoded as json.Number.
func Decode(data []byte) (*Schema, error) {
	var raw rawSchema
	if err := decodeStrict(data, &raw); err != nil {
		return nil, err
	}
	if raw.Version != nil && (*raw.Version < 1 || *raw.Version > Version) {
		return nil, &InputError{Path: "version", Message: fmt.Sprintf("%d is not supported (max %d)", *raw.Version, Version)}
	}
	if raw.Entities == nil {
		return nil, &InputError{Path: "entities", Message: "is required"}
	}

	s := &Schema{Version: Version, Entities: make([]Entity, 0, len(*raw.Entities))}
	for i, re := range *raw.Entities {
		base := fmt.Sprintf("entities[%d]", i)
		if re.Name == nil {
			return nil, &InputError{Path: base + ".name", Message: "is required"}
		}
		e := Entity{
			Name:      *re.Name,
			Fields:    make([]Field, 0, len(re.Fields)),
			Relations: make([]Relation, 0, len(re.Relations)),
		}
		for j, rf := range re.Fields {
			f, err := rf.toField(fmt.Sprintf("%s.fields[%d]", base, j))
			if err != nil {
				return nil, err
			}
			e.Fields = append(e.Fields, f)
		}
		for j, rr := range re.Relations {
			r, err := rr.toRelation(fmt.Sprintf("%s.relations[%d]", base, j))
			if err != nil {
				return nil, err
			}
			e.Relations = append(e.Relations, r)
		}
		s.Entities = append(s.Entities, e)
	}
	s.Normalize()
	return s, nil
}

func (rf rawField) toField(path string) (Field, error) {
	if rf.Name == nil {
		return Field{}, &InputError{Path: path + ".name", Message: "is required"}
	}
	if rf.Type == nil {
		return Field{}, &InputError{Path: path + ".type", Message: "is required"}
	}
	typ, ok := ParseFieldType(*rf.Type)
	if !ok {
		typ = FieldType(*rf.Type)
	}
	f := Field{
		Name:     *rf.Name,
		Type:     typ,
		Primary:  rf.Primary,
		Required: rf.Required,
		Unique:   rf.Unique,
	}
	if rf.Default != nil {
		if rf.Default.Kind == nil {
			return Field{}, &InputError{Path: path + ".default.kind", Message: "is required"}
		}
		f.Default = &Default{Kind: DefaultKind(*rf.Default.Kind), Value: rf.Default.Value}
	}
	return f, nil
}

func (rr rawRelation) toRelation(path string) (Relation, error) {
	switch {
	case rr.Name == nil:
		return Relation{}, &InputError{Path: path + ".name", Message: "is required"}
	case rr.Kind == nil:
		return Relation{}, &InputError{Path: path + ".kind", Message: "is required"}
	case rr.Target == nil:
		return Relation{}, &InputError{Path: path + ".target", Message: "is required"}
	}
	kind, ok := ParseRelationKind(*rr.Kind)
	if !ok {
		kind = RelationKind(*rr.Kind)
	}
	return Relation{
		Name:       *rr.Name,
		Kind:       kind,
		Target:     *rr.Target,
		ForeignKey: rr.ForeignKey,
		Through:    rr.Through,
	}, nil
}

// decodeStrict decodes a single JSON value with json.Number for numbers and
// rejects trailing data.
func decodeStrict(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &InputError{Message: "empty document"}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &InputError{Path: typeErr.Field, Message: fmt.Sprintf("must be %s, got %s", typeErr.Type, typeErr.Value)}
		}
		return &InputError{Message: "invalid JSON", Err: err}
	}
	if dec.More() {
		return &InputError{Message: "unexpected data after the JSON document"}
	}
	return nil
}

// DecodeJSON decodes an arbitrary JSON document the way Decode does: with
// json.Number for numbers and *InputError for malformed input. It is shared
// by the query and mutation decoders.
func DecodeJSON(data []byte, v any) error {
	return decodeStrict(data, v)
}

// Encode renders s in its versioned JSON form. Empty collections are
// written as [] rather than null.
func Encode(s *Schema) ([]byte, error) {
	c := s.Clone()
	c.Normalize()
	c.Version = Version
	return json.Marshal(c)
}

// Clone returns a deep copy of s.
func (s *Schema) Clone() *Schema {
	c := &Schema{Version: s.Version}
	if s.Entities != nil {
		c.Entities = make([]Entity, len(s.Entities))
	}
	for i, e := range s.Entities {
		ce := Entity{Name: e.Name, Pos: e.Pos}
		if e.Fields != nil {
			ce.Fields = make([]Field, len(e.Fields))
			copy(ce.Fields, e.Fields)
			for j := range ce.Fields {
				if d := ce.Fields[j].Default; d != nil {
					dc := *d
					ce.Fields[j].Default = &dc
				}
			}
		}
		if e.Relations != nil {
			ce.Relations = make([]Relation, len(e.Relations))
			copy(ce.Relations, e.Relations)
		}
		c.Entities[i] = ce
	}
	return c
}
