package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dperalta86/chameleondb/pkg/schema"
)

// Version is the highest JSON version accepted for queries and mutations.
const Version = 1

type rawQuery struct {
	Version  *int            `json:"version"`
	Entity   *string         `json:"entity"`
	Select   []string        `json:"select"`
	Joins    []string        `json:"joins"`
	Filters  json.RawMessage `json:"filters"`
	OrderBy  []rawOrder      `json:"order_by"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
	Distinct bool            `json:"distinct"`
}

type rawOrder struct {
	Field     *string `json:"field"`
	Direction string  `json:"direction"`
}

type rawMutation struct {
	Version   *int            `json:"version"`
	Type      *string         `json:"type"`
	Entity    *string         `json:"entity"`
	Fields    map[string]any  `json:"fields"`
	Filters   json.RawMessage `json:"filters"`
	AllRows   bool            `json:"all_rows"`
	Returning bool            `json:"returning"`
}

func inputErr(path, format string, args ...any) error {
	return &schema.InputError{Path: path, Message: fmt.Sprintf(format, args...)}
}

func checkVersion(v *int) error {
	if v != nil && (*v < 1 || *v > Version) {
		return inputErr("version", "%d is not supported (max %d)", *v, Version)
	}
	return nil
}

// DecodeQuery decodes a JSON query. Unknown members are ignored; missing
// required members produce a *schema.InputError naming the path.
func DecodeQuery(data []byte) (*Query, error) {
	var raw rawQuery
	if err := schema.DecodeJSON(data, &raw); err != nil {
		return nil, err
	}
	if err := checkVersion(raw.Version); err != nil {
		return nil, err
	}
	if raw.Entity == nil {
		return nil, inputErr("entity", "is required")
	}

	q := &Query{
		Entity:   *raw.Entity,
		Select:   raw.Select,
		Joins:    raw.Joins,
		Limit:    raw.Limit,
		Offset:   raw.Offset,
		Distinct: raw.Distinct,
	}
	if isPresent(raw.Filters) {
		if !isArray(raw.Filters) {
			return nil, inputErr("filters", "must be an array")
		}
		filters, err := decodeFilterList(raw.Filters, "filters")
		if err != nil {
			return nil, err
		}
		q.Filters = filters
	}
	for i, o := range raw.OrderBy {
		path := fmt.Sprintf("order_by[%d]", i)
		if o.Field == nil {
			return nil, inputErr(path+".field", "is required")
		}
		var desc bool
		switch strings.ToLower(o.Direction) {
		case "", "asc":
		case "desc":
			desc = true
		default:
			return nil, inputErr(path+".direction", "must be \"asc\" or \"desc\", got %q", o.Direction)
		}
		q.OrderBy = append(q.OrderBy, OrderBy{Field: *o.Field, Desc: desc})
	}
	return q, nil
}

// DecodeMutation decodes a JSON mutation. Filters may be an object of
// equality conditions or an array of query filters.
func DecodeMutation(data []byte) (*Mutation, error) {
	var raw rawMutation
	if err := schema.DecodeJSON(data, &raw); err != nil {
		return nil, err
	}
	if err := checkVersion(raw.Version); err != nil {
		return nil, err
	}
	if raw.Type == nil {
		return nil, inputErr("type", "is required")
	}
	typ := MutationType(strings.ToLower(*raw.Type))
	if !typ.Valid() {
		return nil, inputErr("type", "must be one of insert, update, delete; got %q", *raw.Type)
	}
	if raw.Entity == nil {
		return nil, inputErr("entity", "is required")
	}

	m := &Mutation{
		Type:      typ,
		Entity:    *raw.Entity,
		Fields:    raw.Fields,
		AllRows:   raw.AllRows,
		Returning: raw.Returning,
	}
	switch {
	case !isPresent(raw.Filters):
	case isArray(raw.Filters):
		filters, err := decodeFilterList(raw.Filters, "filters")
		if err != nil {
			return nil, err
		}
		m.Filters = filters
	default:
		var match map[string]any
		if err := schema.DecodeJSON(raw.Filters, &match); err != nil {
			return nil, inputErr("filters", "must be an object or an array")
		}
		m.Match = match
	}
	return m, nil
}

func isPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func decodeFilterList(raw json.RawMessage, path string) ([]Filter, error) {
	var items []json.RawMessage
	if err := schema.DecodeJSON(raw, &items); err != nil {
		return nil, inputErr(path, "must be an array of filters")
	}
	filters := make([]Filter, 0, len(items))
	for i, item := range items {
		f, err := decodeFilter(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func decodeFilter(raw json.RawMessage, path string) (Filter, error) {
	var members map[string]json.RawMessage
	if err := schema.DecodeJSON(raw, &members); err != nil {
		return Filter{}, inputErr(path, "must be an object")
	}

	andRaw, hasAnd := members["and"]
	orRaw, hasOr := members["or"]
	switch {
	case hasAnd && hasOr:
		return Filter{}, inputErr(path, "cannot combine \"and\" and \"or\" in one group")
	case hasAnd:
		children, err := decodeFilterList(andRaw, path+".and")
		if err != nil {
			return Filter{}, err
		}
		return Filter{And: children}, nil
	case hasOr:
		children, err := decodeFilterList(orRaw, path+".or")
		if err != nil {
			return Filter{}, err
		}
		return Filter{Or: children}, nil
	}

	var f Filter
	if err := decodeString(members, "field", &f.Field); err != nil {
		return Filter{}, inputErr(path+".field", "%v", err)
	}
	if f.Field == "" {
		return Filter{}, inputErr(path+".field", "is required")
	}
	op := string(OpEq)
	if err := decodeString(members, "op", &op); err != nil {
		return Filter{}, inputErr(path+".op", "%v", err)
	}
	f.Op = Op(strings.ToLower(op))
	if !f.Op.Valid() {
		return Filter{}, inputErr(path+".op", "unsupported operator %q", op)
	}
	if err := decodeString(members, "placeholder", &f.Placeholder); err != nil {
		return Filter{}, inputErr(path+".placeholder", "%v", err)
	}

	valueRaw, hasValue := members["value"]
	if hasValue {
		if err := schema.DecodeJSON(valueRaw, &f.Value); err != nil {
			return Filter{}, inputErr(path+".value", "is not valid JSON")
		}
	}
	if !f.Op.TakesValue() {
		return f, nil
	}
	switch {
	case hasValue && f.Placeholder != "":
		return Filter{}, inputErr(path, "has both value and placeholder")
	case !hasValue && f.Placeholder == "":
		return Filter{}, inputErr(path+".value", "is required for operator %q", f.Op)
	}
	if f.Op == OpIn && f.Placeholder == "" {
		if _, ok := f.Value.([]any); !ok {
			return Filter{}, inputErr(path+".value", "must be an array for operator \"in\"")
		}
	}
	return f, nil
}

// decodeString decodes members[name] into dst if present.
func decodeString(members map[string]json.RawMessage, name string, dst *string) error {
	raw, ok := members[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.New("must be a string")
	}
	return nil
}
