package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the accepted format for date values.
const DateLayout = "2006-01-02"

// CheckValue reports whether v can be stored in a column of type t.
// JSON-decoded values are expected: string, bool, float64 or json.Number,
// maps and slices. A nil value is accepted; whether the column is nullable
// is the caller's concern.
func CheckValue(t FieldType, v any) error {
	if v == nil {
		return nil
	}
	switch t {
	case TypeJSON:
		return nil
	case TypeString:
		if _, ok := v.(string); ok {
			return nil
		}
	case TypeBoolean:
		if _, ok := v.(bool); ok {
			return nil
		}
	case TypeUUID:
		if s, ok := v.(string); ok {
			if _, err := uuid.Parse(s); err != nil {
				return fmt.Errorf("invalid uuid %q", s)
			}
			return nil
		}
	case TypeTimestamp:
		if s, ok := v.(string); ok {
			if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
				return fmt.Errorf("invalid timestamp %q (want RFC 3339)", s)
			}
			return nil
		}
	case TypeDate:
		if s, ok := v.(string); ok {
			if _, err := time.Parse(DateLayout, s); err != nil {
				return fmt.Errorf("invalid date %q (want %s)", s, DateLayout)
			}
			return nil
		}
	case TypeInteger:
		if isIntegral(v) {
			return nil
		}
	case TypeFloat:
		if isNumber(v) {
			return nil
		}
	case TypeDecimal:
		switch n := v.(type) {
		case string:
			if _, err := decimal.NewFromString(n); err != nil {
				return fmt.Errorf("invalid decimal %q", n)
			}
			return nil
		case json.Number:
			if _, err := decimal.NewFromString(n.String()); err != nil {
				return fmt.Errorf("invalid decimal %q", n)
			}
			return nil
		}
		if isNumber(v) {
			return nil
		}
	default:
		return fmt.Errorf("unknown type %q", t)
	}
	return fmt.Errorf("expected %s, got %s", t, describe(v))
}

func isNumber(v any) bool {
	switch n := v.(type) {
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return true
	case json.Number:
		_, err := n.Float64()
		return err == nil
	}
	return false
}

func isIntegral(v any) bool {
	switch n := v.(type) {
	case int, int32, int64, uint, uint32, uint64:
		return true
	case float64:
		return n == math.Trunc(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n) == math.Trunc(float64(n))
	case json.Number:
		_, err := n.Int64()
		return err == nil
	}
	return false
}

func describe(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("string %q", x)
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("number %v", x)
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

// NormalizeValue converts JSON numbers to the Go type a database driver
// expects for a column of type t: int64 for integer and float64 for float.
// Decimal numbers keep their exact text. JSON columns are re-encoded to
// text. Other values are returned unchanged.
func NormalizeValue(t FieldType, v any) any {
	switch n := v.(type) {
	case json.Number:
		switch t {
		case TypeInteger:
			if i, err := n.Int64(); err == nil {
				return i
			}
		case TypeDecimal:
			return n
		}
		if f, err := n.Float64(); err == nil {
			if t == TypeInteger {
				return int64(f)
			}
			return f
		}
	case float64:
		if t == TypeInteger {
			return int64(n)
		}
	case map[string]any, []any:
		if t == TypeJSON {
			b, err := json.Marshal(n)
			if err == nil {
				return string(b)
			}
		}
	}
	return v
}
