package schema

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// NamingStrategy selects how entity and field names become SQL identifiers.
type NamingStrategy string

const (
	// NamingIdentity uses entity and field names unchanged.
	NamingIdentity NamingStrategy = "identity"
	// NamingSnakePlural maps OrderItem to order_items and createdAt to created_at.
	NamingSnakePlural NamingStrategy = "snake_plural"
)

// ParseNamingStrategy resolves a strategy name. The empty string selects
// NamingIdentity.
func ParseNamingStrategy(name string) (NamingStrategy, error) {
	switch NamingStrategy(name) {
	case "", NamingIdentity:
		return NamingIdentity, nil
	case NamingSnakePlural:
		return NamingSnakePlural, nil
	}
	return "", fmt.Errorf("unknown naming strategy %q (want %q or %q)", name, NamingIdentity, NamingSnakePlural)
}

// Naming maps schema names to SQL identifiers. The zero value is the
// identity mapping. Identifiers that collide with SQL reserved words are
// double-quoted.
type Naming struct {
	Strategy NamingStrategy
}

var rules = inflect.NewDefaultRuleset()

// Table returns the quoted table identifier for an entity name.
func (n Naming) Table(entity string) string { return QuoteIdent(n.TableName(entity)) }

// Column returns the quoted column identifier for a field name.
func (n Naming) Column(field string) string { return QuoteIdent(n.ColumnName(field)) }

// TableName returns the unquoted table name for an entity name.
func (n Naming) TableName(entity string) string {
	if n.Strategy == NamingSnakePlural {
		return rules.Pluralize(Snake(entity))
	}
	return entity
}

// ColumnName returns the unquoted column name for a field name.
func (n Naming) ColumnName(field string) string {
	if n.Strategy == NamingSnakePlural {
		return Snake(field)
	}
	return field
}

// Snake converts a camel or pascal case name to snake_case.
// Runs of capitals are treated as one word, so HTTPRequest becomes
// http_request.
func Snake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// reserved holds SQL keywords that cannot be used as bare identifiers in the
// target dialect.
var reserved = map[string]bool{
	"ALL": true, "AND": true, "AS": true, "ASC": true, "BETWEEN": true,
	"BY": true, "CASE": true, "CHECK": true, "COLUMN": true, "CONSTRAINT": true,
	"CREATE": true, "CROSS": true, "DEFAULT": true, "DELETE": true, "DESC": true,
	"DISTINCT": true, "DROP": true, "ELSE": true, "END": true, "EXISTS": true,
	"FALSE": true, "FOR": true, "FOREIGN": true, "FROM": true, "FULL": true,
	"GROUP": true, "HAVING": true, "IN": true, "INDEX": true, "INNER": true,
	"INSERT": true, "INTO": true, "IS": true, "JOIN": true, "KEY": true,
	"LEFT": true, "LIKE": true, "LIMIT": true, "NOT": true, "NULL": true,
	"OFFSET": true, "ON": true, "OR": true, "ORDER": true, "OUTER": true,
	"PRIMARY": true, "REFERENCES": true, "RIGHT": true, "SELECT": true,
	"SET": true, "TABLE": true, "THEN": true, "TO": true, "TRUE": true,
	"UNION": true, "UNIQUE": true, "UPDATE": true, "USING": true,
	"VALUES": true, "WHEN": true, "WHERE": true, "WITH": true,
}

// IsReserved reports whether name is a reserved SQL keyword.
func IsReserved(name string) bool {
	return reserved[strings.ToUpper(name)]
}

// QuoteIdent double-quotes name if it is a reserved word or is not a plain
// identifier. Embedded double quotes are doubled.
func QuoteIdent(name string) string {
	if !IsReserved(name) && isPlainIdent(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isPlainIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
