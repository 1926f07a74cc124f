// Package clientgen provides a registry of language-specific model code generators.
//
// A generator turns a validated schema into record types for one language:
// one type per entity with a member per table column, plus the relation
// members an application loads through joins. Generators return a file map
// to support languages that need multiple output files (e.g., TypeScript
// with separate models.ts and index.ts).
//
// This is an internal package used by the chameleon CLI. For programmatic
// code generation, use pkg/clientgen which provides a stable public API.
package clientgen

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/dperalta86/chameleondb/pkg/schema"
)

// Generator produces language-specific model code from a schema.
//
// Implementations should be registered via Register() in their init() function.
// The CLI uses the registry to dispatch generation based on the --lang flag.
type Generator interface {
	// Name returns the language identifier ("go", "typescript", "python").
	Name() string

	// Generate returns a map of filename -> content for all generated files.
	// The filenames are relative paths. The caller is responsible for
	// writing them to the output directory.
	Generate(s *schema.Schema, cfg *Config) (map[string][]byte, error)

	// DefaultConfig returns the default configuration for this generator.
	DefaultConfig() *Config
}

// Config holds language-agnostic generation options.
type Config struct {
	// Package is the package or module name for generated code.
	// Languages without packages ignore it.
	Package string

	// Entities limits generation to the named entities. Empty means all.
	Entities []string

	// Naming maps field names to the column names written in struct tags
	// and column constants.
	Naming schema.Naming

	// Options holds language-specific configuration.
	// Each generator documents its supported options.
	Options map[string]any
}

// Include reports whether entity is selected by cfg.
func (c *Config) Include(entity string) bool {
	if c == nil || len(c.Entities) == 0 {
		return true
	}
	for _, name := range c.Entities {
		if name == entity {
			return true
		}
	}
	return false
}

// BoolOption returns the boolean option key, or def when unset.
func (c *Config) BoolOption(key string, def bool) bool {
	if c == nil {
		return def
	}
	if v, ok := c.Options[key].(bool); ok {
		return v
	}
	return def
}

// registry maps language names to generators.
var registry = make(map[string]Generator)

// Register adds a generator to the global registry.
// Generators should call this from their init() function.
//
// Panics if a generator with the same name is already registered.
func Register(g Generator) {
	name := g.Name()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("clientgen: generator %q already registered", name))
	}
	registry[name] = g
}

// Get returns the generator for the given language name.
// Returns nil if no generator is registered for that name.
func Get(name string) Generator {
	return registry[name]
}

// List returns all registered generator names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registered returns true if a generator is registered for the given name.
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}

// initialisms are written in upper case in exported names.
var initialisms = map[string]bool{
	"API": true, "HTML": true, "HTTP": true, "ID": true, "IP": true,
	"JSON": true, "SQL": true, "URI": true, "URL": true, "UUID": true,
}

// ExportedName converts a schema name to an exported identifier:
// "user_id" becomes "UserID" and "createdAt" becomes "CreatedAt".
func ExportedName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		if up := strings.ToUpper(part); initialisms[up] {
			b.WriteString(up)
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}
