// Package typescript generates TypeScript model interfaces from a schema.
//
// The generator produces:
//   - models.ts: one interface per entity plus the list of entity names
//   - index.ts: re-exports for clean imports
//
// Options:
//   - "edges" (bool, default true): add optional relation members.
package typescript

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dperalta86/chameleondb/internal/clientgen"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

func init() {
	clientgen.Register(&Generator{})
}

// Generator implements clientgen.Generator for TypeScript.
type Generator struct{}

// Name returns "typescript" as the language identifier.
func (g *Generator) Name() string { return "typescript" }

// DefaultConfig returns default configuration for TypeScript code generation.
func (g *Generator) DefaultConfig() *clientgen.Config {
	return &clientgen.Config{
		Package: "",
		Options: map[string]any{"edges": true},
	}
}

// Generate returns models.ts and index.ts.
func (g *Generator) Generate(s *schema.Schema, cfg *clientgen.Config) (map[string][]byte, error) {
	if cfg == nil {
		cfg = g.DefaultConfig()
	}
	edges := cfg.BoolOption("edges", true)

	var b bytes.Buffer
	b.WriteString("// Code generated by chameleon. DO NOT EDIT.\n")

	var names []string
	for i := range s.Entities {
		e := &s.Entities[i]
		if !cfg.Include(e.Name) {
			continue
		}
		names = append(names, e.Name)

		fmt.Fprintf(&b, "\n/** Row of table %s. */\n", cfg.Naming.TableName(e.Name))
		fmt.Fprintf(&b, "export interface %s {\n", e.Name)
		for _, c := range s.Columns(e) {
			typ, err := tsType(c.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", e.Name, c.Name, err)
			}
			if c.Required {
				fmt.Fprintf(&b, "  %s: %s;\n", c.Name, typ)
			} else {
				fmt.Fprintf(&b, "  %s?: %s | null;\n", c.Name, typ)
			}
		}
		if edges {
			for _, rel := range e.Relations {
				if !cfg.Include(rel.Target) || s.Entity(rel.Target) == nil {
					continue
				}
				target := rel.Target
				if rel.Kind == schema.OneToMany || rel.Kind == schema.ManyToMany {
					target += "[]"
				}
				fmt.Fprintf(&b, "  %s?: %s;\n", rel.Name, target)
			}
		}
		b.WriteString("}\n")
	}

	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	fmt.Fprintf(&b, "\nexport const Entities = [%s] as const;\n", strings.Join(quoted, ", "))
	b.WriteString("\nexport type EntityName = (typeof Entities)[number];\n")

	return map[string][]byte{
		"models.ts": b.Bytes(),
		"index.ts":  []byte("// Code generated by chameleon. DO NOT EDIT.\n\nexport * from \"./models\";\n"),
	}, nil
}

func tsType(t schema.FieldType) (string, error) {
	switch t {
	case schema.TypeUUID, schema.TypeString, schema.TypeDecimal, schema.TypeTimestamp, schema.TypeDate:
		return "string", nil
	case schema.TypeInteger, schema.TypeFloat:
		return "number", nil
	case schema.TypeBoolean:
		return "boolean", nil
	case schema.TypeJSON:
		return "unknown", nil
	}
	return "", fmt.Errorf("no TypeScript type for field type %q", t)
}
