// Package python generates Python dataclasses from a schema.
//
// The generator produces models.py and an __init__.py that re-exports it.
// Columns that are required and have no default come first so that the
// dataclass fields without defaults precede the optional ones.
package python

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/dperalta86/chameleondb/internal/clientgen"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

func init() {
	clientgen.Register(&Generator{})
}

// Generator implements clientgen.Generator for Python.
type Generator struct{}

// Name returns "python" as the language identifier.
func (g *Generator) Name() string { return "python" }

// DefaultConfig returns default configuration for Python code generation.
func (g *Generator) DefaultConfig() *clientgen.Config {
	return &clientgen.Config{
		Package: "models",
		Options: map[string]any{"edges": true},
	}
}

// Generate returns models.py and __init__.py.
func (g *Generator) Generate(s *schema.Schema, cfg *clientgen.Config) (map[string][]byte, error) {
	if cfg == nil {
		cfg = g.DefaultConfig()
	}
	edges := cfg.BoolOption("edges", true)

	var b bytes.Buffer
	b.WriteString("# Code generated by chameleon. DO NOT EDIT.\n")
	b.WriteString("from __future__ import annotations\n\n")
	b.WriteString("import datetime\nimport decimal\nimport uuid\n")
	b.WriteString("from dataclasses import dataclass, field\n")
	b.WriteString("from typing import Any, Optional\n")

	var names []string
	for i := range s.Entities {
		e := &s.Entities[i]
		if !cfg.Include(e.Name) {
			continue
		}
		names = append(names, e.Name)

		cols := s.Columns(e)
		// Stable partition: mandatory columns first.
		sort.SliceStable(cols, func(i, j int) bool {
			return mandatory(cols[i]) && !mandatory(cols[j])
		})

		fmt.Fprintf(&b, "\n\n@dataclass\nclass %s:\n", e.Name)
		fmt.Fprintf(&b, "    \"\"\"Row of table %s.\"\"\"\n\n", cfg.Naming.TableName(e.Name))
		for _, c := range cols {
			typ, err := pyType(c.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", e.Name, c.Name, err)
			}
			if mandatory(c) {
				fmt.Fprintf(&b, "    %s: %s\n", c.Name, typ)
			} else {
				fmt.Fprintf(&b, "    %s: Optional[%s] = None\n", c.Name, typ)
			}
		}
		if edges {
			for _, rel := range e.Relations {
				if !cfg.Include(rel.Target) || s.Entity(rel.Target) == nil {
					continue
				}
				if rel.Kind == schema.OneToMany || rel.Kind == schema.ManyToMany {
					fmt.Fprintf(&b, "    %s: list[%s] = field(default_factory=list)\n", rel.Name, rel.Target)
				} else {
					fmt.Fprintf(&b, "    %s: Optional[%s] = None\n", rel.Name, rel.Target)
				}
			}
		}
	}

	var all bytes.Buffer
	all.WriteString("__all__ = [")
	for i, n := range names {
		if i > 0 {
			all.WriteString(", ")
		}
		fmt.Fprintf(&all, "%q", n)
	}
	all.WriteString("]\n")
	fmt.Fprintf(&b, "\n\n%s", all.String())

	initPy := "# Code generated by chameleon. DO NOT EDIT.\nfrom .models import *  # noqa: F401,F403\n"
	return map[string][]byte{
		"models.py":   b.Bytes(),
		"__init__.py": []byte(initPy),
	}, nil
}

func mandatory(c schema.Column) bool {
	return c.Required && c.Default == nil
}

func pyType(t schema.FieldType) (string, error) {
	switch t {
	case schema.TypeUUID:
		return "uuid.UUID", nil
	case schema.TypeString:
		return "str", nil
	case schema.TypeInteger:
		return "int", nil
	case schema.TypeFloat:
		return "float", nil
	case schema.TypeDecimal:
		return "decimal.Decimal", nil
	case schema.TypeBoolean:
		return "bool", nil
	case schema.TypeTimestamp:
		return "datetime.datetime", nil
	case schema.TypeDate:
		return "datetime.date", nil
	case schema.TypeJSON:
		return "Any", nil
	}
	return "", fmt.Errorf("no Python type for field type %q", t)
}
