// Package gogen generates Go model structs from a schema using jennifer.
//
// Options:
//   - "edges" (bool, default true): add relation members (slices for to-many
//     relations, pointers for to-one) tagged db:"-".
//   - "pointers" (bool, default true): use pointer types for columns that
//     are not required.
package gogen

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dave/jennifer/jen"

	"github.com/dperalta86/chameleondb/internal/clientgen"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// FileName is the single file produced by the generator.
const FileName = "models_gen.go"

func init() {
	clientgen.Register(&Generator{})
}

// Generator implements clientgen.Generator for Go.
type Generator struct{}

// Name returns "go" as the language identifier.
func (g *Generator) Name() string { return "go" }

// DefaultConfig returns default configuration for Go code generation.
func (g *Generator) DefaultConfig() *clientgen.Config {
	return DefaultGenerateConfig()
}

// Generate returns a single models_gen.go file.
func (g *Generator) Generate(s *schema.Schema, cfg *clientgen.Config) (map[string][]byte, error) {
	var buf bytes.Buffer
	if err := GenerateGo(&buf, s, cfg); err != nil {
		return nil, err
	}
	return map[string][]byte{FileName: buf.Bytes()}, nil
}

// DefaultGenerateConfig returns the defaults: package "models", every
// entity, identity column names.
func DefaultGenerateConfig() *clientgen.Config {
	return &clientgen.Config{
		Package: "models",
		Options: map[string]any{"edges": true, "pointers": true},
	}
}

// GenerateGo writes formatted Go source for the entities of s.
func GenerateGo(w io.Writer, s *schema.Schema, cfg *clientgen.Config) error {
	if cfg == nil {
		cfg = DefaultGenerateConfig()
	}
	pkg := cfg.Package
	if pkg == "" {
		pkg = "models"
	}
	edges := cfg.BoolOption("edges", true)
	pointers := cfg.BoolOption("pointers", true)

	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by chameleon. DO NOT EDIT.")

	var entities []*schema.Entity
	for i := range s.Entities {
		if cfg.Include(s.Entities[i].Name) {
			entities = append(entities, &s.Entities[i])
		}
	}

	f.Comment("Entity names, as used in queries and mutations.")
	f.Const().DefsFunc(func(g *jen.Group) {
		for _, e := range entities {
			g.Id("Entity" + clientgen.ExportedName(e.Name)).Op("=").Lit(e.Name)
		}
	})

	for _, e := range entities {
		typeName := clientgen.ExportedName(e.Name)
		cols := s.Columns(e)
		used := make(map[string]bool, len(cols))

		f.Line()
		f.Commentf("%s is a row of table %s.", typeName, cfg.Naming.TableName(e.Name))
		var structErr error
		f.Type().Id(typeName).StructFunc(func(g *jen.Group) {
			for _, c := range cols {
				name := clientgen.ExportedName(c.Name)
				used[name] = true
				typ, err := goType(c.Type)
				if err != nil {
					structErr = fmt.Errorf("%s.%s: %w", e.Name, c.Name, err)
					return
				}
				optional := !c.Required
				if optional && pointers {
					typ = jen.Op("*").Add(typ)
				}
				jsonTag := c.Name
				if optional {
					jsonTag += ",omitempty"
				}
				g.Id(name).Add(typ).Tag(map[string]string{
					"json": jsonTag,
					"db":   cfg.Naming.ColumnName(c.Name),
				})
			}
			if !edges {
				return
			}
			for _, rel := range e.Relations {
				if !cfg.Include(rel.Target) || s.Entity(rel.Target) == nil {
					continue
				}
				name := clientgen.ExportedName(rel.Name)
				if used[name] {
					name += "Edge"
				}
				used[name] = true
				target := jen.Op("*").Id(clientgen.ExportedName(rel.Target))
				if rel.Kind == schema.OneToMany || rel.Kind == schema.ManyToMany {
					target = jen.Index().Add(target)
				}
				g.Id(name).Add(target).Tag(map[string]string{
					"json": rel.Name + ",omitempty",
					"db":   "-",
				})
			}
		})
		if structErr != nil {
			return structErr
		}

		f.Line()
		f.Commentf("Column names of table %s.", cfg.Naming.TableName(e.Name))
		f.Const().DefsFunc(func(g *jen.Group) {
			for _, c := range cols {
				g.Id(typeName + "Column" + clientgen.ExportedName(c.Name)).Op("=").Lit(cfg.Naming.ColumnName(c.Name))
			}
		})
	}

	return f.Render(w)
}

func goType(t schema.FieldType) (*jen.Statement, error) {
	switch t {
	case schema.TypeUUID:
		return jen.Qual("github.com/google/uuid", "UUID"), nil
	case schema.TypeString:
		return jen.String(), nil
	case schema.TypeInteger:
		return jen.Int64(), nil
	case schema.TypeFloat:
		return jen.Float64(), nil
	case schema.TypeDecimal:
		return jen.Qual("github.com/shopspring/decimal", "Decimal"), nil
	case schema.TypeBoolean:
		return jen.Bool(), nil
	case schema.TypeTimestamp, schema.TypeDate:
		return jen.Qual("time", "Time"), nil
	case schema.TypeJSON:
		return jen.Qual("encoding/json", "RawMessage"), nil
	}
	return nil, fmt.Errorf("no Go type for field type %q", t)
}
