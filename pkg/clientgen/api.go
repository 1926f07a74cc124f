// Package clientgen generates model code for the entities of a schema.
package clientgen

import (
	"fmt"
	"io"

	"github.com/dperalta86/chameleondb/internal/clientgen"
	gogen "github.com/dperalta86/chameleondb/internal/clientgen/go"
	_ "github.com/dperalta86/chameleondb/internal/clientgen/python"
	_ "github.com/dperalta86/chameleondb/internal/clientgen/typescript"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// GenerateConfig is an alias for clientgen.Config.
// This allows callers to configure code generation without importing an
// internal package.
type GenerateConfig = clientgen.Config

// DefaultGenerateConfig returns sensible defaults for Go code generation:
// package "models", every entity, pointer types for nullable columns and
// relation members.
func DefaultGenerateConfig() *GenerateConfig {
	return gogen.DefaultGenerateConfig()
}

// GenerateGo writes Go structs for the entities of a validated schema.
//
// Each entity becomes a struct with one member per table column, tagged
// with its JSON name and its column name, followed by relation members
// that are filled by the application:
//
//	type User struct {
//	    ID     uuid.UUID `db:"id" json:"id"`
//	    Name   string    `db:"name" json:"name"`
//	    Orders []*Order  `db:"-" json:"orders,omitempty"`
//	}
//
// Typical workflow (run via go:generate or build script):
//
//	s, _ := tooling.LoadSchema("schema")
//	f, _ := os.Create("internal/models/models_gen.go")
//	defer f.Close()
//	clientgen.GenerateGo(f, s, clientgen.DefaultGenerateConfig())
func GenerateGo(w io.Writer, s *schema.Schema, cfg *GenerateConfig) error {
	return gogen.GenerateGo(w, s, cfg)
}

// Languages returns the names accepted by Generate.
func Languages() []string {
	return clientgen.List()
}

// Generate runs the generator for lang and returns filename -> content.
// A nil cfg uses the generator's defaults.
func Generate(lang string, s *schema.Schema, cfg *GenerateConfig) (map[string][]byte, error) {
	gen := clientgen.Get(lang)
	if gen == nil {
		return nil, fmt.Errorf("unknown language %q (available: %v)", lang, clientgen.List())
	}
	if cfg == nil {
		cfg = gen.DefaultConfig()
	}
	return gen.Generate(s, cfg)
}
