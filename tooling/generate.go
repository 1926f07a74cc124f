package tooling

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dperalta86/chameleondb/pkg/clientgen"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// GenerateConfig is an alias for clientgen.GenerateConfig.
// This allows users of the tooling package to configure code generation
// without importing the clientgen package separately.
type GenerateConfig = clientgen.GenerateConfig

// GenerateModels writes model code for lang into outDir and returns the
// written paths, sorted. A nil cfg uses the generator's defaults.
//
// Example:
//
//	s, _ := tooling.LoadSchema("schema")
//	paths, err := tooling.GenerateModels(s, "go", "internal/models", &tooling.GenerateConfig{
//	    Package: "models",
//	})
func GenerateModels(s *schema.Schema, lang, outDir string, cfg *GenerateConfig) ([]string, error) {
	files, err := clientgen.Generate(lang, s, cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	paths := make([]string, 0, len(files))
	for name, content := range files {
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, content, 0o644); err != nil { //nolint:gosec // generated source is not secret
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}
