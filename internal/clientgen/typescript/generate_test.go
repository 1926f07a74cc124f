package typescript_test

import (
	"strings"
	"testing"

	"github.com/dperalta86/chameleondb/internal/clientgen"
	"github.com/dperalta86/chameleondb/internal/clientgen/typescript"
	"github.com/dperalta86/chameleondb/pkg/parser"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

func TestGenerator_Interface(t *testing.T) {
	gen := &typescript.Generator{}

	t.Run("name returns typescript", func(t *testing.T) {
		if got := gen.Name(); got != "typescript" {
			t.Errorf("Name() = %q, want %q", got, "typescript")
		}
	})

	t.Run("default config has sensible values", func(t *testing.T) {
		cfg := gen.DefaultConfig()
		if cfg.Package != "" {
			t.Errorf("Package = %q, want empty (not used for TypeScript)", cfg.Package)
		}
	})
}

func TestGenerator_Generate(t *testing.T) {
	s, err := parser.ParseSchemaString(`
entity User {
    id: uuid primary,
    name: string required,
    age: integer,
    active: boolean default true,
    posts: [Post],
}

entity Post {
    id: integer primary,
    title: string required,
    body: json,
    user: User,
    relation tags: many_to_many Tag through PostTag,
}

entity Tag { id: integer primary, label: string required }
entity PostTag { id: integer primary, post: Post, tag: Tag }
`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := schema.Validate(s); err != nil {
		t.Fatalf("validate: %v", err)
	}

	gen := &typescript.Generator{}

	t.Run("returns multi-file map", func(t *testing.T) {
		files, err := gen.Generate(s, nil)
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}

		expectedFiles := []string{"models.ts", "index.ts"}
		if len(files) != len(expectedFiles) {
			t.Errorf("Generate returned %d files, want %d", len(files), len(expectedFiles))
		}
		for _, filename := range expectedFiles {
			if _, ok := files[filename]; !ok {
				t.Errorf("Generate should return %s file", filename)
			}
		}
		if !strings.Contains(string(files["index.ts"]), `export * from "./models";`) {
			t.Error("index.ts should re-export models")
		}
	})

	t.Run("models.ts contains interfaces", func(t *testing.T) {
		files, err := gen.Generate(s, nil)
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}

		code := string(files["models.ts"])
		for _, want := range []string{
			"export interface User {\n  id: string;\n  name: string;\n  age?: number | null;\n  active?: boolean | null;\n  posts?: Post[];\n}",
			"  body?: unknown | null;\n  user_id?: string | null;\n  user?: User;\n  tags?: Tag[];\n}",
			`export const Entities = ["User", "Post", "Tag", "PostTag"] as const;`,
			"export type EntityName = (typeof Entities)[number];",
		} {
			if !strings.Contains(code, want) {
				t.Errorf("models.ts should contain %q\n%s", want, code)
			}
		}
	})

	t.Run("entity filter and edges option", func(t *testing.T) {
		files, err := gen.Generate(s, &clientgen.Config{
			Entities: []string{"Post", "Tag"},
			Options:  map[string]any{"edges": true},
		})
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}

		code := string(files["models.ts"])
		if strings.Contains(code, "interface User") {
			t.Error("should skip entities outside the filter")
		}
		if strings.Contains(code, "user?: User") {
			t.Error("should skip edges to excluded entities")
		}
		if !strings.Contains(code, "tags?: Tag[];") {
			t.Error("should keep edges to included entities")
		}
	})
}

func TestRegistry_TypeScriptGeneratorRegistered(t *testing.T) {
	gen := clientgen.Get("typescript")
	if gen == nil {
		t.Fatal("TypeScript generator should be registered")
	}
}
