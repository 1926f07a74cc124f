package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dperalta86/chameleondb/pkg/schema"
)

// chdir moves into dir for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(oldCwd) })
	require.NoError(t, os.Chdir(dir))
}

// repo creates a temporary directory with a .git marker.
func repo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	return root
}

func samePath(t *testing.T, expected, actual string) {
	t.Helper()
	// macOS /var -> /private/var
	e, _ := filepath.EvalSymlinks(expected)
	a, _ := filepath.EvalSymlinks(actual)
	assert.Equal(t, e, a)
}

func TestFindConfigFile_ExplicitPath(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("schema: db.cham"), 0o644))

	path, err := findConfigFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, tmpFile, path)
}

func TestFindConfigFile_ExplicitPathNotFound(t *testing.T) {
	_, err := findConfigFile("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestFindConfigFile_AutoDiscovery(t *testing.T) {
	root := repo(t)
	configPath := filepath.Join(root, "chameleon.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("schema: db.cham"), 0o644))

	nested := filepath.Join(root, "deep", "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	chdir(t, nested)

	path, err := findConfigFile("")
	require.NoError(t, err)
	samePath(t, configPath, path)
}

func TestFindConfigFile_PrefersYamlOverYml(t *testing.T) {
	root := repo(t)
	yamlPath := filepath.Join(root, "chameleon.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("schema: yaml.cham"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "chameleon.yml"), []byte("schema: yml.cham"), 0o644))
	chdir(t, root)

	path, err := findConfigFile("")
	require.NoError(t, err)
	samePath(t, yamlPath, path)
}

func TestFindConfigFile_StopsAtGitRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "chameleon.yaml"), []byte("schema: above.cham"), 0o644))

	project := filepath.Join(root, "project")
	require.NoError(t, os.MkdirAll(filepath.Join(project, ".git"), 0o755))
	chdir(t, project)

	path, err := findConfigFile("")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, repo(t))

	cfg, configPath, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, configPath)

	assert.Equal(t, "schema", cfg.Schema)
	assert.Equal(t, "identity", cfg.Naming)
	assert.Equal(t, "migrations", cfg.Migrate.Dir)
	assert.False(t, cfg.Migrate.Force)
	assert.Equal(t, "go", cfg.Generate.Models.Lang)
	assert.Equal(t, "models", cfg.Generate.Models.Package)
	assert.Empty(t, cfg.Generate.Models.Entities)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, schema.Naming{Strategy: schema.NamingIdentity}, cfg.SchemaNaming())
}

func TestLoadConfig_FromFile(t *testing.T) {
	root := repo(t)
	configPath := filepath.Join(root, "chameleon.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
schema: db/schema
naming: snake_plural
migrate:
  dir: db/migrations
  split: true
generate:
  models:
    lang: typescript
    entities: [User, Order]
watch:
  debounce: 1s
`), 0o644))
	chdir(t, root)

	cfg, foundPath, err := LoadConfig("")
	require.NoError(t, err)
	samePath(t, configPath, foundPath)

	assert.Equal(t, "db/schema", cfg.Schema)
	assert.Equal(t, schema.Naming{Strategy: schema.NamingSnakePlural}, cfg.SchemaNaming())
	assert.Equal(t, "db/migrations", cfg.Migrate.Dir)
	assert.True(t, cfg.Migrate.Split)
	assert.Equal(t, "typescript", cfg.Generate.Models.Lang)
	assert.Equal(t, []string{"User", "Order"}, cfg.Generate.Models.Entities)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)

	// Defaults still apply to unset values
	assert.Equal(t, "models", cfg.Generate.Models.Package)
	assert.False(t, cfg.Migrate.DryRun)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	root := repo(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "chameleon.yaml"), []byte("schema: file.cham"), 0o644))
	chdir(t, root)

	t.Setenv("CHAMELEON_SCHEMA", "env.cham")
	t.Setenv("CHAMELEON_MIGRATE_DIR", "env-migrations")
	t.Setenv("CHAMELEON_GENERATE_MODELS_LANG", "python")

	cfg, _, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "env.cham", cfg.Schema)
	assert.Equal(t, "env-migrations", cfg.Migrate.Dir)
	assert.Equal(t, "python", cfg.Generate.Models.Lang)
}

func TestLoadConfig_UnknownNaming(t *testing.T) {
	root := repo(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "chameleon.yaml"), []byte("naming: kebab"), 0o644))
	chdir(t, root)

	_, _, err := LoadConfig("")
	assert.ErrorContains(t, err, `unknown naming strategy "kebab"`)
}

func TestResolvedSchema(t *testing.T) {
	cfg := &Config{Schema: "schema"}
	assert.Equal(t, "other.cham", cfg.ResolvedSchema("other.cham"))
	assert.Equal(t, "schema", cfg.ResolvedSchema(""))
}
