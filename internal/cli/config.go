package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dperalta86/chameleondb/pkg/schema"
)

const (
	maxWalkDepth = 25
	envPrefix    = "CHAMELEON"
)

// configNames are tried in order in every directory during discovery.
var configNames = []string{"chameleon.yaml", "chameleon.yml"}

// Config represents the chameleon configuration from chameleon.yaml.
type Config struct {
	// Schema is a .cham file or a directory of them.
	Schema string `mapstructure:"schema" json:"schema"`
	// Naming is the table and column naming strategy.
	Naming string `mapstructure:"naming" json:"naming"`

	Migrate  MigrateConfig  `mapstructure:"migrate" json:"migrate"`
	Generate GenerateConfig `mapstructure:"generate" json:"generate"`
	Doctor   DoctorConfig   `mapstructure:"doctor" json:"doctor"`
	Watch    WatchConfig    `mapstructure:"watch" json:"watch"`
}

// MigrateConfig holds migration settings.
type MigrateConfig struct {
	Dir    string `mapstructure:"dir" json:"dir"`
	DryRun bool   `mapstructure:"dry_run" json:"dry_run"`
	Force  bool   `mapstructure:"force" json:"force"`
	Split  bool   `mapstructure:"split" json:"split"`
}

// GenerateConfig holds code generation settings.
type GenerateConfig struct {
	Models ModelsConfig `mapstructure:"models" json:"models"`
}

// ModelsConfig holds model generation settings.
type ModelsConfig struct {
	Lang     string   `mapstructure:"lang" json:"lang"`
	Output   string   `mapstructure:"output" json:"output"`
	Package  string   `mapstructure:"package" json:"package"`
	Entities []string `mapstructure:"entities" json:"entities"`
}

// DoctorConfig holds doctor command settings.
type DoctorConfig struct {
	Verbose bool `mapstructure:"verbose" json:"verbose"`
}

// WatchConfig holds watch command settings.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" json:"debounce"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}
	if _, err := schema.ParseNamingStrategy(cfg.Naming); err != nil {
		return nil, configPath, err
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema", "schema")
	v.SetDefault("naming", string(schema.NamingIdentity))

	v.SetDefault("migrate.dir", "migrations")
	v.SetDefault("migrate.dry_run", false)
	v.SetDefault("migrate.force", false)
	v.SetDefault("migrate.split", false)

	v.SetDefault("generate.models.lang", "go")
	v.SetDefault("generate.models.output", "")
	v.SetDefault("generate.models.package", "models")
	v.SetDefault("generate.models.entities", []string{})

	v.SetDefault("doctor.verbose", false)

	v.SetDefault("watch.debounce", 300*time.Millisecond)
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for chameleon.yaml or chameleon.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Repo root
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}

// SchemaNaming returns the configured naming. LoadConfig has already
// rejected unknown strategies.
func (c *Config) SchemaNaming() schema.Naming {
	strategy, err := schema.ParseNamingStrategy(c.Naming)
	if err != nil {
		return schema.Naming{}
	}
	return schema.Naming{Strategy: strategy}
}

// ResolvedSchema returns the schema path for a command, with the flag
// value taking precedence over the configured one.
func (c *Config) ResolvedSchema(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return c.Schema
}
