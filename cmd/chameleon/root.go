package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dperalta86/chameleondb/internal/cli"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string
	logger     = slog.New(slog.NewTextHandler(io.Discard, nil))

	// Persistent flags
	cfgFile string
	verbose int
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "chameleon",
	Short: "Schema-driven SQL compiler",
	Long: `chameleon - Schema-driven SQL compiler

Chameleon reads entity schemas written in a small DSL and compiles them to
CREATE TABLE migrations, parameterized queries and mutations, and model types
for Go, TypeScript and Python.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = cli.NewLogger(os.Stderr, verbose, quiet)

		// No config needed
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}
		logger.Debug("configuration loaded", "path", configPath, "schema", cfg.Schema, "naming", cfg.Naming)

		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Command group IDs
const (
	groupSchema  = "schema"
	groupSQL     = "sql"
	groupCode    = "code"
	groupUtility = "utility"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover chameleon.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase verbosity (can be repeated)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupSchema, Title: "Schema:"},
		&cobra.Group{ID: groupSQL, Title: "SQL:"},
		&cobra.Group{ID: groupCode, Title: "Code:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	for _, c := range []*cobra.Command{parseCmd, validateCmd, doctorCmd, watchCmd} {
		c.GroupID = groupSchema
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{migrateCmd, queryCmd, mutateCmd} {
		c.GroupID = groupSQL
		rootCmd.AddCommand(c)
	}

	generateCmd.GroupID = groupCode
	rootCmd.AddCommand(generateCmd)

	configCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveBool returns true if any of the provided values is true.
func resolveBool(values ...bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}

// schemaArg returns the schema path from the first argument or the config.
func schemaArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Schema
}
