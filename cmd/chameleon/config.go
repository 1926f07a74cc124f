package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var configShowSource bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect chameleon.yaml settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as YAML",
	Long: `Print the configuration chameleon will run with: built-in defaults,
overridden by chameleon.yaml, overridden by CHAMELEON_* environment variables.`,
	Example: `  chameleon config show
  chameleon config show --source
  CHAMELEON_NAMING=snake_plural chameleon config show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if configShowSource {
			source := configPath
			if source == "" {
				source = "(none, using defaults)"
			}
			_, _ = fmt.Fprintf(w, "Config file: %s\n\n", source)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("rendering config: %w", err)
		}
		_, err = w.Write(data)
		return err
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowSource, "source", false, "print which config file was loaded")
	configCmd.AddCommand(configShowCmd)
}
