package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dperalta86/chameleondb/internal/cli"
	"github.com/dperalta86/chameleondb/pkg/clientgen"
	"github.com/dperalta86/chameleondb/tooling"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate code from a schema",
}

var (
	genModelsLang     string
	genModelsSchema   string
	genModelsOutput   string
	genModelsPackage  string
	genModelsEntities []string
)

var generateModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Generate model types",
	Long: `Generate one record type per entity with a member per table column and the
relation members filled through joins.

Supported languages: ` + strings.Join(clientgen.Languages(), ", "),
	Example: `  # Go structs into internal/models
  chameleon generate models --lang go --output internal/models

  # TypeScript interfaces for two entities
  chameleon generate models --lang typescript --output web/src/models --entity User --entity Order

  # Print Go to stdout
  chameleon generate models`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := resolveString(genModelsLang, cfg.Generate.Models.Lang, "go")
		schemaPath := cfg.ResolvedSchema(genModelsSchema)
		output := resolveString(genModelsOutput, cfg.Generate.Models.Output)
		entities := genModelsEntities
		if len(entities) == 0 {
			entities = cfg.Generate.Models.Entities
		}

		if !slices.Contains(clientgen.Languages(), lang) {
			return cli.ConfigError(
				fmt.Sprintf("unknown language %q", lang),
				fmt.Errorf("supported languages: %s", strings.Join(clientgen.Languages(), ", ")),
			)
		}

		s, err := tooling.LoadSchema(schemaPath)
		if err != nil {
			return cli.Classify("loading schema", err)
		}

		genCfg := &clientgen.GenerateConfig{
			Package:  resolveString(genModelsPackage, cfg.Generate.Models.Package, "models"),
			Entities: entities,
			Naming:   cfg.SchemaNaming(),
		}
		logger.Info("generating models", "lang", lang, "schema", schemaPath, "output", output)

		if output == "" {
			files, err := clientgen.Generate(lang, s, genCfg)
			if err != nil {
				return cli.Classify("generation failed", err)
			}
			names := make([]string, 0, len(files))
			for name := range files {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				if len(names) > 1 {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "// %s\n", name)
				}
				if _, err := cmd.OutOrStdout().Write(files[name]); err != nil {
					return cli.GeneralError("writing to stdout", err)
				}
			}
			return nil
		}

		paths, err := tooling.GenerateModels(s, lang, output, genCfg)
		if err != nil {
			return cli.Classify("generation failed", err)
		}
		if !quiet {
			for _, p := range paths {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Generated %s\n", p)
			}
		}
		return nil
	},
}

func init() {
	f := generateModelsCmd.Flags()
	f.StringVar(&genModelsLang, "lang", "", "target language: "+strings.Join(clientgen.Languages(), ", "))
	f.StringVar(&genModelsSchema, "schema", "", "schema file or directory (default: from config)")
	f.StringVar(&genModelsOutput, "output", "", "output directory (default: stdout)")
	f.StringVar(&genModelsPackage, "package", "", "package name for Go (default: models)")
	f.StringSliceVar(&genModelsEntities, "entity", nil, "limit generation to these entities (repeatable)")
	generateCmd.AddCommand(generateModelsCmd)
}
