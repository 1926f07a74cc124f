package main

import (
	"github.com/spf13/cobra"

	"github.com/dperalta86/chameleondb/internal/cli"
)

var mutateFlags requestFlags

var mutateCmd = &cobra.Command{
	Use:   "mutate [file|-]",
	Short: "Compile an insert, update or delete to SQL",
	Long: `Compile a JSON or YAML mutation against the schema and print the statement with
"?" placeholders and its ordered parameters.

Updates and deletes without filters are refused unless the mutation sets
"all_rows": true.`,
	Example: `  # Insert
  chameleon mutate -e '{"type":"insert","entity":"User","fields":{"name":"Ann"}}'

  # From a YAML file
  chameleon mutate mutations/rename.yaml --sql`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := readRequest(cmd, args, mutateFlags.inline)
		if err != nil {
			return err
		}
		engine, err := loadEngine(cfg.ResolvedSchema(mutateFlags.schema))
		if err != nil {
			return err
		}

		out, err := engine.CompileMutation(string(req), "")
		if err != nil {
			return cli.Classify("compiling mutation", err)
		}
		logger.Info("mutation compiled", "params", len(out.Params))
		return printSQL(cmd.OutOrStdout(), out.SQL, out.Params, mutateFlags.sqlOut)
	},
}

func init() {
	mutateFlags.register(mutateCmd)
}
