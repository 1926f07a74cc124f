package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dperalta86/chameleondb/internal/cli"
)

var queryFlags requestFlags

var queryCmd = &cobra.Command{
	Use:   "query [file|-]",
	Short: "Compile a query to SQL",
	Long: `Compile a JSON or YAML query against the schema and print the SELECT statement
with "?" placeholders and its ordered parameters.`,
	Example: `  # From a YAML file
  chameleon query queries/adults.yaml

  # Inline
  chameleon query -e '{"entity":"User","filters":[{"field":"age","op":"gte","value":21}]}'

  # From stdin, SQL only
  cat q.json | chameleon query - --sql`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := readRequest(cmd, args, queryFlags.inline)
		if err != nil {
			return err
		}
		engine, err := loadEngine(cfg.ResolvedSchema(queryFlags.schema))
		if err != nil {
			return err
		}

		out, err := engine.GenerateSQL(string(req), "")
		if err != nil {
			return cli.Classify("compiling query", err)
		}
		var res struct {
			SQL    string `json:"sql"`
			Params []any  `json:"params"`
		}
		if err := json.Unmarshal([]byte(out), &res); err != nil {
			return cli.GeneralError("decoding result", err)
		}
		logger.Info("query compiled", "params", len(res.Params))
		return printSQL(cmd.OutOrStdout(), res.SQL, res.Params, queryFlags.sqlOut)
	},
}

func init() {
	queryFlags.register(queryCmd)
}
