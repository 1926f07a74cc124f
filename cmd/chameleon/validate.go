package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	chameleon "github.com/dperalta86/chameleondb"
	"github.com/dperalta86/chameleondb/internal/cli"
	"github.com/dperalta86/chameleondb/tooling"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:     "validate [path]",
	Aliases: []string{"check"},
	Short:   "Validate a schema",
	Long: `Parse and validate a schema, reporting every semantic problem found.

With --json the result is printed as {"valid": bool, "errors": [...]}, one entry
per problem with its kind, message and file position, for editors and CI.`,
	Example: `  # Validate the configured schema
  chameleon validate

  # Editor-friendly output
  chameleon check --json schema/`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := schemaArg(args)
		logger.Debug("validating schema", "path", path)

		s, err := tooling.LoadSchema(path)

		if validateJSON {
			res := chameleon.ValidationResult{Valid: err == nil, Errors: []chameleon.ErrorInfo{}}
			if err != nil {
				res.Errors = chameleon.ErrorInfos(err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(res); encErr != nil {
				return cli.GeneralError("encoding result", encErr)
			}
			if err != nil {
				// Already reported on stdout
				return &cli.ExitError{Code: cli.ExitCode(cli.Classify("", err)), Message: "schema is invalid"}
			}
			return nil
		}

		if err != nil {
			return cli.Classify("schema is invalid", err)
		}

		if !quiet {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Schema is valid. Found %d entities:\n", len(s.Entities))
			for _, e := range s.Entities {
				_, _ = fmt.Fprintf(out, "  - %s (%d fields, %d relations)\n", e.Name, len(e.Fields), len(e.Relations))
			}
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print the result as JSON")
}
