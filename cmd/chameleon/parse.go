package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dperalta86/chameleondb/internal/cli"
	"github.com/dperalta86/chameleondb/pkg/schema"
	"github.com/dperalta86/chameleondb/tooling"
)

var parseFormat bool

var parseCmd = &cobra.Command{
	Use:   "parse [path]",
	Short: "Print a schema as JSON",
	Long: `Parse a .cham file or a directory of them and print the merged schema in its
versioned JSON form. The schema is not validated; use 'chameleon check' for that.`,
	Example: `  # Print the configured schema as JSON
  chameleon parse

  # Reformat a schema file
  chameleon parse --format schema/shop.cham`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := schemaArg(args)
		logger.Debug("parsing schema", "path", path)

		s, err := tooling.ParseSchema(path)
		if err != nil {
			return cli.Classify("parsing schema", err)
		}

		out := cmd.OutOrStdout()
		if parseFormat {
			_, err := fmt.Fprint(out, schema.Format(s))
			return err
		}

		data, err := schema.Encode(s)
		if err != nil {
			return cli.GeneralError("encoding schema", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return cli.GeneralError("encoding schema", err)
		}
		buf.WriteByte('\n')
		_, err = buf.WriteTo(out)
		return err
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseFormat, "format", false, "print canonical DSL instead of JSON")
}
