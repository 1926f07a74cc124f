package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dperalta86/chameleondb/internal/cli"
	"github.com/dperalta86/chameleondb/internal/doctor"
)

var (
	doctorSchema  string
	doctorDir     string
	doctorVerbose bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks",
	Long: `Check the configuration, schema files, table ordering, migration freshness and
query compilation of a schema project.`,
	Example: `  # Run health checks
  chameleon doctor

  # Show details for every check
  chameleon doctor --verbose`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := doctor.New(doctor.Options{
			ConfigPath:    configPath,
			SchemaPath:    cfg.ResolvedSchema(doctorSchema),
			MigrationsDir: resolveString(doctorDir, cfg.Migrate.Dir),
			Naming:        cfg.SchemaNaming(),
		})

		out := cmd.OutOrStdout()
		if !quiet {
			_, _ = fmt.Fprintln(out, "chameleon doctor - Health Check")
		}

		report, err := d.Run(cmd.Context())
		if err != nil {
			return cli.GeneralError("running doctor", err)
		}
		report.Print(out, resolveBool(doctorVerbose, cfg.Doctor.Verbose))

		if report.HasErrors() {
			return cli.GeneralError("health checks failed", nil)
		}
		return nil
	},
}

func init() {
	f := doctorCmd.Flags()
	f.StringVar(&doctorSchema, "schema", "", "schema file or directory (default: from config)")
	f.StringVar(&doctorDir, "dir", "", "migrations directory (default: from config)")
	f.BoolVar(&doctorVerbose, "verbose", false, "show detailed output")
}
