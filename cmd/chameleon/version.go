package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dperalta86/chameleondb/internal/update"
	"github.com/dperalta86/chameleondb/internal/version"
)

var (
	versionShort bool
	versionCheck bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionShort {
			_, _ = fmt.Fprintln(out, version.Short())
		} else {
			_, _ = fmt.Fprintln(out, version.Info())
		}
		if !versionCheck {
			return nil
		}

		info, err := (&update.Checker{}).Check(cmd.Context(), version.Short())
		if err != nil {
			logger.Warn("update check failed", "error", err)
			return nil
		}
		if info.UpdateAvailable {
			_, _ = fmt.Fprintf(out, "A newer release is available: %s\n", info.LatestVersion)
			if info.ReleaseURL != "" {
				_, _ = fmt.Fprintf(out, "  %s\n", info.ReleaseURL)
			}
		} else if !quiet {
			_, _ = fmt.Fprintln(out, "You are on the latest release.")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version")
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check for a newer release")
}
