package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set via -ldflags at release time.
var (
	Version = "dev"
	Commit  = "unknown"
)

// VersionCommand creates the version command
func VersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "ferry %s (%s) %s/%s\n",
				Version, Commit, runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
