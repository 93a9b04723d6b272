package cli

import (
	"github.com/spf13/cobra"
)

// createRootCommand creates the root command with global flags
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ferry",
		Short: "One-shot application deployment over SSH",
		Long: `ferry deploys a containerized application from a git repository to a
remote host in a single run. It clones or updates the repository, installs
docker and nginx on the target through its native package manager, transfers
the sources, starts the containers and puts a TLS-terminating nginx reverse
proxy in front of them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to showing help if no subcommand
			return cmd.Help()
		},
	}

	return rootCmd
}
