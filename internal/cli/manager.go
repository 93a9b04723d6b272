// Package cli assembles the ferry command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"ferry/internal/cli/commands"
)

// Manager handles CLI operations
type Manager struct {
	rootCmd *cobra.Command
}

// New creates a new CLI manager with all commands registered
func New() *Manager {
	m := &Manager{rootCmd: createRootCommand()}
	m.rootCmd.AddCommand(commands.DeployCommand())
	m.rootCmd.AddCommand(commands.HistoryCommand())
	m.rootCmd.AddCommand(commands.VersionCommand())
	return m
}

// Execute executes the CLI with the given arguments
func (m *Manager) Execute(args []string) error {
	return m.ExecuteWithContext(context.Background(), args)
}

// ExecuteWithContext executes the CLI with the given arguments and context
func (m *Manager) ExecuteWithContext(ctx context.Context, args []string) error {
	m.rootCmd.SetArgs(args)
	return m.rootCmd.ExecuteContext(ctx)
}
