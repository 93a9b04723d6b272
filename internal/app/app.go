// Package app wires the CLI together and maps errors to exit codes.
package app

import (
	"context"

	"ferry/internal/cli"
	"ferry/internal/errors"
	"ferry/internal/logger"
)

// App represents the main application
type App struct {
	CLI *cli.Manager
}

// New creates a new application instance
func New() *App {
	return &App{CLI: cli.New()}
}

// Run starts the application
func (a *App) Run(args []string) int {
	return a.RunWithContext(context.Background(), args)
}

// RunWithContext starts the application with a context for cancellation
// and returns the process exit code. The dated log tee is torn down here,
// after the final error line is logged, so failing runs are fully mirrored.
func (a *App) RunWithContext(ctx context.Context, args []string) int {
	defer logger.CloseTee()

	if err := a.CLI.ExecuteWithContext(ctx, args); err != nil {
		logger.Errorf("%v", err)
		return errors.ExitCodeFor(err)
	}
	return 0
}
