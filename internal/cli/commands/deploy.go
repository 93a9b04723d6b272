// Package commands implements the ferry subcommands.
package commands

import (
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ferry/internal/config"
	"ferry/internal/db"
	"ferry/internal/lockfile"
	"ferry/internal/logger"
	"ferry/internal/operations"
	"ferry/internal/prompt"
	"ferry/internal/xdg"
)

// DeployCommand creates the deploy command
func DeployCommand() *cobra.Command {
	var (
		flags          config.Flags
		configPath     string
		nonInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy an application to a remote host",
		Long: `Deploy clones or updates the configured repository, provisions the
remote host over SSH, transfers the sources, starts the containers and
configures nginx as a TLS-terminating reverse proxy.

Parameters are resolved from flags, FERRY_* environment variables and the
ferry.toml config file, in that order. Anything still missing is asked
interactively. The access token is never read from or written to the
config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, flags, configPath, nonInteractive)
		},
	}

	cmd.Flags().StringVar(&flags.RepoURL, "repo-url", "", "HTTPS URL of the repository to deploy")
	cmd.Flags().StringVar(&flags.Token, "token", "", "access token for the repository")
	cmd.Flags().StringVar(&flags.Branch, "branch", "", "branch to deploy (default main)")
	cmd.Flags().StringVar(&flags.SSHUser, "ssh-user", "", "SSH username on the target host")
	cmd.Flags().StringVar(&flags.SSHHost, "ssh-host", "", "target host name or IP")
	cmd.Flags().StringVar(&flags.KeyPath, "key-path", "", "path to the SSH private key")
	cmd.Flags().IntVar(&flags.AppPort, "app-port", 0, "port the application listens on")
	cmd.Flags().StringVar(&configPath, "config", "", "path to ferry.toml (default in the XDG config directory)")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "fail instead of prompting for missing parameters")

	return cmd
}

func runDeploy(cmd *cobra.Command, flags config.Flags, configPath string, nonInteractive bool) error {
	// The tee is closed at the app layer, after any final error is logged.
	if err := logger.TeeToDatedFile(); err != nil {
		logger.Warnf("Could not open log file: %v", err)
	}

	lockPath, err := lockfile.DefaultPath()
	if err != nil {
		return err
	}
	lock, err := lockfile.Acquire(lockPath)
	if err != nil {
		return err
	}
	defer lock.Release()

	cfg, err := resolveConfig(flags, configPath, nonInteractive)
	if err != nil {
		return err
	}

	journal, closeJournal := openJournal()
	defer closeJournal()

	localDir, err := checkoutDir(cfg)
	if err != nil {
		return err
	}

	if err := operations.New(cfg, localDir, journal).Run(cmd.Context()); err != nil {
		return err
	}

	reportSuccess(cfg)
	return nil
}

// reportSuccess emits the final status line through the logger, keeping it
// in the dated log file alongside the rest of the run's output.
func reportSuccess(cfg config.DeploymentConfig) {
	logger.Info(color.GreenString("Deployment of %s to %s succeeded", cfg.RepoName(), cfg.SSHHost))
}

func resolveConfig(flags config.Flags, configPath string, nonInteractive bool) (config.DeploymentConfig, error) {
	if configPath == "" {
		if dir, err := xdg.ConfigDir(); err == nil {
			configPath = config.DefaultFilePath(dir)
		}
	}
	fileCfg, err := config.LoadFile(configPath)
	if err != nil {
		return config.DeploymentConfig{}, err
	}

	resolver := &config.Resolver{
		File:           fileCfg,
		Env:            os.Getenv,
		Prompter:       prompt.New(),
		NonInteractive: nonInteractive,
	}
	return resolver.Resolve(flags)
}

// openJournal opens the local deployment journal. The journal is an aid,
// not a requirement, so failures only log a warning.
func openJournal() (*db.RunRepository, func()) {
	database, err := db.New(nil)
	if err != nil {
		logger.Warnf("Deployment journal unavailable: %v", err)
		return nil, func() {}
	}
	if err := database.Migrate(); err != nil {
		logger.Warnf("Deployment journal migration failed: %v", err)
		database.Close()
		return nil, func() {}
	}
	return db.NewRunRepository(database), func() { database.Close() }
}

func checkoutDir(cfg config.DeploymentConfig) (string, error) {
	dataDir, err := xdg.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "checkouts", cfg.RepoName()), nil
}
