// Package launch starts the application containers on the remote host,
// tearing down any previous instance of the same deployment first.
package launch

import (
	"context"
	"fmt"
	"strings"

	"ferry/internal/constants"
	"ferry/internal/errors"
	"ferry/internal/logger"
	"ferry/internal/manifest"
	"ferry/internal/remote"
)

// Launcher runs docker and compose commands inside the remote work directory.
type Launcher struct {
	runner  remote.Runner
	workDir string
}

// New creates a Launcher operating in the default remote work directory.
func New(runner remote.Runner) *Launcher {
	return &Launcher{runner: runner, workDir: constants.RemoteWorkDir}
}

// Launch tears down any previous instance and starts the application
// according to the manifest kind. The application port is only used for
// the single-container Dockerfile path; compose files declare their own
// port mappings.
func (l *Launcher) Launch(ctx context.Context, m *manifest.Manifest, appPort int) error {
	if err := l.Teardown(ctx, m); err != nil {
		return err
	}

	switch m.Kind {
	case manifest.KindCompose:
		return l.launchCompose(ctx, m)
	case manifest.KindDockerfile:
		return l.launchDockerfile(ctx, appPort)
	default:
		return errors.LaunchFailed("no container build manifest to launch", nil)
	}
}

// Teardown stops and removes a previous instance of the deployment.
// It is a no-op when nothing from an earlier run is present.
func (l *Launcher) Teardown(ctx context.Context, m *manifest.Manifest) error {
	if m.Kind == manifest.KindCompose {
		cmd := l.inWorkDir(fmt.Sprintf("%s -f %s down --remove-orphans", l.composeBinary(ctx), m.RemoteFileName()))
		if _, err := l.runner.Run(ctx, cmd); err != nil {
			logger.Warnf("Compose teardown reported an error (continuing): %v", err)
		}
	}

	out, err := l.runner.Run(ctx, fmt.Sprintf("docker ps -aq --filter name=%s", constants.AppName))
	if err != nil {
		return errors.RemoteCommandFailed("docker ps", err)
	}
	if strings.TrimSpace(out) == "" {
		return nil
	}

	logger.Infof("Removing previous container %s", constants.AppName)
	for _, cmd := range []string{
		fmt.Sprintf("docker stop %s", constants.AppName),
		fmt.Sprintf("docker rm %s", constants.AppName),
	} {
		if _, err := l.runner.Run(ctx, cmd); err != nil {
			logger.Warnf("Teardown command %q failed (continuing): %v", cmd, err)
		}
	}
	return nil
}

func (l *Launcher) launchCompose(ctx context.Context, m *manifest.Manifest) error {
	cmd := l.inWorkDir(fmt.Sprintf("%s -f %s up -d --build", l.composeBinary(ctx), m.RemoteFileName()))
	logger.Infof("Starting services: %s", cmd)
	if out, err := l.runner.Run(ctx, cmd); err != nil {
		return errors.LaunchFailed(strings.TrimSpace(out), err)
	}
	l.report(ctx)
	return nil
}

func (l *Launcher) launchDockerfile(ctx context.Context, appPort int) error {
	image := fmt.Sprintf("%s:latest", constants.AppName)

	build := l.inWorkDir(fmt.Sprintf("docker build -t %s .", image))
	logger.Infof("Building image: %s", build)
	if out, err := l.runner.Run(ctx, build); err != nil {
		return errors.LaunchFailed(strings.TrimSpace(out), err)
	}

	run := fmt.Sprintf("docker run -d --name %s --restart unless-stopped -p %d:%d %s",
		constants.AppName, appPort, appPort, image)
	logger.Infof("Starting container: %s", run)
	if out, err := l.runner.Run(ctx, run); err != nil {
		return errors.LaunchFailed(strings.TrimSpace(out), err)
	}
	l.report(ctx)
	return nil
}

// composeBinary prefers the docker compose plugin and falls back to the
// standalone docker-compose binary on older installations.
func (l *Launcher) composeBinary(ctx context.Context) string {
	if _, err := l.runner.Run(ctx, "docker compose version"); err == nil {
		return "docker compose"
	}
	return "docker-compose"
}

func (l *Launcher) report(ctx context.Context) {
	out, err := l.runner.Run(ctx, `docker ps --format "table {{.Names}}\t{{.Status}}\t{{.Ports}}"`)
	if err != nil {
		logger.Warnf("Could not list running containers: %v", err)
		return
	}
	logger.Infof("Running containers:\n%s", strings.TrimSpace(out))
}

func (l *Launcher) inWorkDir(cmd string) string {
	return fmt.Sprintf("cd %s && %s", l.workDir, cmd)
}
