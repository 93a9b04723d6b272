// Package provision prepares a remote host for container deployments:
// it detects the operating system, installs docker, compose and nginx
// through the native package manager, enables the services and creates
// the deployment work directory.
package provision

import (
	"context"
	"fmt"
	"strings"

	"ferry/internal/constants"
	"ferry/internal/errors"
	"ferry/internal/logger"
	"ferry/internal/remote"
)

// Provisioner installs and enables the deployment toolchain on a host.
type Provisioner struct {
	runner remote.Runner
	user   string
}

// New creates a Provisioner that runs commands as the given SSH user.
func New(runner remote.Runner, user string) *Provisioner {
	return &Provisioner{runner: runner, user: user}
}

// Provision detects the OS, installs the required packages and prepares
// the work directory. It fails before touching the host when the OS
// family is not supported.
func (p *Provisioner) Provision(ctx context.Context) (*OSInfo, error) {
	info, err := DetectOS(ctx, p.runner)
	if err != nil {
		return nil, err
	}
	if info.Family == FamilyUnsupported {
		return nil, errors.OSUnsupported(info.PrettyName)
	}
	logger.Infof("Detected remote OS: %s (%s family)", info.PrettyName, info.Family)

	if err := p.installPackages(ctx, info); err != nil {
		return nil, err
	}
	if err := p.enableServices(ctx); err != nil {
		return nil, err
	}
	if err := p.prepareWorkDir(ctx); err != nil {
		return nil, err
	}
	p.logVersions(ctx)
	return info, nil
}

func (p *Provisioner) installPackages(ctx context.Context, info *OSInfo) error {
	var cmds []string
	switch info.Family {
	case FamilyDebian:
		cmds = []string{
			"sudo apt-get update -y",
			"sudo apt-get install -y docker.io docker-compose nginx curl",
		}
	case FamilyFedora:
		cmds = []string{
			"sudo dnf install -y docker docker-compose nginx curl",
		}
	case FamilyRHEL:
		mgr := "yum"
		if info.VersionMajor >= 8 {
			mgr = "dnf"
		}
		cmds = []string{
			fmt.Sprintf("sudo %s install -y docker docker-compose nginx curl", mgr),
		}
	case FamilyArch:
		cmds = []string{
			"sudo pacman -Syu --noconfirm docker docker-compose nginx curl",
		}
	}

	for _, cmd := range cmds {
		logger.Infof("Installing packages: %s", cmd)
		if _, err := p.runner.Run(ctx, cmd); err != nil {
			return errors.PackageInstallFailed(cmd, err)
		}
	}
	return nil
}

func (p *Provisioner) enableServices(ctx context.Context) error {
	cmds := []string{
		"sudo systemctl enable --now docker",
		"sudo systemctl enable --now nginx",
		fmt.Sprintf("sudo usermod -aG docker %s", p.user),
	}
	for _, cmd := range cmds {
		if _, err := p.runner.Run(ctx, cmd); err != nil {
			return errors.RemoteCommandFailed(cmd, err)
		}
	}
	return nil
}

func (p *Provisioner) prepareWorkDir(ctx context.Context) error {
	cmd := fmt.Sprintf("mkdir -p %s", constants.RemoteWorkDir)
	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return errors.RemoteCommandFailed(cmd, err)
	}
	return nil
}

// logVersions records the installed tool versions. Failures here are
// informational only.
func (p *Provisioner) logVersions(ctx context.Context) {
	for _, cmd := range []string{"docker --version", "nginx -v 2>&1"} {
		out, err := p.runner.Run(ctx, cmd)
		if err != nil {
			logger.Warnf("Could not read version via %q: %v", cmd, err)
			continue
		}
		logger.Infof("%s", strings.TrimSpace(out))
	}
}
