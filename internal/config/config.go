// Package config collects and validates the deployment parameters. Values
// are resolved from CLI flags, FERRY_* environment variables, an optional
// ferry.toml defaults file, and finally interactive prompts, in that order.
// The resulting DeploymentConfig is immutable for the rest of the run and is
// passed by value into every stage.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"ferry/internal/constants"
	"ferry/internal/errors"
)

// knownHosts are the repository hosts the URL pattern is validated against.
var knownHosts = map[string]bool{
	"github.com":    true,
	"gitlab.com":    true,
	"bitbucket.org": true,
}

// repoPathRegex matches the owner/repo part of a repository URL.
var repoPathRegex = regexp.MustCompile(`^/[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+/?$`)

// DeploymentConfig holds every parameter a deployment run needs. It is
// immutable once resolved; the access token lives only in process memory.
type DeploymentConfig struct {
	RepoURL string
	Token   string
	Branch  string
	SSHUser string
	SSHHost string
	KeyPath string
	AppPort int
}

// AppName returns the fixed image/container name used on the remote host.
func (c DeploymentConfig) AppName() string {
	return constants.AppName
}

// RepoName extracts the repository name from the URL, without any .git suffix.
func (c DeploymentConfig) RepoName() string {
	parts := strings.Split(strings.TrimRight(c.RepoURL, "/"), "/")
	name := parts[len(parts)-1]
	return strings.TrimSuffix(name, ".git")
}

// FileConfig represents the optional ferry.toml defaults file. The access
// token is deliberately not representable here; it comes from the
// environment or the interactive prompt only.
type FileConfig struct {
	Deploy struct {
		RepoURL string `toml:"repo_url"`
		Branch  string `toml:"branch"`
		SSHUser string `toml:"ssh_user"`
		SSHHost string `toml:"ssh_host"`
		KeyPath string `toml:"key_path"`
		AppPort int    `toml:"app_port"`
	} `toml:"deploy"`
}

// LoadFile parses a ferry.toml defaults file. A missing file is not an
// error; it simply contributes nothing to resolution.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// DefaultFilePath returns the conventional location of ferry.toml: the
// current directory first, falling back to the XDG config directory.
func DefaultFilePath(configDir string) string {
	if _, err := os.Stat("ferry.toml"); err == nil {
		return "ferry.toml"
	}
	return filepath.Join(configDir, "ferry.toml")
}

// Validate checks every field of a fully resolved configuration. It returns
// the first violation found, matching the fail-fast contract of the
// parameter collector.
func (c DeploymentConfig) Validate() error {
	if c.RepoURL == "" {
		return errors.MissingField("repository URL")
	}
	if err := ValidateRepoURL(c.RepoURL); err != nil {
		return err
	}
	if c.Token == "" {
		return errors.MissingField("access token")
	}
	if c.Branch == "" {
		return errors.MissingField("branch")
	}
	if c.SSHUser == "" {
		return errors.MissingField("SSH username")
	}
	if c.SSHHost == "" {
		return errors.MissingField("SSH host")
	}
	if c.KeyPath == "" {
		return errors.MissingField("private key path")
	}
	if c.AppPort < 1 || c.AppPort > 65535 {
		return errors.InvalidPort(strconv.Itoa(c.AppPort))
	}
	return nil
}

// ValidateRepoURL checks that the URL is an https URL of a known host with
// an owner/repo path.
func ValidateRepoURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.InvalidRepoURL(raw, err.Error())
	}
	if u.Scheme != "https" {
		return errors.InvalidRepoURL(raw, "scheme must be https")
	}
	if !knownHosts[u.Host] {
		return errors.InvalidRepoURL(raw, fmt.Sprintf("unknown host %q", u.Host))
	}
	path := strings.TrimSuffix(u.Path, ".git")
	if !repoPathRegex.MatchString(path) {
		return errors.InvalidRepoURL(raw, "path must be owner/repo")
	}
	return nil
}

// ParsePort converts and range-checks a port string.
func ParsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.InvalidPort(raw)
	}
	if port < 1 || port > 65535 {
		return 0, errors.InvalidPort(raw)
	}
	return port, nil
}

// ExpandKeyPath expands a leading ~ in the private key path.
func ExpandKeyPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
