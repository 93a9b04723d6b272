package config

import (
	"ferry/internal/constants"
	"ferry/internal/errors"
)

// Prompter supplies interactive values for fields no other source provided.
// internal/prompt carries the terminal implementation; tests inject fakes.
type Prompter interface {
	// Ask prompts for a visible value. Required fields are re-asked on
	// empty input before the prompter gives up.
	Ask(label string, required bool) (string, error)
	// AskSecret prompts for a value without echoing it to the terminal.
	AskSecret(label string) (string, error)
}

// Flags carries the values supplied on the command line. Empty strings and
// zero ports mean "not set".
type Flags struct {
	RepoURL string
	Token   string
	Branch  string
	SSHUser string
	SSHHost string
	KeyPath string
	AppPort int
}

// Resolver merges the configuration sources in precedence order:
// flags > environment > ferry.toml > interactive prompt.
type Resolver struct {
	File           *FileConfig
	Env            func(string) string
	Prompter       Prompter
	NonInteractive bool
}

// Resolve produces a validated DeploymentConfig or the first validation
// error encountered.
func (r *Resolver) Resolve(flags Flags) (DeploymentConfig, error) {
	var cfg DeploymentConfig
	var err error

	file := r.File
	if file == nil {
		file = &FileConfig{}
	}

	cfg.RepoURL, err = r.resolveString(flags.RepoURL, "FERRY_REPO_URL", file.Deploy.RepoURL, "Repository URL", true, false)
	if err != nil {
		return cfg, err
	}
	cfg.Token, err = r.resolveString(flags.Token, "FERRY_TOKEN", "", "Access token", true, true)
	if err != nil {
		return cfg, err
	}
	cfg.Branch, err = r.resolveString(flags.Branch, "FERRY_BRANCH", file.Deploy.Branch, "Branch (default main)", false, false)
	if err != nil {
		return cfg, err
	}
	if cfg.Branch == "" {
		cfg.Branch = constants.DefaultBranch
	}
	cfg.SSHUser, err = r.resolveString(flags.SSHUser, "FERRY_SSH_USER", file.Deploy.SSHUser, "SSH username", true, false)
	if err != nil {
		return cfg, err
	}
	cfg.SSHHost, err = r.resolveString(flags.SSHHost, "FERRY_SSH_HOST", file.Deploy.SSHHost, "SSH host", true, false)
	if err != nil {
		return cfg, err
	}
	cfg.KeyPath, err = r.resolveString(flags.KeyPath, "FERRY_KEY_PATH", file.Deploy.KeyPath, "Private key path", true, false)
	if err != nil {
		return cfg, err
	}
	cfg.KeyPath = ExpandKeyPath(cfg.KeyPath)

	cfg.AppPort = flags.AppPort
	if cfg.AppPort == 0 {
		if raw := r.env("FERRY_APP_PORT"); raw != "" {
			cfg.AppPort, err = ParsePort(raw)
			if err != nil {
				return cfg, err
			}
		}
	}
	if cfg.AppPort == 0 {
		cfg.AppPort = file.Deploy.AppPort
	}
	if cfg.AppPort == 0 {
		raw, err := r.prompt("Application port", true, false)
		if err != nil {
			return cfg, err
		}
		cfg.AppPort, err = ParsePort(raw)
		if err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (r *Resolver) resolveString(flag, envKey, fileVal, label string, required, secret bool) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if v := r.env(envKey); v != "" {
		return v, nil
	}
	if fileVal != "" {
		return fileVal, nil
	}
	return r.prompt(label, required, secret)
}

func (r *Resolver) prompt(label string, required, secret bool) (string, error) {
	if r.NonInteractive || r.Prompter == nil {
		if required {
			return "", errors.MissingField(label)
		}
		return "", nil
	}
	if secret {
		return r.Prompter.AskSecret(label)
	}
	return r.Prompter.Ask(label, required)
}

func (r *Resolver) env(key string) string {
	if r.Env == nil {
		return ""
	}
	return r.Env(key)
}
