package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferry/internal/errors"
)

// TestValidateRepoURL covers the host/owner/repo pattern check
func TestValidateRepoURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"github https", "https://github.com/acme/app", false},
		{"gitlab https", "https://gitlab.com/acme/app", false},
		{"bitbucket https", "https://bitbucket.org/acme/app", false},
		{"git suffix", "https://github.com/acme/app.git", false},
		{"trailing slash", "https://github.com/acme/app/", false},
		{"http scheme", "http://github.com/acme/app", true},
		{"ssh url", "git@github.com:acme/app.git", true},
		{"unknown host", "https://example.com/acme/app", true},
		{"missing repo", "https://github.com/acme", true},
		{"extra path", "https://github.com/acme/app/tree/main", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepoURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrInvalidRepoURL))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParsePort(t *testing.T) {
	port, err := ParsePort("8080")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	port, err = ParsePort(" 443 ")
	require.NoError(t, err)
	assert.Equal(t, 443, port)

	for _, bad := range []string{"", "abc", "0", "-1", "65536", "80.5"} {
		_, err := ParsePort(bad)
		assert.Error(t, err, "port %q should be rejected", bad)
		assert.True(t, errors.HasCode(err, errors.ErrInvalidPort))
	}
}

func TestValidateRejectsEmptyRequiredFields(t *testing.T) {
	base := DeploymentConfig{
		RepoURL: "https://github.com/acme/app",
		Token:   "ghp_x",
		Branch:  "main",
		SSHUser: "deploy",
		SSHHost: "203.0.113.10",
		KeyPath: "/home/me/.ssh/id_ed25519",
		AppPort: 8080,
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*DeploymentConfig)
		code   errors.ErrorCode
	}{
		{"no url", func(c *DeploymentConfig) { c.RepoURL = "" }, errors.ErrMissingField},
		{"no token", func(c *DeploymentConfig) { c.Token = "" }, errors.ErrMissingField},
		{"no branch", func(c *DeploymentConfig) { c.Branch = "" }, errors.ErrMissingField},
		{"no user", func(c *DeploymentConfig) { c.SSHUser = "" }, errors.ErrMissingField},
		{"no host", func(c *DeploymentConfig) { c.SSHHost = "" }, errors.ErrMissingField},
		{"no key", func(c *DeploymentConfig) { c.KeyPath = "" }, errors.ErrMissingField},
		{"bad port", func(c *DeploymentConfig) { c.AppPort = 0 }, errors.ErrInvalidPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	content := `
[deploy]
repo_url = "https://github.com/acme/app"
branch = "release"
ssh_user = "deploy"
ssh_host = "203.0.113.10"
key_path = "~/.ssh/deploy_key"
app_port = 3000
`
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "ferry.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/app", cfg.Deploy.RepoURL)
	assert.Equal(t, "release", cfg.Deploy.Branch)
	assert.Equal(t, "deploy", cfg.Deploy.SSHUser)
	assert.Equal(t, "203.0.113.10", cfg.Deploy.SSHHost)
	assert.Equal(t, "~/.ssh/deploy_key", cfg.Deploy.KeyPath)
	assert.Equal(t, 3000, cfg.Deploy.AppPort)
}

func TestLoadFileMissingIsEmpty(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, &FileConfig{}, cfg)
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ferry.toml")
	require.NoError(t, os.WriteFile(path, []byte("[deploy\nbroken"), 0644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestRepoName(t *testing.T) {
	cfg := DeploymentConfig{RepoURL: "https://github.com/acme/app.git"}
	assert.Equal(t, "app", cfg.RepoName())

	cfg.RepoURL = "https://github.com/acme/app/"
	assert.Equal(t, "app", cfg.RepoName())
}
