package commands

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferry/internal/config"
	"ferry/internal/logger"
)

func TestVersionCommand(t *testing.T) {
	cmd := VersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "ferry dev")
}

func TestDeployCommandFlags(t *testing.T) {
	cmd := DeployCommand()

	for _, name := range []string{
		"repo-url", "token", "branch", "ssh-user", "ssh-host",
		"key-path", "app-port", "config", "non-interactive",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

// The success line must flow through the logger so the dated log file
// mirrors it like every other status line.
func TestReportSuccessGoesThroughLogger(t *testing.T) {
	var out bytes.Buffer
	logger.Logger.SetOutput(&out)
	defer logger.Logger.SetOutput(os.Stdout)

	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	reportSuccess(config.DeploymentConfig{
		RepoURL: "https://github.com/acme/shop",
		SSHHost: "203.0.113.7",
	})

	assert.Contains(t, out.String(), "Deployment of shop to 203.0.113.7 succeeded")
}

func TestHistoryCommandHasLimitFlag(t *testing.T) {
	cmd := HistoryCommand()
	flag := cmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "20", flag.DefValue)
}
