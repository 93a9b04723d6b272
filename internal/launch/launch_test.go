package launch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferry/internal/errors"
	"ferry/internal/manifest"
	"ferry/internal/testutil"
)

func composeManifest() *manifest.Manifest {
	return &manifest.Manifest{Kind: manifest.KindCompose, Path: "/tmp/src/docker-compose.yml"}
}

func dockerfileManifest() *manifest.Manifest {
	return &manifest.Manifest{Kind: manifest.KindDockerfile, Path: "/tmp/src/Dockerfile"}
}

func TestLaunchCompose(t *testing.T) {
	runner := testutil.NewFakeRunner()

	err := New(runner).Launch(context.Background(), composeManifest(), 3000)
	require.NoError(t, err)

	up := runner.CommandMatching("up -d --build")
	assert.Equal(t, "cd ferry-app && docker compose -f docker-compose.yml up -d --build", up)
	assert.False(t, runner.Ran("docker build"), "compose deployments must not fall back to docker build")
	assert.True(t, runner.Ran("down --remove-orphans"))
}

func TestLaunchComposeFallsBackToStandaloneBinary(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.Failures["docker compose version"] = assert.AnError

	err := New(runner).Launch(context.Background(), composeManifest(), 3000)
	require.NoError(t, err)
	assert.Contains(t, runner.CommandMatching("up -d --build"), "docker-compose -f docker-compose.yml up")
}

func TestLaunchDockerfile(t *testing.T) {
	runner := testutil.NewFakeRunner()

	err := New(runner).Launch(context.Background(), dockerfileManifest(), 8080)
	require.NoError(t, err)

	assert.Equal(t, "cd ferry-app && docker build -t ferry-app:latest .", runner.CommandMatching("docker build"))
	assert.Equal(t,
		"docker run -d --name ferry-app --restart unless-stopped -p 8080:8080 ferry-app:latest",
		runner.CommandMatching("docker run"))
	assert.False(t, runner.Ran("up -d --build"), "Dockerfile deployments must not run compose")
}

func TestLaunchTeardownRemovesPreviousContainer(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.Outputs["docker ps -aq"] = "a1b2c3d4\n"

	err := New(runner).Launch(context.Background(), dockerfileManifest(), 8080)
	require.NoError(t, err)
	assert.True(t, runner.Ran("docker stop ferry-app"))
	assert.True(t, runner.Ran("docker rm ferry-app"))
}

func TestLaunchTeardownSkipsWhenNothingRunning(t *testing.T) {
	runner := testutil.NewFakeRunner()

	err := New(runner).Launch(context.Background(), dockerfileManifest(), 8080)
	require.NoError(t, err)
	assert.False(t, runner.Ran("docker stop"))
	assert.False(t, runner.Ran("docker rm "))
}

func TestLaunchComposeFailure(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.Failures["up -d --build"] = assert.AnError

	err := New(runner).Launch(context.Background(), composeManifest(), 3000)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrLaunchFailed))
}

func TestLaunchNoManifest(t *testing.T) {
	runner := testutil.NewFakeRunner()

	err := New(runner).Launch(context.Background(), &manifest.Manifest{Kind: manifest.KindNone}, 3000)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrLaunchFailed))
}
