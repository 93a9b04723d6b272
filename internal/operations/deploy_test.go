package operations

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferry/internal/config"
	"ferry/internal/db"
	"ferry/internal/errors"
	"ferry/internal/git"
	"ferry/internal/testutil"
)

const osRelease = `ID=ubuntu
ID_LIKE=debian
VERSION_ID="22.04"
PRETTY_NAME="Ubuntu 22.04.4 LTS"
`

type fakeSession struct {
	*testutil.FakeRunner
	uploads     []string
	uploadBytes map[string][]byte
	uploadErr   error
	closed      bool
}

func newFakeSession() *fakeSession {
	runner := testutil.NewFakeRunner()
	runner.Outputs["os-release"] = osRelease
	return &fakeSession{FakeRunner: runner, uploadBytes: map[string][]byte{}}
}

func (s *fakeSession) Upload(_ context.Context, localDir, remoteDir string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads = append(s.uploads, localDir+" -> "+remoteDir)
	return nil
}

func (s *fakeSession) UploadBytes(content []byte, remotePath string, _ os.FileMode) error {
	s.uploadBytes[remotePath] = content
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func testConfig() config.DeploymentConfig {
	return config.DeploymentConfig{
		RepoURL: "https://github.com/acme/shop",
		Token:   "secret",
		Branch:  "main",
		SSHUser: "deploy",
		SSHHost: "203.0.113.7",
		KeyPath: "/home/me/.ssh/id_ed25519",
		AppPort: 3000,
	}
}

func testJournal(t *testing.T) *db.RunRepository {
	t.Helper()
	cfg := db.DefaultConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "ferry.db")
	database, err := db.New(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate())
	t.Cleanup(func() { database.Close() })
	return db.NewRunRepository(database)
}

// newTestDeployer wires a Deployer whose source directory already holds a
// compose file and whose remote side is fully scripted.
func newTestDeployer(t *testing.T, sess *fakeSession, journal *db.RunRepository) *Deployer {
	t.Helper()
	localDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(localDir, "docker-compose.yml"),
		[]byte("services:\n  web:\n    image: acme/shop\n"), 0644))

	d := New(testConfig(), localDir, journal)
	d.syncRepo = func(context.Context) (git.Action, error) { return git.ActionCloned, nil }
	d.connect = func(context.Context) (session, error) { return sess, nil }
	return d
}

func TestRunExecutesStagesInOrder(t *testing.T) {
	sess := newFakeSession()
	d := newTestDeployer(t, sess, nil)

	require.NoError(t, d.Run(context.Background()))

	// Provisioning happens before transfer, transfer before launch,
	// launch before the proxy reload.
	index := func(substring string) int {
		for i, cmd := range sess.Commands {
			if strings.Contains(cmd, substring) {
				return i
			}
		}
		return -1
	}
	install := index("apt-get install")
	up := index("up -d --build")
	reload := index("reload nginx")
	require.GreaterOrEqual(t, install, 0)
	require.GreaterOrEqual(t, up, 0)
	require.GreaterOrEqual(t, reload, 0)
	assert.Less(t, install, up)
	assert.Less(t, up, reload)

	require.Len(t, sess.uploads, 1)
	assert.Contains(t, sess.uploads[0], "ferry-app")
	assert.True(t, sess.closed)
}

func TestRunSyncFailureStopsPipeline(t *testing.T) {
	sess := newFakeSession()
	d := newTestDeployer(t, sess, nil)
	d.syncRepo = func(context.Context) (git.Action, error) {
		return "", errors.GitCloneFailed("https://github.com/acme/shop", assert.AnError)
	}

	err := d.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, sess.Commands, "no remote command may run after a sync failure")
	assert.False(t, sess.closed)
}

func TestRunProvisionFailureSkipsTransfer(t *testing.T) {
	sess := newFakeSession()
	sess.Failures["apt-get install"] = assert.AnError
	d := newTestDeployer(t, sess, nil)

	err := d.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrPackageInstall))
	assert.Empty(t, sess.uploads)
	assert.True(t, sess.closed)
}

func TestRunTransferFailureSkipsLaunch(t *testing.T) {
	sess := newFakeSession()
	sess.uploadErr = assert.AnError
	d := newTestDeployer(t, sess, nil)

	err := d.Run(context.Background())
	require.Error(t, err)
	assert.False(t, sess.Ran("docker build"))
	assert.False(t, sess.Ran("up -d --build"))
}

func TestRunRecordsJournal(t *testing.T) {
	journal := testJournal(t)
	sess := newFakeSession()
	d := newTestDeployer(t, sess, journal)

	require.NoError(t, d.Run(context.Background()))

	runs, err := journal.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, db.RunStatusSucceeded, runs[0].Status)
	assert.Equal(t, "compose", runs[0].ManifestKind)
	assert.Equal(t, "https://github.com/acme/shop", runs[0].RepoURL)
}

func TestRunRecordsFailedStage(t *testing.T) {
	journal := testJournal(t)
	sess := newFakeSession()
	sess.Failures["apt-get install"] = assert.AnError
	d := newTestDeployer(t, sess, journal)

	require.Error(t, d.Run(context.Background()))

	runs, err := journal.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, db.RunStatusFailed, runs[0].Status)
	assert.Equal(t, StageProvision, runs[0].Stage)
}

func TestRunManifestMissing(t *testing.T) {
	sess := newFakeSession()
	d := New(testConfig(), t.TempDir(), nil)
	d.syncRepo = func(context.Context) (git.Action, error) { return git.ActionPulled, nil }
	d.connect = func(context.Context) (session, error) { return sess, nil }

	err := d.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrManifestMissing))
	assert.Empty(t, sess.Commands)
}
