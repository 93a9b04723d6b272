// Package operations orchestrates the deployment pipeline: repository
// synchronization, manifest detection, host provisioning, artifact
// transfer, container launch and reverse proxy configuration.
package operations

import (
	"context"
	"os"

	"ferry/internal/config"
	"ferry/internal/constants"
	"ferry/internal/db"
	"ferry/internal/git"
	"ferry/internal/launch"
	"ferry/internal/logger"
	"ferry/internal/manifest"
	"ferry/internal/provision"
	"ferry/internal/proxy"
	"ferry/internal/remote"
)

// Stage names as recorded in the journal and logs.
const (
	StageSync      = "sync"
	StageManifest  = "manifest"
	StageConnect   = "connect"
	StageProvision = "provision"
	StageTransfer  = "transfer"
	StageLaunch    = "launch"
	StageProxy     = "proxy"
)

// session is the remote surface a deployment needs once connected:
// command execution and file placement.
type session interface {
	remote.Runner
	Upload(ctx context.Context, localDir, remoteDir string) error
	UploadBytes(content []byte, remotePath string, mode os.FileMode) error
	Close() error
}

// sshSession pairs an SSH client with its SFTP transporter.
type sshSession struct {
	client      *remote.Client
	transporter *remote.Transporter
}

func (s *sshSession) Run(ctx context.Context, command string) (string, error) {
	return s.client.Run(ctx, command)
}

func (s *sshSession) Upload(ctx context.Context, localDir, remoteDir string) error {
	return s.transporter.Upload(ctx, localDir, remoteDir)
}

func (s *sshSession) UploadBytes(content []byte, remotePath string, mode os.FileMode) error {
	return s.transporter.UploadBytes(content, remotePath, mode)
}

func (s *sshSession) Close() error {
	s.transporter.Close()
	return s.client.Close()
}

// Deployer runs the full deployment pipeline for one resolved
// configuration.
type Deployer struct {
	cfg      config.DeploymentConfig
	localDir string
	journal  *db.RunRepository

	// injectable for tests
	syncRepo func(ctx context.Context) (git.Action, error)
	connect  func(ctx context.Context) (session, error)
}

// New creates a Deployer that checks the repository out into localDir.
// journal may be nil; journal failures never fail a deployment.
func New(cfg config.DeploymentConfig, localDir string, journal *db.RunRepository) *Deployer {
	d := &Deployer{cfg: cfg, localDir: localDir, journal: journal}
	d.syncRepo = func(ctx context.Context) (git.Action, error) {
		return git.New(cfg.Token).Sync(ctx, cfg.RepoURL, cfg.Branch, localDir)
	}
	d.connect = func(ctx context.Context) (session, error) {
		client, err := remote.Dial(ctx, cfg.SSHUser, cfg.SSHHost, cfg.KeyPath)
		if err != nil {
			return nil, err
		}
		transporter, err := remote.NewTransporter(client)
		if err != nil {
			client.Close()
			return nil, err
		}
		return &sshSession{client: client, transporter: transporter}, nil
	}
	return d
}

// Run executes the pipeline. Stages run strictly in order and the first
// failure aborts the deployment.
func (d *Deployer) Run(ctx context.Context) error {
	run := d.recordStart(ctx)

	m, stage, err := d.run(ctx)
	d.recordFinish(ctx, run, m, stage, err)
	return err
}

func (d *Deployer) run(ctx context.Context) (*manifest.Manifest, string, error) {
	logger.Infof("Deploying %s (branch %s) to %s@%s", d.cfg.RepoURL, d.cfg.Branch, d.cfg.SSHUser, d.cfg.SSHHost)

	action, err := d.syncRepo(ctx)
	if err != nil {
		return nil, StageSync, stageErr(StageSync, err)
	}
	logger.Infof("Repository %s into %s", action, d.localDir)

	m, err := manifest.Detect(d.localDir)
	if err != nil {
		return nil, StageManifest, stageErr(StageManifest, err)
	}
	logger.Infof("Using %s", m)

	sess, err := d.connect(ctx)
	if err != nil {
		return m, StageConnect, stageErr(StageConnect, err)
	}
	defer sess.Close()

	if _, err := provision.New(sess, d.cfg.SSHUser).Provision(ctx); err != nil {
		return m, StageProvision, stageErr(StageProvision, err)
	}

	logger.Infof("Transferring %s to %s:%s", d.localDir, d.cfg.SSHHost, constants.RemoteWorkDir)
	if err := sess.Upload(ctx, d.localDir, constants.RemoteWorkDir); err != nil {
		return m, StageTransfer, stageErr(StageTransfer, err)
	}

	if err := launch.New(sess).Launch(ctx, m, d.cfg.AppPort); err != nil {
		return m, StageLaunch, stageErr(StageLaunch, err)
	}

	if err := proxy.New(sess, sess, d.cfg.SSHHost, d.cfg.AppPort).Configure(ctx); err != nil {
		return m, StageProxy, stageErr(StageProxy, err)
	}

	logger.Infof("Deployment complete: https://%s", d.cfg.SSHHost)
	return m, "", nil
}

func (d *Deployer) recordStart(ctx context.Context) *db.Run {
	if d.journal == nil {
		return nil
	}
	run := &db.Run{
		RepoURL: d.cfg.RepoURL,
		Branch:  d.cfg.Branch,
		Host:    d.cfg.SSHHost,
		AppPort: d.cfg.AppPort,
	}
	if err := d.journal.Create(ctx, run); err != nil {
		logger.Warnf("Could not record run in journal: %v", err)
		return nil
	}
	return run
}

func (d *Deployer) recordFinish(ctx context.Context, run *db.Run, m *manifest.Manifest, stage string, runErr error) {
	if d.journal == nil || run == nil {
		return
	}
	status := db.RunStatusSucceeded
	if runErr != nil {
		status = db.RunStatusFailed
	}
	kind := ""
	if m != nil {
		kind = string(m.Kind)
	}
	if err := d.journal.Finish(ctx, run.ID, status, stage, kind); err != nil {
		logger.Warnf("Could not finish run in journal: %v", err)
	}
}

// stageErr tags an error with the pipeline stage it happened in.
func stageErr(stage string, err error) error {
	logger.WithField("stage", stage).Errorf("Stage failed: %v", err)
	return err
}
