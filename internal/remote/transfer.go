package remote

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/sftp"

	"ferry/internal/errors"
	"ferry/internal/logger"
)

// Transporter copies the local checkout to the remote working directory
// over SFTP. Uploads land in a staging directory that is swapped into place
// only after every file made it across, so a half-finished transfer never
// replaces a previous deployment.
type Transporter struct {
	sftp   *sftp.Client
	runner Runner
}

// NewTransporter opens an SFTP subsystem on an established connection.
func NewTransporter(client *Client) (*Transporter, error) {
	sc, err := sftp.NewClient(client.SSH())
	if err != nil {
		return nil, errors.TransferFailed("", fmt.Errorf("failed to open SFTP session: %w", err))
	}
	return &Transporter{sftp: sc, runner: client}, nil
}

// Upload recursively copies localDir into remoteDir. Version-control
// metadata is skipped. Any failure is fatal for the run.
func (t *Transporter) Upload(ctx context.Context, localDir, remoteDir string) error {
	staging := StagingPath(remoteDir)

	if err := t.uploadTree(ctx, localDir, staging); err != nil {
		// Best-effort cleanup of the partial staging tree
		t.runner.Run(ctx, fmt.Sprintf("rm -rf %s", staging))
		return err
	}

	swap := fmt.Sprintf("rm -rf %s && mv %s %s", remoteDir, staging, remoteDir)
	if _, err := t.runner.Run(ctx, swap); err != nil {
		return errors.TransferFailed(remoteDir, err)
	}

	logger.WithFields(logger.Fields{"local": localDir, "remote": remoteDir}).Info("Artifact transferred")
	return nil
}

func (t *Transporter) uploadTree(ctx context.Context, localDir, remoteDir string) error {
	if err := t.sftp.MkdirAll(remoteDir); err != nil {
		return errors.TransferFailed(remoteDir, err)
	}

	return filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.TransferFailed(p, err)
		}
		if ctx.Err() != nil {
			return errors.TransferFailed(p, ctx.Err())
		}

		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return errors.TransferFailed(p, err)
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}

		target := path.Join(remoteDir, filepath.ToSlash(rel))
		if d.IsDir() {
			if err := t.sftp.MkdirAll(target); err != nil {
				return errors.TransferFailed(target, err)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			// Symlinks and specials are not part of a deployable artifact
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return errors.TransferFailed(p, err)
		}
		if err := t.uploadOne(p, target, info.Mode().Perm()); err != nil {
			return err
		}
		return nil
	})
}

func (t *Transporter) uploadOne(localPath, remotePath string, mode os.FileMode) error {
	src, err := os.Open(localPath)
	if err != nil {
		return errors.TransferFailed(localPath, err)
	}
	defer src.Close()

	dst, err := t.sftp.Create(remotePath)
	if err != nil {
		return errors.TransferFailed(remotePath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.TransferFailed(remotePath, err)
	}
	if err := dst.Close(); err != nil {
		return errors.TransferFailed(remotePath, err)
	}

	if err := t.sftp.Chmod(remotePath, mode); err != nil {
		return errors.TransferFailed(remotePath, err)
	}
	return nil
}

// UploadBytes writes content to a single remote file with the given mode.
// Used for staging generated files (certificates, proxy configuration)
// before they are installed with elevated privileges.
func (t *Transporter) UploadBytes(content []byte, remotePath string, mode os.FileMode) error {
	dst, err := t.sftp.Create(remotePath)
	if err != nil {
		return errors.TransferFailed(remotePath, err)
	}
	if _, err := dst.Write(content); err != nil {
		dst.Close()
		return errors.TransferFailed(remotePath, err)
	}
	if err := dst.Close(); err != nil {
		return errors.TransferFailed(remotePath, err)
	}
	if err := t.sftp.Chmod(remotePath, mode); err != nil {
		return errors.TransferFailed(remotePath, err)
	}
	return nil
}

// Close shuts down the SFTP subsystem.
func (t *Transporter) Close() error {
	return t.sftp.Close()
}

// StagingPath derives the unique staging directory for a target directory.
func StagingPath(remoteDir string) string {
	return fmt.Sprintf("%s.staging-%s", remoteDir, uuid.New().String()[:8])
}
