// Package lockfile provides an advisory PID lock that keeps two
// deployments from running concurrently on the same machine.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"ferry/internal/constants"
	"ferry/internal/errors"
	"ferry/internal/logger"
	"ferry/internal/xdg"
)

// Lock is a held advisory lock. Release it when the deployment finishes.
type Lock struct {
	path string
}

// DefaultPath returns the lock location inside the ferry state directory.
func DefaultPath() (string, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "deploy.lock"), nil
}

// Acquire takes the lock at path, creating parent directories as needed.
// A lock left behind by a dead process is taken over; a lock held by a
// live process fails with ErrLockHeld.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, errors.Wrap(errors.ErrFileSystem, "Failed to create lock directory", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.FilePermissions)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			if cerr := f.Close(); cerr != nil {
				os.Remove(path)
				return nil, errors.Wrap(errors.ErrFileSystem, "Failed to write lock file", cerr)
			}
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, errors.Wrap(errors.ErrFileSystem, "Failed to create lock file", err)
		}

		pid, rerr := readPID(path)
		if rerr == nil && processAlive(pid) {
			return nil, errors.LockHeld(path, pid)
		}

		// Stale lock from a crashed run, take it over.
		logger.Warnf("Removing stale lock %s (PID %d is gone)", path, pid)
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, errors.Wrap(errors.ErrFileSystem, "Failed to remove stale lock", rmErr)
		}
	}
	return nil, errors.LockHeld(path, 0)
}

// Release removes the lock file. Safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrFileSystem, "Failed to release lock", err)
	}
	return nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

func readPID(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(content)))
}

// processAlive reports whether a process with the given PID exists.
// Signal 0 performs the existence check without delivering anything.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || err == syscall.EPERM
}
