// Package xdg provides XDG Base Directory Specification compliant paths
package xdg

import (
	"os"
	"path/filepath"
)

// ConfigDir returns the XDG config directory for ferry
// Priority: XDG_CONFIG_HOME > ~/.config/ferry
func ConfigDir() (string, error) {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ferry"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "ferry"), nil
}

// DataDir returns the XDG data directory for ferry
// Priority: XDG_DATA_HOME > ~/.local/share/ferry
func DataDir() (string, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "ferry"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "share", "ferry"), nil
}

// StateDir returns the XDG state directory for ferry
// Priority: XDG_STATE_HOME > ~/.local/state/ferry
func StateDir() (string, error) {
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		return filepath.Join(xdgState, "ferry"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "state", "ferry"), nil
}

// LogsDir returns the directory for storing log files
// Uses state directory as the base
func LogsDir() string {
	stateDir, err := StateDir()
	if err != nil {
		// Fallback to data directory
		dataDir, _ := DataDir()
		return filepath.Join(dataDir, "logs")
	}
	return filepath.Join(stateDir, "logs")
}
