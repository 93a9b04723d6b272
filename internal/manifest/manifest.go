// Package manifest detects the container build manifest of a checkout and
// parses compose files. Detection drives the launch policy: a compose
// manifest is preferred over a bare Dockerfile.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"ferry/internal/errors"
)

// Kind classifies the build manifest found in a checkout.
type Kind string

const (
	// KindNone means no manifest is present
	KindNone Kind = "none"
	// KindDockerfile means a single-container Dockerfile build
	KindDockerfile Kind = "dockerfile"
	// KindCompose means a multi-container compose manifest
	KindCompose Kind = "compose"
)

// composeNames are the compose manifest filenames checked at the checkout
// root, in preference order.
var composeNames = []string{
	"docker-compose.yml",
	"docker-compose.yaml",
	"compose.yml",
	"compose.yaml",
}

// Manifest describes the build manifest of a checkout.
type Manifest struct {
	Kind     Kind
	Path     string   // absolute path to the manifest file
	Services []string // compose service names, empty for Dockerfile builds
}

// Detect inspects the checkout root for a build manifest. Compose wins over
// a Dockerfile when both exist. A compose manifest is parsed so that a
// syntactically broken or service-less file fails here, before any remote
// connection is made.
func Detect(dir string) (*Manifest, error) {
	for _, name := range composeNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cf, err := ParseComposeFile(path)
		if err != nil {
			return nil, err
		}
		return &Manifest{
			Kind:     KindCompose,
			Path:     path,
			Services: cf.ServiceNames(),
		}, nil
	}

	dockerfile := filepath.Join(dir, "Dockerfile")
	if _, err := os.Stat(dockerfile); err == nil {
		return &Manifest{Kind: KindDockerfile, Path: dockerfile}, nil
	}

	return nil, errors.ManifestMissing(dir)
}

// RemoteFileName returns the manifest filename as it exists in the remote
// working directory after transfer.
func (m *Manifest) RemoteFileName() string {
	return filepath.Base(m.Path)
}

// String renders a short operator-facing description.
func (m *Manifest) String() string {
	switch m.Kind {
	case KindCompose:
		return fmt.Sprintf("compose manifest %s (%d services)", filepath.Base(m.Path), len(m.Services))
	case KindDockerfile:
		return "single-container Dockerfile"
	default:
		return "no manifest"
	}
}
