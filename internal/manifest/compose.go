package manifest

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"ferry/internal/errors"
)

// ComposeFile represents the subset of a compose manifest ferry cares about.
type ComposeFile struct {
	Version  string                     `yaml:"version"`
	Services map[string]*ComposeService `yaml:"services"`
}

// ComposeService represents a service in a compose manifest
type ComposeService struct {
	Image         string        `yaml:"image"`
	Build         *BuildConfig  `yaml:"build"`
	Ports         []string      `yaml:"ports"`
	DependsOn     StringOrSlice `yaml:"depends_on"`
	ContainerName string        `yaml:"container_name"`
}

// BuildConfig represents a service build configuration
type BuildConfig struct {
	Context    string `yaml:"context"`
	Dockerfile string `yaml:"dockerfile"`
}

// UnmarshalYAML accepts both the short string form and the mapping form of
// a build block.
func (b *BuildConfig) UnmarshalYAML(value *yaml.Node) error {
	var context string
	if err := value.Decode(&context); err == nil {
		b.Context = context
		return nil
	}

	type rawBuild BuildConfig
	var raw rawBuild
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*b = BuildConfig(raw)
	return nil
}

// StringOrSlice can be either a string or a slice of strings
type StringOrSlice []string

func (s *StringOrSlice) UnmarshalYAML(value *yaml.Node) error {
	var multi []string
	err := value.Decode(&multi)
	if err != nil {
		var single string
		if err := value.Decode(&single); err != nil {
			// depends_on also appears as a map of conditions
			var asMap map[string]yaml.Node
			if err := value.Decode(&asMap); err != nil {
				return err
			}
			for name := range asMap {
				*s = append(*s, name)
			}
			sort.Strings(*s)
			return nil
		}
		*s = []string{single}
	} else {
		*s = multi
	}
	return nil
}

// ParseComposeFile reads and parses a compose manifest. A manifest that
// parses but declares no services is rejected.
func ParseComposeFile(path string) (*ComposeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithDetails(errors.ErrManifestInvalid,
			"Failed to read compose manifest", path, err)
	}

	var compose ComposeFile
	if err := yaml.Unmarshal(data, &compose); err != nil {
		return nil, errors.WrapWithDetails(errors.ErrManifestInvalid,
			"Failed to parse compose manifest", path, err)
	}

	if len(compose.Services) == 0 {
		return nil, errors.NewWithDetails(errors.ErrManifestInvalid,
			"Compose manifest declares no services", path)
	}

	return &compose, nil
}

// ServiceNames returns the declared service names, sorted for stable output.
func (c *ComposeFile) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for name := range c.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PublishedPorts lists every host port published by any service, as raw
// compose port strings.
func (c *ComposeFile) PublishedPorts() []string {
	var ports []string
	for _, name := range c.ServiceNames() {
		svc := c.Services[name]
		for _, p := range svc.Ports {
			ports = append(ports, fmt.Sprintf("%s (%s)", strings.TrimSpace(p), name))
		}
	}
	return ports
}
