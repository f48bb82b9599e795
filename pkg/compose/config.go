package compose

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Lumeria1/aeroknite-genai-rag/pkg/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the subset of a docker-compose file this tool needs:
// the project name and the set of defined services. Unknown keys are
// ignored so any valid compose file parses.
type Config struct {
	Name     string                   `yaml:"name,omitempty"`
	Services map[string]ServiceConfig `yaml:"services"`
}

// ServiceConfig represents a single service entry
type ServiceConfig struct {
	Image         string             `yaml:"image,omitempty"`
	ContainerName string             `yaml:"container_name,omitempty"`
	Healthcheck   *HealthcheckConfig `yaml:"healthcheck,omitempty"`
}

// HealthcheckConfig marks whether a service declares its own healthcheck.
// Only presence and the disable flag matter here; the probe command itself
// is interpreted by the orchestration layer.
type HealthcheckConfig struct {
	Disable bool `yaml:"disable,omitempty"`
}

// LoadConfigFromFile loads a compose file from a YAML file
func LoadConfigFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError("failed to read compose file", err).WithContext("filename", filename)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.NewValidationError("failed to parse compose YAML", err).WithContext("filename", filename)
	}

	return &config, nil
}

// ProjectName resolves the compose project name used in container labels:
// the top-level "name" field when set, otherwise the name of the directory
// holding the compose file, normalized the way compose normalizes it.
func (c *Config) ProjectName(filename string) string {
	if c.Name != "" {
		return NormalizeProjectName(c.Name)
	}

	abs, err := filepath.Abs(filename)
	if err != nil {
		abs = filename
	}
	return NormalizeProjectName(filepath.Base(filepath.Dir(abs)))
}

// HasService reports whether the compose file defines the named service
func (c *Config) HasService(name string) bool {
	_, ok := c.Services[name]
	return ok
}

// ServiceNames returns the defined service names in sorted order
func (c *Config) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for name := range c.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizeProjectName lowercases the name and drops characters outside
// [a-z0-9_-], matching the compose project name rules. Leading characters
// that are not a letter or digit are stripped as well.
func NormalizeProjectName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-':
			if b.Len() > 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
