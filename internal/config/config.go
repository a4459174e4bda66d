// Package config loads the vero.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the project file name, looked up in the working directory.
const File = "vero.yaml"

// Starter is the vero.yaml written by `vero init`.
const Starter = `# vero project configuration
source: vero
output: e2e

# baseUrl makes NAVIGATE targets relative:
# baseUrl: https://staging.example.com

# vars seed the {{name}} lookups of every generated test:
# vars:
#   username: admin
`

// Config is the project configuration. Empty fields fall back to defaults.
type Config struct {
	Source  string            `yaml:"source"`  // directory of .vero files
	Output  string            `yaml:"output"`  // directory for generated specs
	BaseURL string            `yaml:"baseUrl"` // optional test.use baseURL
	Vars    map[string]string `yaml:"vars"`    // seed variables
}

// Default is the configuration of a project without a vero.yaml.
func Default() Config {
	return Config{Source: "vero", Output: "e2e"}
}

// Load reads vero.yaml from dir. A missing file is not an error; defaults
// apply.
func Load(dir string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, File))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", File, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", File, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = "vero"
	}
	if c.Output == "" {
		c.Output = "e2e"
	}
}

// DBPath is the compile catalog location, kept under the source directory.
func (c Config) DBPath() string {
	return filepath.Join(c.Source, "vero.db")
}
