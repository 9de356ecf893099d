// Package project locates and parses the small YAML project file the CLI
// (package cmd) uses to find map and scenario directories without the
// caller spelling out full paths on every invocation. Grounded on the
// teacher's venture.yaml project-root walk.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = "collide.yaml"

// Config is the project configuration loaded from collide.yaml.
type Config struct {
	// Name is a human-readable project name; the CLI does not read it.
	Name string `yaml:"name"`
	// MapsDir is the directory .bsp map files are resolved relative to.
	MapsDir string `yaml:"maps_dir"`
	// ScenariosDir is the directory YAML trace-scenario files are
	// resolved relative to.
	ScenariosDir string `yaml:"scenarios_dir"`
}

// FindRoot walks up from the current working directory looking for
// collide.yaml, returning the directory that contains it.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, configFileName)
		if _, err := os.Stat(configPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found in any parent directory of %s", configFileName, cwd)
		}
		dir = parent
	}
}

// LoadConfig loads and parses collide.yaml from the given project root.
func LoadConfig(root string) (*Config, error) {
	configPath := filepath.Join(root, configFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configFileName, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configFileName, err)
	}

	if config.MapsDir == "" {
		config.MapsDir = "maps"
	}
	if config.ScenariosDir == "" {
		config.ScenariosDir = "scenarios"
	}

	return &config, nil
}
