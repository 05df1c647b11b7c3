// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration of the sophia command, read
// from ~/.config/sophia/config.yaml unless --config points elsewhere.
type Config struct {
	// Prefixes expand prefixed names in filter, map and query terms.
	Prefixes map[string]string `yaml:"prefixes"`

	// Accept overrides the Accept header sent when fetching sources.
	Accept string `yaml:"accept"`

	// CacheDir is where remote JSON-LD contexts are cached. The
	// SOPHIA_CACHE_DIR environment variable takes precedence.
	CacheDir string `yaml:"cache_dir"`
}

// LoadConfig reads the configuration file. A missing default file is not
// an error; a missing explicit --config file is.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	defer func() {
		if env := os.Getenv("SOPHIA_CACHE_DIR"); env != "" {
			cfg.CacheDir = env
		}
	}()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", "sophia", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
