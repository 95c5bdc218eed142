// Package config loads frogc.yaml, the per-project settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the settings file looked up in the working directory
const DefaultFile = "frogc.yaml"

// Config holds frogc settings
type Config struct {
	VM       VMConfig    `yaml:"vm"`
	Optimize *bool       `yaml:"optimize,omitempty"` // nil means enabled
	Trace    TraceConfig `yaml:"trace"`
}

// VMConfig locates the execution engine
type VMConfig struct {
	Path  string   `yaml:"path,omitempty"`  // explicit VM binary
	Flags []string `yaml:"flags,omitempty"` // extra arguments after "run <file>"
}

// TraceConfig controls compilation tracing
type TraceConfig struct {
	Enabled bool     `yaml:"enabled"`
	Filters []string `yaml:"filters,omitempty"` // phase globs
}

// Default returns the settings used when no file exists
func Default() *Config {
	return &Config{}
}

// OptimizeEnabled reports whether the optimizer should run
func (c *Config) OptimizeEnabled() bool {
	return c.Optimize == nil || *c.Optimize
}

// Load reads settings from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes settings from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
