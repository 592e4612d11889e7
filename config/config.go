// Package config loads project settings from a .dtspp.yml file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by Find.
const FileName = ".dtspp.yml"

// Config mirrors the command-line flags. Relative directories are
// resolved against the directory holding the file.
type Config struct {
	IncludeDirs     []string `yaml:"include_dirs"`
	SystemDirs      []string `yaml:"system_dirs"`
	Defines         []string `yaml:"defines"`
	Strict          bool     `yaml:"strict"`
	Redefinition    string   `yaml:"redefinition"`
	MaxIncludeDepth int      `yaml:"max_include_depth"`
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolveDirs(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes a configuration document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Redefinition {
	case "", "last", "first":
	default:
		return fmt.Errorf("redefinition must be \"last\" or \"first\", got %q", c.Redefinition)
	}
	if c.MaxIncludeDepth < 0 {
		return fmt.Errorf("max_include_depth must not be negative")
	}
	return nil
}

func (c *Config) resolveDirs(base string) {
	for _, dirs := range [][]string{c.IncludeDirs, c.SystemDirs} {
		for i, d := range dirs {
			if !filepath.IsAbs(d) {
				dirs[i] = filepath.Join(base, d)
			}
		}
	}
}

// Find walks up from dir looking for FileName. It returns the path and
// true when one is found.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		p := filepath.Join(dir, FileName)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
