// Package config loads the engine's YAML configuration.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable engine parameters.
type Config struct {
	// Root is the project root guards confine paths to. Empty means
	// the working directory of the evaluated event.
	Root string `yaml:"root"`
	// AllowPaths are extra absolute directories the agent may enter.
	AllowPaths []string `yaml:"allow_paths"`
	// InstallEntryPoint is the one install-script basename allowed to
	// exist.
	InstallEntryPoint string `yaml:"install_entry_point"`
	// ProtectedFiles are patterns for files the script-integrity guard
	// refuses to edit without an override.
	ProtectedFiles []string `yaml:"protected_files"`
	// BypassPatterns extend the built-in bypass indicators.
	BypassPatterns []string `yaml:"bypass_patterns"`
	// DisabledGuards lists guard names to skip. Disabling is an
	// administrative action; nothing at evaluation time can add to it.
	DisabledGuards []string `yaml:"disabled_guards"`
	// AuditLog is the JSONL log path. Empty means ~/.hookgate/audit.jsonl.
	AuditLog string `yaml:"audit_log"`
	// OverrideDir is the override code store. Empty means
	// ~/.hookgate/override.
	OverrideDir string `yaml:"override_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		InstallEntryPoint: "install.sh",
		ProtectedFiles: []string{
			"verify.sh",
			"*_test.go",
			".github",
		},
	}
}

// DefaultPath returns the default config location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "hookgate-config.yaml")
	}
	return filepath.Join(home, ".hookgate", "config.yaml")
}

// Load reads configuration from a YAML file. Empty path falls back to
// DefaultPath. Missing file returns defaults. Invalid YAML returns an
// error.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash loads configuration and returns the SHA-256 hash of the
// raw YAML bytes on disk, recorded in every audit record so a verdict
// can be traced to the exact configuration that produced it. When no
// file exists, the hash is the SHA-256 of empty input.
func LoadWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			return Default(), "sha256:" + hex.EncodeToString(h[:]), nil
		}
		return nil, "", fmt.Errorf("config: read %s: %w", path, err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	// Start with defaults; YAML overwrites only specified fields.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, hash, nil
}

// DefaultYAML returns a commented YAML string for `hookgate init`.
func DefaultYAML() string {
	return `# hookgate configuration
# Generated by: hookgate init

# Project root guards confine paths to. Empty = event's working directory.
root: ""

# Extra absolute directories the agent may cd into or edit under.
allow_paths: []

# The one installation-script basename allowed to exist.
install_entry_point: install.sh

# Files the script-integrity guard refuses to edit without an override
# code. Literal names match whole path segments, globs and /regex/ work
# too.
protected_files:
  - verify.sh
  - "*_test.go"
  - .github

# Extra bypass indicators on top of the built-in set.
bypass_patterns: []

# Guard names to disable. See: hookgate guards
disabled_guards: []

# Audit log path. Empty = ~/.hookgate/audit.jsonl
audit_log: ""

# Override code store directory. Empty = ~/.hookgate/override
override_dir: ""
`
}
