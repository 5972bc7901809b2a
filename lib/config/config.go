// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for huffpack services.
type Config struct {
	// Listen is the address the HTTP service binds to.
	// Default: 127.0.0.1:8090
	Listen string `yaml:"listen"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Limits configures upload and per-file size limits.
	Limits LimitsConfig `yaml:"limits"`

	// ShutdownTimeout is how long to wait for in-flight requests
	// during graceful shutdown. Default: 10s
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Data is the base directory for huffpack data.
	Data string `yaml:"data"`

	// Store is where compressed archives are kept.
	// Default: <data>/archives
	Store string `yaml:"store"`

	// Staging is where per-request scratch directories are created.
	// Default: <data>/staging
	Staging string `yaml:"staging"`
}

// LimitsConfig configures upload and per-file size limits.
type LimitsConfig struct {
	// MaxUploadBytes caps the total size of a single upload request.
	// Default: 64 MiB
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// MaxFileBytes caps the size of any single file within an upload.
	// Default: 16 MiB
	MaxFileBytes int64 `yaml:"max_file_bytes"`

	// AllowedExtensions lists the file extensions accepted for
	// compression, without the leading dot. Matching is
	// case-insensitive.
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// Store and Staging are left empty here and derived from the data
// root by [Config.Normalize]; callers that skip LoadFile must call
// Normalize themselves after applying any overrides.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultData := filepath.Join(homeDir, ".cache", "huffpack")

	return &Config{
		Listen: "127.0.0.1:8090",
		Paths: PathsConfig{
			Data: defaultData,
		},
		Limits: LimitsConfig{
			MaxUploadBytes: 64 << 20,
			MaxFileBytes:   16 << 20,
			AllowedExtensions: []string{
				"txt", "pdf", "png", "jpg", "jpeg", "gif", "docx", "csv",
			},
		},
		ShutdownTimeout: "10s",
	}
}

// Load loads configuration from the HUFFPACK_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if HUFFPACK_CONFIG is not set, this fails.
// This ensures deterministic, auditable configuration with no hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("HUFFPACK_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("HUFFPACK_CONFIG environment variable not set; " +
			"set it to the path of your huffpack.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do not
// override config values - this ensures deterministic, auditable configuration.
// The only expansion performed is ${HOME} and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	cfg.Normalize()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// Normalize fills derived defaults and canonicalizes values: empty
// store and staging paths are placed under the data root, and allowed
// extensions are lowercased with any leading dot stripped.
func (c *Config) Normalize() {
	if c.Paths.Store == "" {
		c.Paths.Store = filepath.Join(c.Paths.Data, "archives")
	}
	if c.Paths.Staging == "" {
		c.Paths.Staging = filepath.Join(c.Paths.Data, "staging")
	}

	for i, ext := range c.Limits.AllowedExtensions {
		c.Limits.AllowedExtensions[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HUFFPACK_DATA": c.Paths.Data,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Data = expandVars(c.Paths.Data, vars)
	vars["HUFFPACK_DATA"] = c.Paths.Data // Update for dependent paths.

	c.Paths.Store = expandVars(c.Paths.Store, vars)
	c.Paths.Staging = expandVars(c.Paths.Staging, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, fmt.Errorf("listen is required"))
	}

	if c.Paths.Data == "" {
		errs = append(errs, fmt.Errorf("paths.data is required"))
	}

	if c.Limits.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("limits.max_upload_bytes must be positive"))
	}
	if c.Limits.MaxFileBytes <= 0 {
		errs = append(errs, fmt.Errorf("limits.max_file_bytes must be positive"))
	}
	if c.Limits.MaxFileBytes > 0 && c.Limits.MaxUploadBytes > 0 &&
		c.Limits.MaxFileBytes > c.Limits.MaxUploadBytes {
		errs = append(errs, fmt.Errorf("limits.max_file_bytes (%d) exceeds limits.max_upload_bytes (%d)",
			c.Limits.MaxFileBytes, c.Limits.MaxUploadBytes))
	}

	if len(c.Limits.AllowedExtensions) == 0 {
		errs = append(errs, fmt.Errorf("limits.allowed_extensions must not be empty"))
	}
	for _, ext := range c.Limits.AllowedExtensions {
		if ext == "" {
			errs = append(errs, fmt.Errorf("limits.allowed_extensions contains an empty entry"))
			break
		}
	}

	if c.ShutdownTimeout != "" {
		d, err := time.ParseDuration(c.ShutdownTimeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("shutdown_timeout: %w", err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("shutdown_timeout must be positive, got %s", d))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ExtensionAllowed reports whether the file name carries an extension
// on the allow-list. Names without an extension are rejected. The
// config must have been normalized first.
func (c *Config) ExtensionAllowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	return slices.Contains(c.Limits.AllowedExtensions, ext)
}

// ShutdownGrace returns the parsed graceful shutdown timeout, or 10
// seconds when the configured value is empty or unparseable.
func (c *Config) ShutdownGrace() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Paths.Data,
		c.Paths.Store,
		c.Paths.Staging,
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
