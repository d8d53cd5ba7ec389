// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uw-ictd/colte-log-uploader/lib/archive"
	"github.com/uw-ictd/colte-log-uploader/lib/pseudonym"
)

// EnvironmentVariable names the config file when --config is not given.
const EnvironmentVariable = "COLTE_EXPORT_CONFIG"

// Config is the exporter's configuration.
type Config struct {
	// Store locates the monitor's SQLite log store.
	Store StoreConfig `yaml:"store"`

	// Archive configures the output files.
	Archive ArchiveConfig `yaml:"archive"`

	// Pseudonym selects the identity digest.
	Pseudonym PseudonymConfig `yaml:"pseudonym"`

	// Metrics configures run metrics output.
	Metrics MetricsConfig `yaml:"metrics"`
}

// StoreConfig locates the log store.
type StoreConfig struct {
	// Path is the SQLite database file shared with the monitor.
	// Default: ${COLTE_STATE:-/var/lib/colte}/logs.db
	Path string `yaml:"path"`

	// BusyTimeout bounds waits for the monitor's write lock.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// LockPath is the run lock file. Empty means Path + ".export.lock".
	LockPath string `yaml:"lock_path"`

	// CreateSchema creates the monitor's tables when missing. Only
	// useful for fresh installs and testing.
	// Default: false
	CreateSchema bool `yaml:"create_schema"`
}

// ArchiveConfig configures the output archives.
type ArchiveConfig struct {
	// FlowPath and DNSPath are appended to by every run.
	// Defaults: flowlog_archive, dns_archive (relative to the working
	// directory)
	FlowPath string `yaml:"flow_path"`
	DNSPath  string `yaml:"dns_path"`

	// Compress enables stream compression with Compression.
	// Default: false
	Compress bool `yaml:"compress"`

	// Compression is "zstd" or "lz4".
	// Default: zstd
	Compression string `yaml:"compression"`

	// ProgressEvery is the record cadence of progress log lines;
	// negative disables them.
	// Default: 10000
	ProgressEvery int `yaml:"progress_every"`
}

// PseudonymConfig selects the identity digest.
type PseudonymConfig struct {
	// Algorithm is "sha256" or "blake3".
	// Default: sha256
	Algorithm string `yaml:"algorithm"`
}

// MetricsConfig configures metrics output.
type MetricsConfig struct {
	// TextfilePath, when set, receives Prometheus text-format metrics
	// after every run, for node_exporter's textfile collector.
	TextfilePath string `yaml:"textfile_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path:        "${COLTE_STATE:-/var/lib/colte}/logs.db",
			BusyTimeout: 5 * time.Second,
		},
		Archive: ArchiveConfig{
			FlowPath:      "flowlog_archive",
			DNSPath:       "dns_archive",
			Compression:   string(archive.CompressionZstd),
			ProgressEvery: archive.DefaultProgressEvery,
		},
		Pseudonym: PseudonymConfig{
			Algorithm: string(pseudonym.SHA256),
		},
	}
}

// Load loads the file named by COLTE_EXPORT_CONFIG, or returns the
// expanded defaults when it is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, layered over
// Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	c.Store.Path = expandVars(c.Store.Path)
	c.Store.LockPath = expandVars(c.Store.LockPath)
	c.Archive.FlowPath = expandVars(c.Archive.FlowPath)
	c.Archive.DNSPath = expandVars(c.Archive.DNSPath)
	c.Metrics.TextfilePath = expandVars(c.Metrics.TextfilePath)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// LockPath returns the run lock path, derived from Store.Path when not
// set explicitly.
func (c *Config) LockPath() string {
	if c.Store.LockPath != "" {
		return c.Store.LockPath
	}
	return c.Store.Path + ".export.lock"
}

// Compression returns the archive compression in effect: none unless
// Archive.Compress is set.
func (c *Config) Compression() (archive.Compression, error) {
	if !c.Archive.Compress {
		return archive.CompressionNone, nil
	}
	return archive.ParseCompression(c.Archive.Compression)
}

// Digest returns the configured pseudonym digest.
func (c *Config) Digest() (pseudonym.Digest, error) {
	return pseudonym.ParseDigest(c.Pseudonym.Algorithm)
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path is required"))
	}
	if c.Store.BusyTimeout < 0 {
		errs = append(errs, fmt.Errorf("store.busy_timeout must not be negative, got %v", c.Store.BusyTimeout))
	}
	if c.Archive.FlowPath == "" {
		errs = append(errs, fmt.Errorf("archive.flow_path is required"))
	}
	if c.Archive.DNSPath == "" {
		errs = append(errs, fmt.Errorf("archive.dns_path is required"))
	}
	if c.Archive.FlowPath != "" && c.Archive.FlowPath == c.Archive.DNSPath {
		errs = append(errs, fmt.Errorf("archive.flow_path and archive.dns_path must differ, both are %q", c.Archive.FlowPath))
	}
	if _, err := archive.ParseCompression(c.Archive.Compression); err != nil {
		errs = append(errs, fmt.Errorf("archive.compression: %w", err))
	}
	if _, err := c.Digest(); err != nil {
		errs = append(errs, fmt.Errorf("pseudonym.algorithm: %w", err))
	}

	return errors.Join(errs...)
}
