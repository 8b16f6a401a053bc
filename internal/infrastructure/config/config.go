package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/docfs/internal/store/postgres"
)

// FileEnv names the environment variable holding an optional config file path.
const FileEnv = "DOCFS_CONFIG"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSnapshot = "snapshot"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Store     StoreConfig     `toml:"store" yaml:"store"`
	Logging   LogConfig       `toml:"logging" yaml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit" yaml:"rate_limit"`
	Fetch     FetchConfig     `toml:"fetch" yaml:"fetch"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" toml:"port" yaml:"port"`
	Host string `envconfig:"HOST" toml:"host" yaml:"host"`
}

// StoreConfig selects and configures the entry store backend.
type StoreConfig struct {
	Backend      string `envconfig:"DOCFS_BACKEND" toml:"backend" yaml:"backend"`
	SnapshotPath string `envconfig:"DOCFS_SNAPSHOT" toml:"snapshot_path" yaml:"snapshot_path"`
	PostgresURL  string `envconfig:"DOCFS_POSTGRES_URL" toml:"postgres_url" yaml:"postgres_url"`
	Table        string `envconfig:"DOCFS_TABLE" toml:"table" yaml:"table"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" toml:"level" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" toml:"development" yaml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" toml:"requests_per_second" yaml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" toml:"burst" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" toml:"enabled" yaml:"enabled"`
}

// FetchConfig holds outbound HTTP configuration for curl.
type FetchConfig struct {
	Timeout      Duration `envconfig:"FETCH_TIMEOUT" toml:"timeout" yaml:"timeout"`
	RetryCount   int      `envconfig:"FETCH_RETRIES" toml:"retry_count" yaml:"retry_count"`
	RateLimit    float64  `envconfig:"FETCH_RPS" toml:"rate_limit" yaml:"rate_limit"`
	UserAgent    string   `envconfig:"FETCH_USER_AGENT" toml:"user_agent" yaml:"user_agent"`
	MaxRedirects int      `envconfig:"FETCH_MAX_REDIRECTS" toml:"max_redirects" yaml:"max_redirects"`
}

// Duration is a time.Duration read from strings like "30s" in files and env.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load builds configuration from defaults, then the file named by
// DOCFS_CONFIG if set, then environment variables.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(FileEnv))
}

// LoadFile is Load with an explicit config file. An empty path skips the
// file layer.
func LoadFile(path string) (*Config, error) {
	cfg, err := LoadLayers(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLayers applies defaults, the file at path and the environment without
// validating, so callers can layer their own overrides before Validate.
func LoadLayers(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	// Defaults live in Default; envconfig only overrides what is set.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Store: StoreConfig{
			Backend:      BackendMemory,
			SnapshotPath: "docfs.snap",
			Table:        postgres.DefaultTable,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Fetch: FetchConfig{
			Timeout:      Duration(30 * time.Second),
			RetryCount:   3,
			RateLimit:    10,
			UserAgent:    "docfs/1.0",
			MaxRedirects: 10,
		},
	}
}

// Validate checks values that cannot be caught by type parsing.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendSnapshot:
		if c.Store.SnapshotPath == "" {
			return fmt.Errorf("store: snapshot backend requires DOCFS_SNAPSHOT")
		}
	case BackendPostgres:
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("store: postgres backend requires DOCFS_POSTGRES_URL")
		}
	default:
		return fmt.Errorf("store: unknown backend %q", c.Store.Backend)
	}
	if err := postgres.ValidateTable(c.Store.Table); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if c.Fetch.MaxRedirects < 0 {
		return fmt.Errorf("fetch: max redirects must not be negative")
	}
	if c.Fetch.RetryCount < 0 {
		return fmt.Errorf("fetch: retry count must not be negative")
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	case ".yaml", ".yml":
		err = yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField())
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
