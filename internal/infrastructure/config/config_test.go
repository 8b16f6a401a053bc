package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Store config
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "fs_entry", cfg.Store.Table)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Fetch config
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout.Std())
	assert.Equal(t, 10, cfg.Fetch.MaxRedirects)

	assert.NoError(t, cfg.Validate())
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                "9000",
		"HOST":                "127.0.0.1",
		"DOCFS_BACKEND":       "snapshot",
		"DOCFS_SNAPSHOT":      "/tmp/fs.snap",
		"DOCFS_TABLE":         "entries",
		"LOG_LEVEL":           "debug",
		"LOG_DEV":             "true",
		"RATE_LIMIT_RPS":      "500",
		"RATE_LIMIT_BURST":    "1000",
		"RATE_LIMIT_ENABLED":  "false",
		"FETCH_TIMEOUT":       "5s",
		"FETCH_RETRIES":       "1",
		"FETCH_RPS":           "2.5",
		"FETCH_USER_AGENT":    "test-agent",
		"FETCH_MAX_REDIRECTS": "0",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, BackendSnapshot, cfg.Store.Backend)
	assert.Equal(t, "/tmp/fs.snap", cfg.Store.SnapshotPath)
	assert.Equal(t, "entries", cfg.Store.Table)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout.Std())
	assert.Equal(t, 1, cfg.Fetch.RetryCount)
	assert.InDelta(t, 2.5, cfg.Fetch.RateLimit, 0.001)
	assert.Equal(t, "test-agent", cfg.Fetch.UserAgent)
	assert.Equal(t, 0, cfg.Fetch.MaxRedirects)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// defaults still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Fetch.RetryCount)
}

func TestLoadFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docfs.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = "7000"

[store]
backend = "snapshot"
snapshot_path = "/var/lib/docfs/fs.snap"

[fetch]
timeout = "45s"
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, BackendSnapshot, cfg.Store.Backend)
	assert.Equal(t, "/var/lib/docfs/fs.snap", cfg.Store.SnapshotPath)
	assert.Equal(t, 45*time.Second, cfg.Fetch.Timeout.Std())
}

func TestLoadFileYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docfs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
  host: "localhost"
logging:
  level: "debug"
rate_limit:
  burst: 5
`), 0o644))
	t.Setenv("PORT", "7100")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "7100", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadFromConfigEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docfs.yml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  table: custom_entries\n"), 0o644))
	t.Setenv(FileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "custom_entries", cfg.Store.Table)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	ini := filepath.Join(dir, "docfs.ini")
	require.NoError(t, os.WriteFile(ini, []byte("port=1"), 0o644))
	_, err = LoadFile(ini)
	assert.ErrorContains(t, err, "unsupported config format")

	unknown := filepath.Join(dir, "docfs.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("[server]\nbogus = 1\n"), 0o644))
	_, err = LoadFile(unknown)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "sqlite" }, true},
		{"postgres without url", func(c *Config) { c.Store.Backend = BackendPostgres }, true},
		{"postgres with url", func(c *Config) {
			c.Store.Backend = BackendPostgres
			c.Store.PostgresURL = "postgres://localhost/docfs"
		}, false},
		{"snapshot without path", func(c *Config) {
			c.Store.Backend = BackendSnapshot
			c.Store.SnapshotPath = ""
		}, true},
		{"injected table", func(c *Config) { c.Store.Table = "x; drop table y" }, true},
		{"negative redirects", func(c *Config) { c.Fetch.MaxRedirects = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("DOCFS_BACKEND", "nope")
	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
}

func TestLoadLayersSkipsValidation(t *testing.T) {
	t.Setenv("DOCFS_BACKEND", "nope")

	cfg, err := LoadLayers("")
	require.NoError(t, err)
	assert.Equal(t, "nope", cfg.Store.Backend)
	assert.Error(t, cfg.Validate())

	cfg.Store.Backend = BackendMemory
	assert.NoError(t, cfg.Validate())
}
