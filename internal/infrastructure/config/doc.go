// Package config provides 12-factor configuration management for docfs.
//
// Values are layered: built-in defaults, then an optional TOML or YAML file
// named by DOCFS_CONFIG (or the --config flag), then environment variables.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Store: backend selection (memory, snapshot, postgres) and its settings
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Fetch: timeouts, retries and limits for curl
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - DOCFS_CONFIG, DOCFS_BACKEND, DOCFS_SNAPSHOT, DOCFS_POSTGRES_URL, DOCFS_TABLE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - FETCH_TIMEOUT, FETCH_RETRIES, FETCH_RPS, FETCH_USER_AGENT, FETCH_MAX_REDIRECTS
package config
