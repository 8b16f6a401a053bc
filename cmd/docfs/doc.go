// Package main is the docfs command line.
//
// docfs keeps a virtual file tree in a pluggable entry store (memory, a
// compressed snapshot file, or PostgreSQL) and exposes it through an
// interactive shell, one-shot commands and an HTTP API.
//
// Usage:
//
//	# Interactive shell over a snapshot file
//	docfs shell --backend snapshot --snapshot ./fs.snap
//
//	# Run one shell line
//	docfs exec ls -l /
//
//	# Serve the JSON API and WebSocket shell
//	docfs serve --config docfs.toml
//
//	# Copy a host directory in and a virtual directory out
//	docfs import ./docs /docs
//	docfs export /docs ./out
//
// Configuration comes from defaults, then the file named by --config or
// DOCFS_CONFIG, then environment variables, then flags.
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown of serve
package main
