/*
Package monitoring provides Prometheus metrics for docfs.

# Overview

Metrics cover HTTP requests, entry store calls per backend and operation,
shell commands, outbound fetches and WebSocket shell sessions.

# Usage

	metrics := monitoring.NewMetrics()

	// Count and time every store call
	store = monitoring.InstrumentStore(store, metrics, "postgres")

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
