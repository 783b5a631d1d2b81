// Package observability provides structured logging, Prometheus metrics,
// dependency health checks and graceful shutdown for the EdgeChat backend.
package observability
