// Package middleware implements the per-request pipeline stages: request
// correlation, distributed rate limiting, bearer authentication, and usage
// accounting. Stages are composed into a fixed order by Chain; each stage
// can short-circuit to an error response through the shared envelope writer.
package middleware
