// Package observability groups logging, metrics, tracing and SLO
// indicators for the API and worker binaries.
//
// Subpackages:
//   - logging: slog loggers with request ID propagation
//   - metrics: Prometheus collectors and Record* helpers
//   - tracing: OpenTelemetry spans for HTTP and the aggregation pipeline
//   - slo: feed availability and live search latency indicators
package observability
