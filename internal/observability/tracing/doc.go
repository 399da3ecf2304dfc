// Package tracing wires OpenTelemetry spans into HTTP handlers and the
// aggregation pipeline. Without an installed provider every span is a no-op.
package tracing
