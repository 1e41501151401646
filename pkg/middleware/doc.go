// Package middleware provides observability middleware for the HTTP
// surface: Prometheus metrics and OpenTelemetry tracing.
//
// Both follow the same shape: a constructor with functional options
// returning a func(http.Handler) http.Handler, compatible with chi's
// Use().
package middleware
