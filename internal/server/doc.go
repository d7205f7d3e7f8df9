// Package server exposes the daemon's operational HTTP surface.
//
// MetricsServer serves Prometheus metrics on /metrics next to the health
// endpoints of a HealthChecker:
//   - /healthz: liveness, always ok while the process runs
//   - /readyz: readiness, ok once a poll cycle has succeeded and the
//     process is not shutting down
//   - /healthz/detailed: uptime and the last poll cycle
//
// ServerContext carries the process lifetime so handlers can report a
// shutdown in progress.
package server
