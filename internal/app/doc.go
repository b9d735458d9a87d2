// Package app wires the pension fund comparison server together.
//
// NewApplication loads configuration, initializes logging and OpenTelemetry,
// loads the dataset snapshot and builds the HTTP router:
//
//	/api/v1/fund-types   distinct fund types
//	/api/v1/controls     owner and period choices for a fund type
//	/api/v1/date-range   resolved comparison window
//	/api/v1/tables       the five comparison tables
//	/healthz, /version   health and build information
//	/metrics             Prometheus exposition
//
// A missing snapshot is not fatal. The server starts degraded, readiness
// reports not_ready and fund queries answer 503 until the processor has
// written the snapshot and the server is restarted.
//
// Run blocks until SIGINT or SIGTERM and then shuts the server and the
// telemetry providers down within the configured shutdown timeout.
package app
