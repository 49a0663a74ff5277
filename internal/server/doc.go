// Package server holds the state shared by the macbridge CLI commands and
// MCP tools, plus the HTTP side of the MCP server.
//
// ServerContext carries the configuration, the scripting bridge runner and
// the telemetry recorders. It opens calendar event sources (Calendar.app,
// Google Calendar or a JSON file), caching the non-file ones, and wraps them
// so that every read is counted and traced. FindFreeSlots is the one entry
// point for free slot searches.
//
// MetricsServer exposes Prometheus metrics on a dedicated port and
// HealthChecker serves /healthz, /readyz and /healthz/detailed. HTTPServer
// serves the streamable HTTP MCP endpoint on loopback addresses.
package server
