// Package common holds what every macbridge MCP tool shares: argument
// helpers and the instrumentation wrapper that traces, counts and audits
// each call.
package common
