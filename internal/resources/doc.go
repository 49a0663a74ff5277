// Package resources provides MCP resources for macbridge. Resources are
// read-only documents a client can fetch without calling a tool: the
// effective settings and the free slots of the current day.
package resources
