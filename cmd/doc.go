// Package cmd implements the command-line interface for macbridge.
//
// This package provides the following commands:
//   - slots: Find free time slots on a date
//   - calendar upcoming, calendar summary: Calendar reports
//   - slides parse, preview, create, export: Markdown outlines to Keynote or PowerPoint
//   - serve: Start the MCP server to provide tools for AI assistants
//   - auth google: Authorize the Google Calendar event source
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
package cmd
