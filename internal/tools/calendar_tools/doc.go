// Package calendar_tools provides the calendar MCP tools: free slot search
// for one date or a batch of dates, upcoming event listing and a date range
// summary. Events come from the source named in the call or the one
// configured in config.toml.
package calendar_tools
