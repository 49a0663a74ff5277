package calendar_tools

import (
	"fmt"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/macbridge/internal/calendar"
	"github.com/teemow/macbridge/internal/server"
)

// RegisterCalendarTools registers all calendar tools with the MCP server.
// They only read calendars, so there is no read-only switch.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterSlotTools(s, sc); err != nil {
		return fmt.Errorf("failed to register slot tools: %w", err)
	}

	if err := RegisterEventTools(s, sc); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	return nil
}

// location returns the zone named by the timezone argument, or the
// configured one.
func location(sc *server.ServerContext, name string) (*time.Location, error) {
	if name == "" {
		return sc.Location(), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", name)
	}
	return loc, nil
}

// clock parses an optional HH:MM argument.
func clock(value string, def calendar.Clock) (calendar.Clock, error) {
	if value == "" {
		return def, nil
	}
	return calendar.ParseClock(value)
}
