package calendar_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/macbridge/internal/calendar"
	"github.com/teemow/macbridge/internal/server"
	"github.com/teemow/macbridge/internal/tools/common"
)

const defaultUpcomingDays = 7

// RegisterEventTools registers calendar_list_events and calendar_summary.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listOpts := []mcp.ToolOption{
		mcp.WithDescription("List the calendar events starting within the next days, sorted by start time"),
		mcp.WithNumber("days",
			mcp.Description("Number of days to look ahead (default: 7)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	}
	listOpts = append(listOpts, sourceArgs...)

	listEventsTool := mcp.NewTool("calendar_list_events", listOpts...)
	s.AddTool(listEventsTool, common.InstrumentedToolHandler("calendar_list_events", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc, time.Now())
		}))

	summaryOpts := []mcp.ToolOption{
		mcp.WithDescription("Summarize the calendar events of a date range: totals, per calendar, per day and the most common titles"),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("First date of the range (YYYY-MM-DD)"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Last date of the range, inclusive (YYYY-MM-DD)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	}
	summaryOpts = append(summaryOpts, sourceArgs...)

	summaryTool := mcp.NewTool("calendar_summary", summaryOpts...)
	s.AddTool(summaryTool, common.InstrumentedToolHandler("calendar_summary", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSummary(ctx, request, sc)
		}))

	return nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, now time.Time) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	days, err := common.IntArg(args, "days", defaultUpcomingDays)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if days <= 0 {
		return mcp.NewToolResultError("days must be positive"), nil
	}

	src, err := sc.EventSource(ctx, common.SourceSpecFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	now = now.In(sc.Location())
	events, err := src.Events(ctx, now, now.AddDate(0, 0, days))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	var b strings.Builder
	if err := calendar.WriteUpcoming(&b, nil, days, calendar.Upcoming(now, days, events)); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleSummary(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	loc := sc.Location()

	from, err := calendar.ParseDate(common.StringArg(args, "from"), loc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := calendar.ParseDate(common.StringArg(args, "to"), loc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	window, err := calendar.DateRange(from, to)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	src, err := sc.EventSource(ctx, common.SourceSpecFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	events, err := src.Events(ctx, window.Start, window.End)
	if err != nil {
		if errors.Is(err, calendar.ErrCalendarNotFound) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read events: %v", err)), nil
	}

	var b strings.Builder
	if err := calendar.WriteSummary(&b, nil, calendar.Summarize(window.Start, window.End, events)); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(b.String()), nil
}
