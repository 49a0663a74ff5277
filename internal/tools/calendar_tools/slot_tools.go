package calendar_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/macbridge/internal/calendar"
	"github.com/teemow/macbridge/internal/server"
	"github.com/teemow/macbridge/internal/tools/batch"
	"github.com/teemow/macbridge/internal/tools/common"
)

var sourceArgs = []mcp.ToolOption{
	mcp.WithString("source",
		mcp.Description("Event source: 'apple' (Calendar.app), 'google' or 'file' (default from config)"),
		mcp.Enum("apple", "google", "file"),
	),
	mcp.WithString("calendar",
		mcp.Description("Only read the first calendar whose name contains this text, case-insensitively"),
	),
	mcp.WithString("account",
		mcp.Description("Google account name for the 'google' source (default: 'default')"),
	),
}

var queryArgs = []mcp.ToolOption{
	mcp.WithNumber("durationMinutes",
		mcp.Description("Minimum slot length in minutes (default from config, usually 60)"),
	),
	mcp.WithString("workdayStart",
		mcp.Description("Start of the workday (HH:MM, default from config)"),
	),
	mcp.WithString("workdayEnd",
		mcp.Description("End of the workday (HH:MM, default from config)"),
	),
	mcp.WithString("timezone",
		mcp.Description("IANA time zone of the workday, e.g. 'Europe/Berlin' (default from config)"),
	),
	mcp.WithBoolean("skipAllDay",
		mcp.Description("Ignore all-day events such as holidays (default from config)"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
}

// RegisterSlotTools registers calendar_find_free_slots and its batch variant.
func RegisterSlotTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Find free time slots of at least a minimum length within the workday of a date"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date to search (YYYY-MM-DD)"),
		),
	}
	opts = append(opts, queryArgs...)
	opts = append(opts, sourceArgs...)

	findSlotsTool := mcp.NewTool("calendar_find_free_slots", opts...)
	s.AddTool(findSlotsTool, common.InstrumentedToolHandler("calendar_find_free_slots", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindFreeSlots(ctx, request, sc)
		}))

	batchOpts := []mcp.ToolOption{
		mcp.WithDescription("Find free time slots on several dates at once. Each date is reported separately, so one bad date does not fail the others"),
		mcp.WithArray("dates",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description(fmt.Sprintf("Dates to search (YYYY-MM-DD), at most %d", batch.MaxItems)),
		),
	}
	batchOpts = append(batchOpts, queryArgs...)
	batchOpts = append(batchOpts, sourceArgs...)

	batchTool := mcp.NewTool("calendar_find_free_slots_batch", batchOpts...)
	s.AddTool(batchTool, common.InstrumentedToolHandler("calendar_find_free_slots_batch", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindFreeSlotsBatch(ctx, request, sc)
		}))

	return nil
}

func handleFindFreeSlots(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	dateStr := common.StringArg(args, "date")
	if dateStr == "" {
		return mcp.NewToolResultError("date is required"), nil
	}

	q, err := slotQuery(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := findSlots(ctx, sc, common.SourceSpecFromArgs(args), q, dateStr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func handleFindFreeSlotsBatch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	dates, err := batch.StringList(args["dates"], "dates")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	q, err := slotQuery(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	spec := common.SourceSpecFromArgs(args)
	report := batch.Process(ctx, dates, func(ctx context.Context, date string) (string, error) {
		return findSlots(ctx, sc, spec, q, date)
	})
	return mcp.NewToolResultText(report.JSON()), nil
}

// slotQuery builds a query from the arguments shared by the single and batch
// tools. The date is left unset.
func slotQuery(sc *server.ServerContext, args map[string]any) (calendar.SlotQuery, error) {
	cfg := sc.Config()

	loc, err := location(sc, common.StringArg(args, "timezone"))
	if err != nil {
		return calendar.SlotQuery{}, err
	}

	minDuration, err := common.IntArg(args, "durationMinutes", cfg.Slots.MinDuration)
	if err != nil {
		return calendar.SlotQuery{}, err
	}

	defStart, defEnd, err := cfg.WorkdayClocks()
	if err != nil {
		return calendar.SlotQuery{}, fmt.Errorf("invalid workday in config: %w", err)
	}
	start, err := clock(common.StringArg(args, "workdayStart"), defStart)
	if err != nil {
		return calendar.SlotQuery{}, err
	}
	end, err := clock(common.StringArg(args, "workdayEnd"), defEnd)
	if err != nil {
		return calendar.SlotQuery{}, err
	}

	return calendar.SlotQuery{
		Start:       start,
		End:         end,
		Location:    loc,
		MinDuration: minDuration,
		SkipAllDay:  common.BoolArg(args, "skipAllDay", cfg.Slots.SkipAllDay),
	}, nil
}

// findSlots runs q for one date and returns the plain text slot listing.
func findSlots(ctx context.Context, sc *server.ServerContext, spec server.SourceSpec, q calendar.SlotQuery, dateStr string) (string, error) {
	date, err := calendar.ParseDate(dateStr, q.Location)
	if err != nil {
		return "", err
	}
	q.Date = date

	report, err := sc.FindFreeSlots(ctx, spec, q)
	if err != nil {
		if errors.Is(err, calendar.ErrInvalidArgument) {
			return "", err
		}
		return "", fmt.Errorf("failed to find free slots: %w", err)
	}

	var b strings.Builder
	if err := calendar.WriteSlots(&b, nil, report); err != nil {
		return "", err
	}
	return b.String(), nil
}
