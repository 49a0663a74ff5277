package calendar_tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/macbridge/internal/config"
	"github.com/teemow/macbridge/internal/server"
	"github.com/teemow/macbridge/internal/tools/batch"
)

const events = `[
  {"title": "Standup", "calendar": "Work", "start": "2026-10-16T09:30:00+02:00", "end": "2026-10-16T09:45:00+02:00"},
  {"title": "Lunch", "calendar": "Personal", "location": "Canteen", "start": "2026-10-16T12:00:00+02:00", "end": "2026-10-16T13:00:00+02:00"},
  {"title": "Review", "calendar": "Work", "start": "2026-10-19T10:00:00+02:00", "end": "2026-10-19T11:30:00+02:00"}
]`

func newTestContext(t *testing.T) *server.ServerContext {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte(events), 0o600))

	cfg := config.Default()
	cfg.Workday.Timezone = "Europe/Berlin"
	cfg.Slots.Source = config.SourceFile
	cfg.Slots.EventsFile = path

	sc, err := server.NewServerContext(context.Background(), cfg)
	require.NoError(t, err)
	return sc
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	return tc.Text
}

func TestRegisterCalendarTools(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterCalendarTools(s, newTestContext(t)))

	tools := s.ListTools()
	for _, name := range []string{"calendar_find_free_slots", "calendar_find_free_slots_batch", "calendar_list_events", "calendar_summary"} {
		require.Contains(t, tools, name)
		hint := tools[name].Tool.Annotations.ReadOnlyHint
		require.NotNil(t, hint, name)
		assert.True(t, *hint, name)
	}
	assert.Contains(t, tools["calendar_find_free_slots"].Tool.InputSchema.Required, "date")
	assert.Contains(t, tools["calendar_find_free_slots_batch"].Tool.InputSchema.Required, "dates")
}

func TestHandleFindFreeSlots(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleFindFreeSlots(context.Background(), call(map[string]any{
		"date": "2026-10-16",
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "Free 60-minute slots on 2026-10-16:\n"+
		"1. 09:45 - 12:00 (135 minutes)\n"+
		"2. 13:00 - 17:00 (240 minutes)\n", text(t, result))

	result, err = handleFindFreeSlots(context.Background(), call(map[string]any{
		"date":            "2026-10-16",
		"calendar":        "work",
		"durationMinutes": float64(240),
		"workdayStart":    "10:00",
		"workdayEnd":      "14:00",
	}), sc)
	require.NoError(t, err)
	assert.Equal(t, "Free 240-minute slots on 2026-10-16:\n"+
		"1. 10:00 - 14:00 (240 minutes)\n", text(t, result))

	result, err = handleFindFreeSlots(context.Background(), call(map[string]any{
		"date":            "2026-10-16",
		"durationMinutes": float64(300),
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "No free 300-minute slots found on 2026-10-16\n", text(t, result))
}

func TestHandleFindFreeSlotsErrors(t *testing.T) {
	sc := newTestContext(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing date", map[string]any{}, "date is required"},
		{"bad date", map[string]any{"date": "16.10.2026"}, "date"},
		{"bad timezone", map[string]any{"date": "2026-10-16", "timezone": "Mars/Olympus"}, "unknown timezone"},
		{"zero duration", map[string]any{"date": "2026-10-16", "durationMinutes": float64(0)}, "invalid argument"},
		{"fractional duration", map[string]any{"date": "2026-10-16", "durationMinutes": 1.5}, "whole number"},
		{"bad clock", map[string]any{"date": "2026-10-16", "workdayStart": "9am"}, "9am"},
		{"empty workday", map[string]any{"date": "2026-10-16", "workdayStart": "17:00", "workdayEnd": "09:00"}, "invalid argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleFindFreeSlots(context.Background(), call(tt.args), sc)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, text(t, result), tt.want)
		})
	}
}

func TestHandleFindFreeSlotsBatch(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleFindFreeSlotsBatch(context.Background(), call(map[string]any{
		"dates":           []any{"2026-10-16", "not-a-date", "2026-10-19"},
		"durationMinutes": float64(120),
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var report batch.Report
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &report))
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Successful)
	assert.Equal(t, 1, report.Failed)

	require.Len(t, report.Results, 3)
	assert.Equal(t, "Free 120-minute slots on 2026-10-16:\n"+
		"1. 09:45 - 12:00 (135 minutes)\n"+
		"2. 13:00 - 17:00 (240 minutes)\n", report.Results[0].Output)
	assert.Equal(t, "not-a-date", report.Results[1].Input)
	assert.NotEmpty(t, report.Results[1].Error)
	assert.Equal(t, "Free 120-minute slots on 2026-10-19:\n"+
		"1. 11:30 - 17:00 (330 minutes)\n", report.Results[2].Output)
}

func TestHandleFindFreeSlotsBatchErrors(t *testing.T) {
	sc := newTestContext(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing dates", map[string]any{}, "dates is required"},
		{"empty dates", map[string]any{"dates": []any{}}, "dates cannot be empty"},
		{"bad timezone", map[string]any{"dates": []any{"2026-10-16"}, "timezone": "Mars/Olympus"}, "unknown timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleFindFreeSlotsBatch(context.Background(), call(tt.args), sc)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, text(t, result), tt.want)
		})
	}
}

func TestHandleListEvents(t *testing.T) {
	sc := newTestContext(t)
	now := time.Date(2026, 10, 16, 8, 0, 0, 0, sc.Location())

	result, err := handleListEvents(context.Background(), call(map[string]any{"days": float64(1)}), sc, now)
	require.NoError(t, err)
	out := text(t, result)
	assert.Contains(t, out, "Upcoming events in the next 1 days:")
	assert.Contains(t, out, "Standup\n   2026-10-16 09:30 - 09:45\n   Work\n")
	assert.Contains(t, out, "   Canteen\n")
	assert.NotContains(t, out, "Review")

	result, err = handleListEvents(context.Background(), call(map[string]any{}), sc, now)
	require.NoError(t, err)
	assert.Contains(t, text(t, result), "Review")

	result, err = handleListEvents(context.Background(), call(map[string]any{"days": float64(1), "calendar": "Holidays"}), sc, now)
	require.NoError(t, err)
	assert.Equal(t, "No upcoming events found in the next 1 days.\n", text(t, result))

	result, err = handleListEvents(context.Background(), call(map[string]any{"days": float64(-1)}), sc, now)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleSummary(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleSummary(context.Background(), call(map[string]any{
		"from": "2026-10-16",
		"to":   "2026-10-16",
	}), sc)
	require.NoError(t, err)
	out := text(t, result)
	assert.Contains(t, out, "Calendar Summary: 2026-10-16 to 2026-10-16\n")
	assert.Contains(t, out, "Total Events: 2\n")
	assert.NotContains(t, out, "Review")

	result, err = handleSummary(context.Background(), call(map[string]any{
		"from":     "2026-10-16",
		"to":       "2026-10-19",
		"calendar": "Work",
	}), sc)
	require.NoError(t, err)
	out = text(t, result)
	assert.Contains(t, out, "Total Events: 2\n")
	assert.Contains(t, out, "    10:00: Review\n")

	result, err = handleSummary(context.Background(), call(map[string]any{
		"from": "2026-10-19",
		"to":   "2026-10-16",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
