package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/macbridge/internal/calendar"
	"github.com/teemow/macbridge/internal/server"
)

const (
	SettingsURI       = "macbridge://settings"
	TodayFreeSlotsURI = "calendar://today/free-slots"
)

// settings is the public part of the configuration. Google client
// credentials are never exposed.
type settings struct {
	Timezone      string `json:"timezone"`
	WorkdayStart  string `json:"workdayStart"`
	WorkdayEnd    string `json:"workdayEnd"`
	MinDuration   int    `json:"minDurationMinutes"`
	SkipAllDay    bool   `json:"skipAllDay"`
	Source        string `json:"source"`
	Calendar      string `json:"calendar,omitempty"`
	Account       string `json:"account,omitempty"`
	SlidesTarget  string `json:"slidesTarget"`
	SlidesTheme   string `json:"slidesTheme"`
	GoogleEnabled bool   `json:"googleEnabled"`
}

// RegisterResources registers the settings and today's free slots resources.
func RegisterResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	settingsResource := mcp.NewResource(
		SettingsURI,
		"macbridge Settings",
		mcp.WithResourceDescription("Effective workday, free slot and presentation defaults"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(settingsResource, func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSettings(request, sc)
	})

	slotsResource := mcp.NewResource(
		TodayFreeSlotsURI,
		"Today's Free Slots",
		mcp.WithResourceDescription("Free slots of today's workday, using the configured event source and minimum length"),
		mcp.WithMIMEType("text/plain"),
	)
	s.AddResource(slotsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleTodayFreeSlots(ctx, request, sc, time.Now())
	})

	return nil
}

func handleSettings(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()

	data := settings{
		Timezone:      sc.Location().String(),
		WorkdayStart:  cfg.Workday.Start,
		WorkdayEnd:    cfg.Workday.End,
		MinDuration:   cfg.Slots.MinDuration,
		SkipAllDay:    cfg.Slots.SkipAllDay,
		Source:        cfg.Slots.Source,
		Calendar:      cfg.Slots.Calendar,
		Account:       cfg.Slots.Account,
		SlidesTarget:  cfg.Slides.Target,
		SlidesTheme:   cfg.Slides.Theme,
		GoogleEnabled: cfg.Google.ClientID != "",
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

func handleTodayFreeSlots(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext, now time.Time) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()
	loc := sc.Location()

	start, end, err := cfg.WorkdayClocks()
	if err != nil {
		return nil, fmt.Errorf("invalid workday in config: %w", err)
	}

	now = now.In(loc)
	report, err := sc.FindFreeSlots(ctx, sc.DefaultSourceSpec(), calendar.SlotQuery{
		Date:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc),
		Start:       start,
		End:         end,
		Location:    loc,
		MinDuration: cfg.Slots.MinDuration,
		SkipAllDay:  cfg.Slots.SkipAllDay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find free slots: %w", err)
	}

	var b strings.Builder
	if err := calendar.WriteSlots(&b, nil, report); err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     b.String(),
		},
	}, nil
}
