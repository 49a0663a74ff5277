package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod   = "method"
	attrPath     = "path"
	attrStatus   = "status"
	attrTool     = "tool"
	attrSource   = "source"
	attrTarget   = "target"
	attrCalendar = "calendar"
)

// Metrics records the counters and histograms of macbridge. A zero Metrics
// value is valid and records nothing.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	bridgeScriptRunsTotal metric.Int64Counter
	bridgeScriptDuration  metric.Float64Histogram

	eventFetchesTotal metric.Int64Counter
	slotSearchesTotal metric.Int64Counter
	slotsFound        metric.Int64Histogram

	slidesParsedTotal        metric.Int64Counter
	presentationRendersTotal metric.Int64Counter

	detailedLabels bool
}

// NewMetrics creates all instruments on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	m.bridgeScriptRunsTotal, err = meter.Int64Counter(
		"bridge_script_runs_total",
		metric.WithDescription("Total number of scripting bridge runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge_script_runs_total counter: %w", err)
	}

	// Keynote and Calendar.app can take many seconds to start.
	m.bridgeScriptDuration, err = meter.Float64Histogram(
		"bridge_script_duration_seconds",
		metric.WithDescription("Scripting bridge run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge_script_duration_seconds histogram: %w", err)
	}

	m.eventFetchesTotal, err = meter.Int64Counter(
		"calendar_event_fetches_total",
		metric.WithDescription("Total number of calendar event source reads"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_event_fetches_total counter: %w", err)
	}

	m.slotSearchesTotal, err = meter.Int64Counter(
		"free_slot_searches_total",
		metric.WithDescription("Total number of free slot searches"),
		metric.WithUnit("{search}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create free_slot_searches_total counter: %w", err)
	}

	m.slotsFound, err = meter.Int64Histogram(
		"free_slots_found",
		metric.WithDescription("Number of free slots returned per search"),
		metric.WithUnit("{slot}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 5, 8),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create free_slots_found histogram: %w", err)
	}

	m.slidesParsedTotal, err = meter.Int64Counter(
		"slides_parsed_total",
		metric.WithDescription("Total number of slides parsed from markdown"),
		metric.WithUnit("{slide}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create slides_parsed_total counter: %w", err)
	}

	m.presentationRendersTotal, err = meter.Int64Counter(
		"presentation_renders_total",
		metric.WithDescription("Total number of presentations rendered"),
		metric.WithUnit("{render}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create presentation_renders_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordBridgeScript records one osascript run.
func (m *Metrics) RecordBridgeScript(ctx context.Context, status string, duration time.Duration) {
	if m == nil || m.bridgeScriptRunsTotal == nil || m.bridgeScriptDuration == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))
	m.bridgeScriptRunsTotal.Add(ctx, 1, attrs)
	m.bridgeScriptDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordEventFetch records a read from a calendar event source. The calendar
// name is only attached when detailed labels are enabled.
func (m *Metrics) RecordEventFetch(ctx context.Context, source, calendarName, status string) {
	if m == nil || m.eventFetchesTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrSource, source),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && calendarName != "" {
		attrs = append(attrs, attribute.String(attrCalendar, calendarName))
	}
	m.eventFetchesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSlotSearch records a free slot search and, on success, the number of
// slots it produced.
func (m *Metrics) RecordSlotSearch(ctx context.Context, source, status string, slots int) {
	if m == nil || m.slotSearchesTotal == nil {
		return
	}

	m.slotSearchesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrSource, source),
		attribute.String(attrStatus, status),
	))
	if status == StatusSuccess && m.slotsFound != nil {
		m.slotsFound.Record(ctx, int64(slots), metric.WithAttributes(attribute.String(attrSource, source)))
	}
}

// RecordSlidesParsed adds n parsed slides.
func (m *Metrics) RecordSlidesParsed(ctx context.Context, n int) {
	if m == nil || m.slidesParsedTotal == nil {
		return
	}
	m.slidesParsedTotal.Add(ctx, int64(n))
}

// RecordPresentationRender records a Keynote or PowerPoint render.
func (m *Metrics) RecordPresentationRender(ctx context.Context, target, status string) {
	if m == nil || m.presentationRendersTotal == nil {
		return
	}
	m.presentationRendersTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrTarget, target),
		attribute.String(attrStatus, status),
	))
}
