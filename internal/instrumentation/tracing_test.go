package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("calendar_find_free_slots").
		WithSource(SourceApple, "Work").
		WithSlotSearch("2026-10-16", 30).
		WithPresentation(TargetKeynote, 4).
		WithReadOnly(true).
		Build()

	got := make(map[string]any, len(attrs))
	for _, attr := range attrs {
		got[string(attr.Key)] = attr.Value.AsInterface()
	}

	assert.Equal(t, map[string]any{
		SpanAttrTool:     "calendar_find_free_slots",
		SpanAttrSource:   SourceApple,
		SpanAttrCalendar: "Work",
		SpanAttrDate:     "2026-10-16",
		SpanAttrMinimum:  int64(30),
		SpanAttrTarget:   TargetKeynote,
		SpanAttrSlides:   int64(4),
		SpanAttrReadOnly: true,
	}, got)
}

func TestSpanAttributeBuilder_NoCalendarName(t *testing.T) {
	attrs := NewSpanAttributeBuilder().WithSource(SourceFile, "").Build()
	require.Len(t, attrs, 1)
	assert.Equal(t, SpanAttrSource, string(attrs[0].Key))
}

func TestSpans(t *testing.T) {
	ctx, _ := newTestProvider(t, false)

	spanCtx, span := StartSpan(ctx, "slots.search")
	require.NotNil(t, spanCtx)
	SetSpanSuccess(span)
	span.End()

	toolCtx, toolSpan := StartToolSpan(ctx, "slides_parse")
	require.NotNil(t, toolCtx)
	SetSpanError(toolSpan, errors.New("boom"))
	SetSpanError(toolSpan, nil)
	toolSpan.End()

	bridgeCtx, bridgeSpan := StartBridgeSpan(ctx, "keynote")
	require.NotNil(t, bridgeCtx)
	bridgeSpan.End()
}

func TestIDs_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))
}
