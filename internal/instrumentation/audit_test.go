package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation("calendar_find_free_slots").
		WithSource(SourceApple).
		WithSpanContext(context.Background())
	time.Sleep(time.Millisecond)

	ti.Complete(true, nil)

	assert.True(t, ti.Success)
	assert.Equal(t, StatusSuccess, ti.Status())
	assert.Positive(t, ti.Duration)
	assert.Empty(t, ti.Error)
	assert.Empty(t, ti.TraceID)

	ti = NewToolInvocation("slides_create_presentation").WithTarget(TargetKeynote)
	ti.Complete(false, errors.New("Keynote is not installed"))

	assert.False(t, ti.Success)
	assert.Equal(t, StatusError, ti.Status())
	assert.Equal(t, "Keynote is not installed", ti.Error)
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	tests := []struct {
		name     string
		ti       *ToolInvocation
		wantKeys []string
	}{
		{
			name:     "minimal",
			ti:       &ToolInvocation{Tool: "slides_parse", Success: true},
			wantKeys: []string{"tool", "duration", "success"},
		},
		{
			name: "all fields",
			ti: &ToolInvocation{
				Tool:    "calendar_summary",
				Source:  SourceGoogle,
				Target:  TargetPowerPoint,
				TraceID: "abc",
				SpanID:  "def",
				Error:   "failed",
			},
			wantKeys: []string{"tool", "duration", "success", "source", "target", "trace_id", "span_id", "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var keys []string
			for _, attr := range tt.ti.LogAttrs() {
				keys = append(keys, attr.Key)
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLogger(logger)
	al.LogToolInvocation(&ToolInvocation{Tool: "slides_parse", Success: true})
	al.LogToolInvocation(&ToolInvocation{Tool: "calendar_summary", Error: "no such calendar"})

	out := buf.String()
	assert.Contains(t, out, "msg=tool_executed")
	assert.Contains(t, out, "tool=slides_parse")
	assert.Contains(t, out, "level=WARN msg=tool_failed")
	assert.Contains(t, out, `error="no such calendar"`)
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: false})
	al.LogToolInvocation(&ToolInvocation{Tool: "slides_parse", Success: true})
	assert.Empty(t, buf.String())

	var nilLogger *AuditLogger
	require.NotPanics(t, func() {
		nilLogger.LogToolInvocation(&ToolInvocation{Tool: "slides_parse"})
	})
}
