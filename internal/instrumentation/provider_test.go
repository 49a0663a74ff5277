package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false, MetricsExporter: "bogus"})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.False(t, provider.UsesPrometheus())
	assert.Nil(t, provider.Resource())
	require.NotNil(t, provider.Metrics())

	provider.Metrics().RecordSlotSearch(context.Background(), SourceApple, StatusSuccess, 1)
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Exporters(t *testing.T) {
	tests := []struct {
		name           string
		metrics        string
		tracing        string
		endpoint       string
		wantPrometheus bool
		wantErr        string
	}{
		{name: "prometheus scrape", metrics: ExporterPrometheus, tracing: ExporterNone, wantPrometheus: true},
		{name: "stdout debugging", metrics: ExporterStdout, tracing: ExporterStdout},
		{name: "unknown metrics exporter", metrics: "statsd", tracing: ExporterNone, wantErr: "invalid metrics exporter"},
		{name: "unknown tracing exporter", metrics: ExporterPrometheus, tracing: "jaeger", wantErr: "invalid tracing exporter"},
		{name: "otlp without endpoint", metrics: ExporterPrometheus, tracing: ExporterOTLP, wantErr: "OTLP endpoint is required"},
		{name: "empty metrics exporter", metrics: "", tracing: ExporterNone, wantErr: "unsupported metrics exporter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			provider, err := NewProvider(ctx, Config{
				ServiceName:     "macbridge-test",
				Enabled:         true,
				MetricsExporter: tt.metrics,
				TracingExporter: tt.tracing,
				OTLPEndpoint:    tt.endpoint,
			})
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer func() { assert.NoError(t, provider.Shutdown(ctx)) }()

			assert.True(t, provider.Enabled())
			assert.Equal(t, tt.wantPrometheus, provider.UsesPrometheus())
			assert.NotNil(t, provider.Metrics())
		})
	}
}

func TestNewProvider_ResourceDescribesBridge(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName:       "macbridge",
		ServiceVersion:    "1.2.3",
		ServiceInstanceID: "studio-mac",
		Enabled:           true,
		MetricsExporter:   ExporterPrometheus,
		TracingExporter:   ExporterNone,
		EventSource:       SourceGoogle,
		SlidesTarget:      TargetPowerPoint,
		Transport:         "streamable-http",
		ReadOnly:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	attrs := provider.Resource().Set()
	want := map[string]attribute.Value{
		"service.name":           attribute.StringValue("macbridge"),
		"service.version":        attribute.StringValue("1.2.3"),
		"service.instance.id":    attribute.StringValue("studio-mac"),
		ResourceAttrBridge:       attribute.StringValue(BridgeOSAScript),
		ResourceAttrEventSource:  attribute.StringValue(SourceGoogle),
		ResourceAttrSlidesTarget: attribute.StringValue(TargetPowerPoint),
		ResourceAttrTransport:    attribute.StringValue("streamable-http"),
		SpanAttrReadOnly:         attribute.BoolValue(true),
	}
	for key, value := range want {
		got, ok := attrs.Value(attribute.Key(key))
		if assert.True(t, ok, key) {
			assert.Equal(t, value, got, key)
		}
	}
}

func TestNewProvider_ResourceOmitsUnsetDefaults(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "macbridge",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	attrs := provider.Resource().Set()
	for _, key := range []string{ResourceAttrEventSource, ResourceAttrSlidesTarget, ResourceAttrTransport, SpanAttrReadOnly} {
		_, ok := attrs.Value(attribute.Key(key))
		assert.False(t, ok, key)
	}
}

func TestNewMetrics_Instruments(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = meterProvider.Shutdown(ctx) })

	metrics, err := NewMetrics(meterProvider.Meter("macbridge-test"), false)
	require.NoError(t, err)

	metrics.RecordBridgeScript(ctx, StatusSuccess, time.Second)
	metrics.RecordEventFetch(ctx, SourceApple, "Work", StatusSuccess)
	metrics.RecordSlotSearch(ctx, SourceApple, StatusSuccess, 2)
	metrics.RecordSlidesParsed(ctx, 4)
	metrics.RecordPresentationRender(ctx, TargetKeynote, StatusSuccess)
	metrics.RecordToolInvocation(ctx, "calendar_find_free_slots", StatusSuccess, 10*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names[m.Name] = true
		}
	}
	for _, name := range []string{
		"bridge_script_runs_total",
		"bridge_script_duration_seconds",
		"calendar_event_fetches_total",
		"free_slot_searches_total",
		"free_slots_found",
		"slides_parsed_total",
		"presentation_renders_total",
		"mcp_tool_invocations_total",
	} {
		assert.True(t, names[name], "missing instrument %s", name)
	}
}

func TestNewMetrics_EventFetchCalendarLabel(t *testing.T) {
	tests := []struct {
		name           string
		detailedLabels bool
		wantCalendar   bool
	}{
		{name: "calendar names hidden by default", detailedLabels: false, wantCalendar: false},
		{name: "calendar names with detailed labels", detailedLabels: true, wantCalendar: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			reader := sdkmetric.NewManualReader()
			meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
			t.Cleanup(func() { _ = meterProvider.Shutdown(ctx) })

			metrics, err := NewMetrics(meterProvider.Meter("macbridge-test"), tt.detailedLabels)
			require.NoError(t, err)
			metrics.RecordEventFetch(ctx, SourceApple, "Work", StatusSuccess)

			var rm metricdata.ResourceMetrics
			require.NoError(t, reader.Collect(ctx, &rm))
			require.Len(t, rm.ScopeMetrics, 1)
			require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

			sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
			require.True(t, ok)
			require.Len(t, sum.DataPoints, 1)

			point := sum.DataPoints[0]
			assert.Equal(t, int64(1), point.Value)
			_, hasCalendar := point.Attributes.Value(attribute.Key(attrCalendar))
			assert.Equal(t, tt.wantCalendar, hasCalendar)
		})
	}
}
