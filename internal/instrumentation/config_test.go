package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	for _, key := range []string{"OTEL_SERVICE_NAME", "INSTRUMENTATION_ENABLED", "METRICS_EXPORTER", "TRACING_EXPORTER", "OTEL_TRACES_SAMPLER_ARG", "AUDIT_LOGGING_ENABLED"} {
		t.Setenv(key, "")
	}

	config := DefaultConfig()

	assert.Equal(t, "macbridge", config.ServiceName)
	assert.True(t, config.Enabled)
	assert.Equal(t, ExporterPrometheus, config.MetricsExporter)
	assert.Equal(t, ExporterNone, config.TracingExporter)
	assert.Equal(t, 0.1, config.TraceSamplingRate)
	assert.False(t, config.DetailedLabels)
	assert.True(t, config.AuditLogging.Enabled)
	assert.NoError(t, config.Validate())
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "macbridge-dev")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_EXPORTER", "stdout")
	t.Setenv("TRACING_EXPORTER", "stdout")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("METRICS_DETAILED_LABELS", "true")
	t.Setenv("AUDIT_LOGGING_ENABLED", "false")

	config := DefaultConfig()

	assert.Equal(t, "macbridge-dev", config.ServiceName)
	assert.False(t, config.Enabled)
	assert.Equal(t, "stdout", config.MetricsExporter)
	assert.Equal(t, "stdout", config.TracingExporter)
	assert.Equal(t, 0.5, config.TraceSamplingRate)
	assert.True(t, config.DetailedLabels)
	assert.False(t, config.AuditLogging.Enabled)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		errContains string
	}{
		{
			name:   "prometheus without tracing",
			config: Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone},
		},
		{
			name:   "otlp tracing with endpoint",
			config: Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"},
		},
		{
			name:        "negative sampling rate",
			config:      Config{TraceSamplingRate: -0.5},
			errContains: "sampling rate",
		},
		{
			name:        "sampling rate above 1",
			config:      Config{TraceSamplingRate: 1.5},
			errContains: "sampling rate",
		},
		{
			name:        "unknown metrics exporter",
			config:      Config{MetricsExporter: "graphite"},
			errContains: "invalid metrics exporter",
		},
		{
			name:        "unknown tracing exporter",
			config:      Config{TracingExporter: "zipkin"},
			errContains: "invalid tracing exporter",
		},
		{
			name:        "otlp tracing without endpoint",
			config:      Config{TracingExporter: ExporterOTLP},
			errContains: "OTLP endpoint is required",
		},
		{
			name:        "otlp metrics without endpoint",
			config:      Config{MetricsExporter: ExporterOTLP},
			errContains: "OTLP endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("MACBRIDGE_TEST_STRING", "value")
	t.Setenv("MACBRIDGE_TEST_BOOL", "true")
	t.Setenv("MACBRIDGE_TEST_BOOL_BAD", "yes please")
	t.Setenv("MACBRIDGE_TEST_FLOAT", "0.75")
	t.Setenv("MACBRIDGE_TEST_FLOAT_BAD", "three quarters")

	assert.Equal(t, "value", getEnvOrDefault("MACBRIDGE_TEST_STRING", "default"))
	assert.Equal(t, "default", getEnvOrDefault("MACBRIDGE_TEST_MISSING", "default"))

	assert.True(t, getEnvBoolOrDefault("MACBRIDGE_TEST_BOOL", false))
	assert.True(t, getEnvBoolOrDefault("MACBRIDGE_TEST_BOOL_BAD", true))
	assert.False(t, getEnvBoolOrDefault("MACBRIDGE_TEST_MISSING", false))

	assert.Equal(t, 0.75, getEnvFloatOrDefault("MACBRIDGE_TEST_FLOAT", 0.5))
	assert.Equal(t, 0.5, getEnvFloatOrDefault("MACBRIDGE_TEST_FLOAT_BAD", 0.5))
	assert.Equal(t, 0.5, getEnvFloatOrDefault("MACBRIDGE_TEST_MISSING", 0.5))
}
