// Package instrumentation wires OpenTelemetry metrics and tracing for macbridge.
//
// # Metrics
//
// MCP and HTTP:
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//   - http_requests_total, http_request_duration_seconds
//
// Scripting bridge:
//   - bridge_script_runs_total, bridge_script_duration_seconds
//
// Calendar:
//   - calendar_event_fetches_total by source and status
//   - free_slot_searches_total by source and status
//   - free_slots_found, a histogram of slots per search
//
// Slides:
//   - slides_parsed_total
//   - presentation_renders_total by target and status
//
// # Configuration
//
// Environment variables:
//   - INSTRUMENTATION_ENABLED: enable or disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces and metrics
//   - OTEL_TRACES_SAMPLER_ARG: sampling rate (0.0 to 1.0, default: 0.1)
//   - METRICS_DETAILED_LABELS: add calendar names to event source metrics
//
// # Example
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordSlotSearch(ctx, instrumentation.SourceApple, instrumentation.StatusSuccess, 3)
package instrumentation
