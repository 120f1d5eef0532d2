// Package instrumentation provides OpenTelemetry instrumentation for quickcal.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, route, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Calendar and OAuth calls by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API call durations
//
// Handshake Metrics:
//   - oauth_handshakes_total: Counter of begin/callback steps by result
//
// Event Metrics:
//   - event_extractions_total / event_extraction_duration_seconds: language model round-trips by result
//   - event_dispatches_total / event_dispatch_duration_seconds: per-user calendar writes by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// The Prometheus exporter writes into a registry owned by the Provider;
// PrometheusHandler exposes it for a dedicated metrics listener.
//
// # Tracing
//
// Spans are created for extraction (nlp.extract), dispatch (event.dispatch),
// Google API calls (google.<service>.<operation>) and MCP tools (tool.<name>).
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: quickcal)
//   - METRICS_DETAILED_LABELS: attach the user label to dispatch metrics
//   - AUDIT_LOGGING_ENABLED / AUDIT_LOGGING_INCLUDE_PII: audit log behavior
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordDispatch(ctx, instrumentation.DispatchResultCreated, "alice", time.Since(start))
package instrumentation
