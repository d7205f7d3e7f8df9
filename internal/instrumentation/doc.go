// Package instrumentation wires OpenTelemetry metrics and tracing for
// invitebooker.
//
// # Metrics
//
// Scheduling:
//   - invitebooker_invites_processed_total{outcome}
//   - invitebooker_slot_searches_total
//   - invitebooker_slot_search_candidates, invitebooker_slot_search_found
//
// Polling:
//   - invitebooker_poll_cycles_total{status}
//   - invitebooker_poll_cycle_duration_seconds, invitebooker_poll_cycle_messages
//
// Google APIs:
//   - invitebooker_google_api_operations_total{service,operation,status}
//   - invitebooker_google_api_operation_duration_seconds
//   - invitebooker_google_api_retries_total{service,operation}
//
// Other:
//   - invitebooker_notifications_total{notifier,status}
//   - invitebooker_mcp_tool_invocations_total{tool,status}
//   - invitebooker_mcp_tool_duration_seconds
//
// A nil *Metrics is valid and records nothing, so components can take one
// unconditionally.
//
// # Tracing
//
// Spans are named scheduler.process, scheduler.poll, google.<service>.<op>
// and tool.<name>.
//
// # Configuration
//
// DefaultConfig reads INSTRUMENTATION_ENABLED, METRICS_EXPORTER,
// TRACING_EXPORTER, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE,
// OTEL_TRACES_SAMPLER_ARG, OTEL_SERVICE_NAME, METRICS_DETAILED_LABELS,
// AUDIT_LOGGING_ENABLED and AUDIT_LOGGING_INCLUDE_PII.
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordInviteOutcome(ctx, "booked_at_proposed")
package instrumentation
