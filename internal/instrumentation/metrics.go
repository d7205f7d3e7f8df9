package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const metricPrefix = "invitebooker_"

const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrOutcome   = "outcome"
	attrTool      = "tool"
	attrAccount   = "account"
	attrNotifier  = "notifier"
)

// Operation names used with RecordGoogleAPIOperation.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
)

// Metrics records invitebooker's metrics. A nil *Metrics, or one built when
// instrumentation is disabled, silently drops every measurement.
type Metrics struct {
	invitesProcessed metric.Int64Counter

	slotSearches         metric.Int64Counter
	slotSearchCandidates metric.Int64Histogram
	slotSearchFound      metric.Int64Histogram

	pollCycles        metric.Int64Counter
	pollCycleDuration metric.Float64Histogram
	pollMessages      metric.Int64Histogram

	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram
	googleAPIRetries           metric.Int64Counter

	notifications metric.Int64Counter

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels adds the account label where it applies.
	detailedLabels bool
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}
	var err error

	if m.invitesProcessed, err = meter.Int64Counter(
		metricPrefix+"invites_processed_total",
		metric.WithDescription("Messages run through the scheduler, by outcome"),
		metric.WithUnit("{message}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create invites_processed_total counter: %w", err)
	}

	if m.slotSearches, err = meter.Int64Counter(
		metricPrefix+"slot_searches_total",
		metric.WithDescription("Alternate slot searches run after a conflict"),
		metric.WithUnit("{search}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create slot_searches_total counter: %w", err)
	}

	if m.slotSearchCandidates, err = meter.Int64Histogram(
		metricPrefix+"slot_search_candidates",
		metric.WithDescription("Candidate slots examined per search"),
		metric.WithUnit("{slot}"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250),
	); err != nil {
		return nil, fmt.Errorf("failed to create slot_search_candidates histogram: %w", err)
	}

	if m.slotSearchFound, err = meter.Int64Histogram(
		metricPrefix+"slot_search_found",
		metric.WithDescription("Free slots returned per search"),
		metric.WithUnit("{slot}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 5, 10),
	); err != nil {
		return nil, fmt.Errorf("failed to create slot_search_found histogram: %w", err)
	}

	if m.pollCycles, err = meter.Int64Counter(
		metricPrefix+"poll_cycles_total",
		metric.WithDescription("Mailbox poll cycles, by status"),
		metric.WithUnit("{cycle}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create poll_cycles_total counter: %w", err)
	}

	if m.pollCycleDuration, err = meter.Float64Histogram(
		metricPrefix+"poll_cycle_duration_seconds",
		metric.WithDescription("Poll cycle duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	); err != nil {
		return nil, fmt.Errorf("failed to create poll_cycle_duration_seconds histogram: %w", err)
	}

	if m.pollMessages, err = meter.Int64Histogram(
		metricPrefix+"poll_cycle_messages",
		metric.WithDescription("Messages processed per poll cycle"),
		metric.WithUnit("{message}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10, 25, 50),
	); err != nil {
		return nil, fmt.Errorf("failed to create poll_cycle_messages histogram: %w", err)
	}

	if m.googleAPIOperationsTotal, err = meter.Int64Counter(
		metricPrefix+"google_api_operations_total",
		metric.WithDescription("Google API operations, by service, operation and status"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	if m.googleAPIOperationDuration, err = meter.Float64Histogram(
		metricPrefix+"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds, retries included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	); err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	if m.googleAPIRetries, err = meter.Int64Counter(
		metricPrefix+"google_api_retries_total",
		metric.WithDescription("Google API calls retried after a transient failure"),
		metric.WithUnit("{retry}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create google_api_retries_total counter: %w", err)
	}

	if m.notifications, err = meter.Int64Counter(
		metricPrefix+"notifications_total",
		metric.WithDescription("Booking notifications sent, by notifier and status"),
		metric.WithUnit("{notification}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create notifications_total counter: %w", err)
	}

	if m.toolInvocationsTotal, err = meter.Int64Counter(
		metricPrefix+"mcp_tool_invocations_total",
		metric.WithDescription("MCP tool invocations, by tool and status"),
		metric.WithUnit("{invocation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	if m.toolDuration, err = meter.Float64Histogram(
		metricPrefix+"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordInviteOutcome counts one processed message.
func (m *Metrics) RecordInviteOutcome(ctx context.Context, outcome string) {
	if m == nil || m.invitesProcessed == nil {
		return
	}
	m.invitesProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, outcome)))
}

// RecordSlotSearch records how many candidates a search examined and how
// many free slots it returned.
func (m *Metrics) RecordSlotSearch(ctx context.Context, examined, found int) {
	if m == nil || m.slotSearches == nil {
		return
	}
	m.slotSearches.Add(ctx, 1)
	m.slotSearchCandidates.Record(ctx, int64(examined))
	m.slotSearchFound.Record(ctx, int64(found))
}

// RecordPollCycleWithAccount records one poll cycle. The account label is
// only attached when detailed labels are enabled.
func (m *Metrics) RecordPollCycleWithAccount(ctx context.Context, status, account string, processed int, duration time.Duration) {
	if m == nil || m.pollCycles == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(attrStatus, status)}
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}
	m.pollCycles.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.pollCycleDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.pollMessages.Record(ctx, int64(processed), metric.WithAttributes(attrs...))
}

// RecordGoogleAPIOperation records a Google API call.
//
// Parameters:
//   - service: gmail or calendar
//   - operation: list, get or create
//   - status: "success" or "error"
//   - duration: wall time including retries
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}
	m.googleAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordGoogleAPIRetry counts one retried Google API attempt.
func (m *Metrics) RecordGoogleAPIRetry(ctx context.Context, service, operation string) {
	if m == nil || m.googleAPIRetries == nil {
		return
	}
	m.googleAPIRetries.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
	))
}

// RecordNotification counts one booking notification.
func (m *Metrics) RecordNotification(ctx context.Context, notifier, status string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrNotifier, notifier),
		attribute.String(attrStatus, status),
	))
}

// RecordToolInvocation records an MCP tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}
	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
