package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/invitebooker/internal/logging"
)

// BookingRecord is one calendar write, kept for the audit trail.
//
// Attendees holds personal data. AuditLogger hashes them unless it was
// configured with IncludePII.
type BookingRecord struct {
	MessageID  string
	CalendarID string
	EventID    string
	Title      string
	Start      time.Time
	End        time.Time
	Attendees  []string
	// Rescheduled is true when the event was moved off the requested time.
	Rescheduled bool
	Error       string

	TraceID string
	SpanID  string
}

// Success reports whether the event was created.
func (r *BookingRecord) Success() bool {
	return r.Error == "" && r.EventID != ""
}

// WithSpanContext copies the trace and span IDs from ctx.
func (r *BookingRecord) WithSpanContext(ctx context.Context) *BookingRecord {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		r.TraceID = sc.TraceID().String()
		r.SpanID = sc.SpanID().String()
	}
	return r
}

// LogAttrs returns the record as slog attributes.
func (r *BookingRecord) LogAttrs(includePII bool) []slog.Attr {
	attendees := make([]string, 0, len(r.Attendees))
	for _, a := range r.Attendees {
		if includePII {
			attendees = append(attendees, a)
		} else {
			attendees = append(attendees, logging.AnonymizeEmail(a))
		}
	}

	attrs := []slog.Attr{
		slog.String(logging.KeyMessageID, r.MessageID),
		slog.String(logging.KeyCalendar, r.CalendarID),
		slog.String("start", r.Start.Format(time.RFC3339)),
		slog.String("end", r.End.Format(time.RFC3339)),
		slog.Bool("rescheduled", r.Rescheduled),
		slog.Any("attendees", attendees),
	}
	if includePII && r.Title != "" {
		attrs = append(attrs, slog.String("title", r.Title))
	}
	if r.EventID != "" {
		attrs = append(attrs, slog.String("event_id", r.EventID))
	}
	if r.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", r.TraceID), slog.String("span_id", r.SpanID))
	}
	if r.Error != "" {
		attrs = append(attrs, slog.String(logging.KeyError, r.Error))
	}
	return attrs
}

// AuditLogger writes one line per calendar write. Route its logger to
// storage with access controls when IncludePII is on.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger returns an enabled logger that hashes attendees.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditConfig{Enabled: true})
}

func NewAuditLoggerWithConfig(logger *slog.Logger, cfg AuditConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("log_type", "audit")),
		includePII: cfg.IncludePII,
		enabled:    cfg.Enabled,
	}
}

// LogBooking writes r. A nil or disabled AuditLogger does nothing.
func (al *AuditLogger) LogBooking(ctx context.Context, r *BookingRecord) {
	if al == nil || !al.enabled || r == nil {
		return
	}
	attrs := r.LogAttrs(al.includePII)
	if r.Success() {
		al.logger.LogAttrs(ctx, slog.LevelInfo, "booking_created", attrs...)
	} else {
		al.logger.LogAttrs(ctx, slog.LevelWarn, "booking_failed", attrs...)
	}
}
