package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/invitebooker/internal/logging"
)

func testRecord() *BookingRecord {
	return &BookingRecord{
		MessageID:  "m-1",
		CalendarID: "primary",
		EventID:    "ev-1",
		Title:      "Design review",
		Start:      time.Date(2025, 10, 21, 10, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 10, 21, 10, 30, 0, 0, time.UTC),
		Attendees:  []string{"jane@example.com"},
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestAuditLogger_HashesAttendees(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	al.LogBooking(context.Background(), testRecord())

	line := decodeLine(t, &buf)
	assert.Equal(t, "booking_created", line["msg"])
	assert.Equal(t, "audit", line["log_type"])
	assert.Equal(t, "m-1", line[logging.KeyMessageID])
	assert.Equal(t, "ev-1", line["event_id"])
	assert.Equal(t, []any{logging.AnonymizeEmail("jane@example.com")}, line["attendees"])
	assert.NotContains(t, buf.String(), "jane@example.com")
	assert.NotContains(t, buf.String(), "Design review")
}

func TestAuditLogger_IncludePII(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditConfig{Enabled: true, IncludePII: true})

	al.LogBooking(context.Background(), testRecord())

	line := decodeLine(t, &buf)
	assert.Equal(t, []any{"jane@example.com"}, line["attendees"])
	assert.Equal(t, "Design review", line["title"])
}

func TestAuditLogger_Failure(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	r := testRecord()
	r.EventID = ""
	r.Error = "quota exceeded"
	assert.False(t, r.Success())
	al.LogBooking(context.Background(), r)

	line := decodeLine(t, &buf)
	assert.Equal(t, "booking_failed", line["msg"])
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "quota exceeded", line[logging.KeyError])
}

func TestAuditLogger_DisabledAndNil(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditConfig{Enabled: false})
	al.LogBooking(context.Background(), testRecord())
	assert.Empty(t, buf.String())

	var nilLogger *AuditLogger
	assert.NotPanics(t, func() { nilLogger.LogBooking(context.Background(), testRecord()) })
}

func TestBookingRecord_WithSpanContext_NoSpan(t *testing.T) {
	r := testRecord().WithSpanContext(context.Background())
	assert.Empty(t, r.TraceID)
	assert.Empty(t, r.SpanID)
}
