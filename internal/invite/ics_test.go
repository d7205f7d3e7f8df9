package invite

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calendar(event string) []byte {
	body := "BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//test//invite//EN\nBEGIN:VEVENT\nUID:evt-1@example.com\nDTSTAMP:20251001T000000Z\n" +
		event + "\nEND:VEVENT\nEND:VCALENDAR\n"
	return []byte(strings.ReplaceAll(body, "\n", "\r\n"))
}

func TestParse_CalendarAttachment(t *testing.T) {
	ist := mustLoad(t, "Asia/Kolkata")

	tests := []struct {
		name      string
		event     string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "floating time is local",
			event:     "SUMMARY:Design review\nDTSTART:20251105T150000\nDTEND:20251105T160000",
			wantStart: time.Date(2025, 11, 5, 15, 0, 0, 0, ist),
			wantEnd:   time.Date(2025, 11, 5, 16, 0, 0, 0, ist),
		},
		{
			name:      "utc time",
			event:     "DTSTART:20251105T093000Z\nDTEND:20251105T100000Z",
			wantStart: time.Date(2025, 11, 5, 9, 30, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC),
		},
		{
			name:      "tzid",
			event:     "DTSTART;TZID=Europe/Paris:20251105T100000\nDTEND;TZID=Europe/Paris:20251105T110000",
			wantStart: time.Date(2025, 11, 5, 9, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC),
		},
		{
			name:      "all-day uses work start",
			event:     "DTSTART;VALUE=DATE:20251105\nDTEND;VALUE=DATE:20251106",
			wantStart: time.Date(2025, 11, 5, 10, 0, 0, 0, ist),
			wantEnd:   time.Date(2025, 11, 5, 10, 30, 0, 0, ist),
		},
		{
			name:      "weekly rule rolls to next occurrence",
			event:     "DTSTART:20250106T100000Z\nDTEND:20250106T103000Z\nRRULE:FREQ=WEEKLY",
			wantStart: time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 10, 20, 10, 30, 0, 0, time.UTC),
		},
	}

	p := newTestParser(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := p.Parse(Message{Subject: "Invitation", Calendars: [][]byte{calendar(tt.event)}})
			require.True(t, inv.HasHardTime())
			assert.Equal(t, StrategyCalendar, inv.Strategy)
			assert.True(t, tt.wantStart.Equal(*inv.HardStart), "start = %s", inv.HardStart)
			assert.True(t, tt.wantEnd.Equal(*inv.HardEnd), "end = %s", inv.HardEnd)
			assert.Equal(t, int(tt.wantEnd.Sub(tt.wantStart)/time.Minute), inv.DurationMinutes)
		})
	}
}

func TestParse_CalendarAttachmentSkipped(t *testing.T) {
	p := newTestParser(t, nil)

	cancelled := calendar("STATUS:CANCELLED\nDTSTART:20251105T150000Z\nDTEND:20251105T160000Z")
	inv := p.Parse(Message{Calendars: [][]byte{cancelled, []byte("not a calendar")}})
	assert.False(t, inv.HasHardTime())
}

func TestParse_SubjectBeatsCalendar(t *testing.T) {
	p := newTestParser(t, nil)
	inv := p.Parse(Message{
		Subject:   "Sync Tue Oct 28, 2025 5:45pm - 6:00pm",
		Calendars: [][]byte{calendar("DTSTART:20251105T150000Z\nDTEND:20251105T160000Z")},
	})
	require.True(t, inv.HasHardTime())
	assert.Equal(t, StrategySubject, inv.Strategy)
	assert.Equal(t, 15, inv.DurationMinutes)
}
