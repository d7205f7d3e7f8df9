package calendar

import (
	"crypto/sha256"
	"encoding/base32"
	"strings"
	"time"

	"github.com/google/uuid"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/invitebooker/internal/scheduler"
	"github.com/teemow/invitebooker/internal/slots"
)

const conferenceType = "hangoutsMeet"

var writableRoles = map[string]bool{"owner": true, "writer": true}

func toCalendarInfo(entry *calendar.CalendarListEntry) scheduler.CalendarInfo {
	if entry == nil {
		return scheduler.CalendarInfo{}
	}
	return scheduler.CalendarInfo{
		ID:       entry.Id,
		Summary:  entry.Summary,
		TimeZone: entry.TimeZone,
		Primary:  entry.Primary,
	}
}

func toEventTime(t *calendar.EventDateTime) slots.EventTime {
	if t == nil {
		return slots.EventTime{}
	}
	return slots.EventTime{DateTime: t.DateTime, Date: t.Date}
}

func toEvent(ev *calendar.Event) slots.Event {
	if ev == nil {
		return slots.Event{}
	}
	return slots.Event{
		ID:      ev.Id,
		Summary: ev.Summary,
		Start:   toEventTime(ev.Start),
		End:     toEventTime(ev.End),
	}
}

var eventIDEncoding = base32.HexEncoding.WithPadding(base32.NoPadding)

// eventID derives a calendar event id from sourceID. Calendar ids use the
// lowercase base32hex alphabet.
func eventID(sourceID string) string {
	if sourceID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(sourceID))
	return strings.ToLower(eventIDEncoding.EncodeToString(sum[:]))
}

// toAPIEvent builds the insert payload. Times are written in the event's
// zone so the calendar UI shows the local wall clock.
func toAPIEvent(in scheduler.NewEvent) *calendar.Event {
	tz := in.TimeZone
	loc := time.UTC
	if tz == "" {
		tz = "UTC"
	} else if l, err := time.LoadLocation(tz); err == nil {
		loc = l
	}

	ev := &calendar.Event{
		Id:          eventID(in.SourceID),
		Summary:     in.Title,
		Description: in.Description,
		Start: &calendar.EventDateTime{
			DateTime: in.Start.In(loc).Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &calendar.EventDateTime{
			DateTime: in.End.In(loc).Format(time.RFC3339),
			TimeZone: tz,
		},
	}
	for _, email := range in.Attendees {
		ev.Attendees = append(ev.Attendees, &calendar.EventAttendee{Email: email})
	}
	if in.Conference {
		ev.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: conferenceType},
			},
		}
	}
	return ev
}
