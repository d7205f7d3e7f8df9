package scheduler

import (
	"context"
	"time"

	"github.com/teemow/invitebooker/internal/invite"
	"github.com/teemow/invitebooker/internal/slots"
)

// MessageSummary identifies a candidate message.
type MessageSummary struct {
	ID           string
	ThreadID     string
	InternalDate time.Time
}

// Message is a fully fetched email.
type Message struct {
	ID           string
	InternalDate time.Time
	Subject      string
	// Body is plain text when available, otherwise HTML.
	Body    string
	Headers map[string]string
	// Calendars holds raw text/calendar attachments.
	Calendars [][]byte
}

func (m Message) invite() invite.Message {
	return invite.Message{
		Subject:   m.Subject,
		Body:      m.Body,
		Headers:   m.Headers,
		Calendars: m.Calendars,
	}
}

// Mail fetches invitation emails.
type Mail interface {
	FetchCandidates(ctx context.Context, query string, max int) ([]MessageSummary, error)
	FetchMessage(ctx context.Context, id string) (Message, error)
}

// CalendarInfo describes a calendar the account can write to.
type CalendarInfo struct {
	ID       string
	Summary  string
	TimeZone string
	Primary  bool
}

// NewEvent is the payload for Calendar.CreateEvent.
type NewEvent struct {
	// SourceID names the request being booked, normally the Gmail message
	// id. Bookings with the same SourceID map to the same calendar event.
	SourceID    string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
	// Conference asks the calendar to attach a video conference.
	Conference bool
}

// CreatedEvent is what the calendar reports back after a booking.
type CreatedEvent struct {
	ID       string
	HTMLLink string
}

// Calendar reads busy time and books events.
type Calendar interface {
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]slots.Event, error)
	CreateEvent(ctx context.Context, calendarID string, ev NewEvent) (CreatedEvent, error)
}

// Notifier posts a human-readable booking summary.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// SeenStore remembers which messages were already handled.
type SeenStore interface {
	HasSeen(ctx context.Context, id string) (bool, error)
	MarkSeen(ctx context.Context, id string) error
}

// Checkpoints stores the time a poll cycle last completed.
type Checkpoints interface {
	LastChecked(ctx context.Context, key string) (time.Time, bool, error)
	SetLastChecked(ctx context.Context, key string, t time.Time) error
}
