package invite

import (
	"time"

	"github.com/teemow/invitebooker/internal/slots"
)

// Strategy names the extraction step that produced an Invite's hard time.
type Strategy string

const (
	StrategyNone      Strategy = ""
	StrategySubject   Strategy = "subject"
	StrategyCalendar  Strategy = "calendar_attachment"
	StrategyPhrase    Strategy = "phrase"
	StrategyDateOnly  Strategy = "date_only"
	StrategyMicrodata Strategy = "microdata"
)

// DefaultTitle is used when the subject is blank.
const DefaultTitle = "Meeting"

const maxTitleLength = 120

// Invite is the result of parsing one message. It is never mutated after
// Parse returns.
type Invite struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
	// TimezoneHint is an IANA zone inferred from abbreviations in the text.
	TimezoneHint string `json:"timezone_hint,omitempty"`
	// HardStart and HardEnd are set together, and only when the text stated
	// an explicit date.
	HardStart  *time.Time `json:"hard_start,omitempty"`
	HardEnd    *time.Time `json:"hard_end,omitempty"`
	DatePhrase string     `json:"date_phrase,omitempty"`
	Attendees  []string   `json:"attendees"`
	Strategy   Strategy   `json:"strategy,omitempty"`
}

// HasHardTime reports whether an explicit start was found.
func (i Invite) HasHardTime() bool {
	return i.HardStart != nil
}

// Duration returns DurationMinutes as a time.Duration.
func (i Invite) Duration() time.Duration {
	return time.Duration(i.DurationMinutes) * time.Minute
}

// Window returns the requested meeting interval. HardEnd is used when
// present, otherwise the parsed duration is applied to HardStart.
func (i Invite) Window() (slots.Interval, bool) {
	if i.HardStart == nil {
		return slots.Interval{}, false
	}
	end := i.HardStart.Add(i.Duration())
	if i.HardEnd != nil && i.HardEnd.After(*i.HardStart) {
		end = *i.HardEnd
	}
	return slots.Interval{Start: *i.HardStart, End: end}, true
}

// Message is the parser's view of an email.
type Message struct {
	Subject string
	// Body may contain HTML; tags are stripped before scanning.
	Body    string
	Headers map[string]string
	// Calendars holds raw text/calendar attachments.
	Calendars [][]byte
}
