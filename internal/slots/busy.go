package slots

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// EventTime is one end of a calendar event. Exactly one of DateTime or Date
// is expected to be set: DateTime for timed events, Date (YYYY-MM-DD) for
// all-day events.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

// IsZero reports whether neither shape is present.
func (t EventTime) IsZero() bool {
	return strings.TrimSpace(t.DateTime) == "" && strings.TrimSpace(t.Date) == ""
}

// AllDay reports whether the value is a bare date.
func (t EventTime) AllDay() bool {
	return strings.TrimSpace(t.DateTime) == "" && strings.TrimSpace(t.Date) != ""
}

// Resolve parses the value in loc. Values without an offset are taken to be
// wall-clock times in loc; values with an offset are converted to loc.
func (t EventTime) Resolve(loc *time.Location) (time.Time, error) {
	if v := strings.TrimSpace(t.DateTime); v != "" {
		return ParseTimestamp(v, loc)
	}
	if v := strings.TrimSpace(t.Date); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", v, err)
		}
		return d, nil
	}
	return time.Time{}, errMissingTime
}

// Event is a calendar event reduced to the fields busy derivation needs.
type Event struct {
	ID      string    `json:"id,omitempty"`
	Summary string    `json:"summary,omitempty"`
	Start   EventTime `json:"start"`
	End     EventTime `json:"end"`
}

var errMissingTime = errors.New("missing date and dateTime")

// DeriveBusy turns events into busy intervals expressed in loc, preserving
// input order. Events with a missing or unparseable start or end are
// skipped, as are events that end before they start. Overlapping intervals
// are not merged.
func DeriveBusy(events []Event, loc *time.Location) []Interval {
	if loc == nil {
		loc = time.UTC
	}
	busy := make([]Interval, 0, len(events))
	for _, ev := range events {
		if ev.Start.IsZero() || ev.End.IsZero() {
			continue
		}
		start, err := ev.Start.Resolve(loc)
		if err != nil {
			continue
		}
		end, err := ev.End.Resolve(loc)
		if err != nil {
			continue
		}
		if end.Before(start) {
			continue
		}
		busy = append(busy, Interval{Start: start, End: end})
	}
	return busy
}
