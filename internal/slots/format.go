package slots

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// naiveLayouts are accepted for timestamps that carry no offset.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	dateLayout,
}

// FormatISO formats t as RFC 3339 with second precision.
func FormatISO(t time.Time) string {
	return t.Truncate(time.Second).Format(time.RFC3339)
}

// ParseTimestamp parses an ISO 8601 timestamp. A value with an offset is
// converted to loc; a value without one is interpreted as wall-clock time
// in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseInterval parses "start/end" as produced by Interval.String.
func ParseInterval(s string, loc *time.Location) (Interval, error) {
	start, end, ok := strings.Cut(s, "/")
	if !ok {
		return Interval{}, fmt.Errorf("interval %q: expected start/end", s)
	}
	st, err := ParseTimestamp(start, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("interval start: %w", err)
	}
	en, err := ParseTimestamp(end, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("interval end: %w", err)
	}
	return NewInterval(st, en)
}

// HumanSlot renders a slot for people, e.g.
// "Mon, Jan 06 — 11:00 AM–11:30 AM Asia/Kolkata".
func HumanSlot(slot Interval, tzLabel string) string {
	return fmt.Sprintf("%s — %s–%s %s",
		slot.Start.Format("Mon, Jan 02"),
		slot.Start.Format("03:04 PM"),
		slot.End.Format("03:04 PM"),
		tzLabel)
}
