package slots

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval returns the interval [start, end). It fails when start is not
// before end.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("invalid interval: start %s is not before end %s",
			FormatISO(start), FormatISO(end))
	}
	return Interval{Start: start, End: end}, nil
}

// Valid reports whether Start is before End.
func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// In returns the same instants expressed in loc.
func (i Interval) In(loc *time.Location) Interval {
	return Interval{Start: i.Start.In(loc), End: i.End.In(loc)}
}

// Expand widens the interval by d on both sides.
func (i Interval) Expand(d time.Duration) Interval {
	return Interval{Start: i.Start.Add(-d), End: i.End.Add(d)}
}

// Overlaps reports whether i and o share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return Overlaps(i.Start, i.End, o.Start, o.End)
}

// String formats the interval as "start/end" in ISO 8601.
func (i Interval) String() string {
	return FormatISO(i.Start) + "/" + FormatISO(i.End)
}

// Overlaps is the half-open overlap test aStart < bEnd && aEnd > bStart.
// Intervals that only touch at an endpoint do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// FirstConflict returns the first busy interval that overlaps candidate.
func FirstConflict(candidate Interval, busy []Interval) (Interval, bool) {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return b, true
		}
	}
	return Interval{}, false
}
