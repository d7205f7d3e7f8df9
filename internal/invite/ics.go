package invite

import (
	"bytes"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

// fromCalendars takes the first usable VEVENT across the attached calendars.
// Cancelled events are ignored. A recurring event resolves to its first
// occurrence at or after now.
func (p *Parser) fromCalendars(calendars [][]byte, loc *time.Location, now time.Time, dur time.Duration) (window, bool) {
	for _, raw := range calendars {
		if len(raw) == 0 {
			continue
		}
		cal, err := ical.ParseCalendar(bytes.NewReader(raw))
		if err != nil {
			continue
		}
		for _, ev := range cal.Events() {
			if w, ok := p.eventWindow(ev, loc, now, dur); ok {
				return w, true
			}
		}
	}
	return window{}, false
}

func (p *Parser) eventWindow(ev *ical.VEvent, loc *time.Location, now time.Time, dur time.Duration) (window, bool) {
	if st := ev.GetProperty(ical.ComponentPropertyStatus); st != nil && strings.EqualFold(st.Value, "CANCELLED") {
		return window{}, false
	}
	dtStart := ev.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return window{}, false
	}

	var w window
	if isAllDay(dtStart) {
		v := strings.TrimSpace(dtStart.Value)
		if len(v) < 8 {
			return window{}, false
		}
		day, err := time.ParseInLocation("20060102", v[:8], loc)
		if err != nil {
			return window{}, false
		}
		w.start = p.workStart.On(day)
		w.end = w.start.Add(dur)
	} else {
		start, err := ev.GetStartAt()
		if err != nil {
			return window{}, false
		}
		w.start = anchor(start, dtStart, loc)
		w.end = w.start.Add(dur)
		if dtEnd := ev.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := ev.GetEndAt(); err == nil {
				if end = anchor(end, dtEnd, loc); end.After(w.start) {
					w.end = end
				}
			}
		}
	}

	if rr := ev.GetProperty(ical.ComponentPropertyRrule); rr != nil && rr.Value != "" {
		w = nextOccurrence(w, rr.Value, now)
	}
	return w, true
}

func isAllDay(prop *ical.IANAProperty) bool {
	if vs, ok := prop.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(prop.Value, "T")
}

// anchor converts t to loc. Floating times (no TZID, no trailing Z) are read
// as wall-clock times in loc.
func anchor(t time.Time, prop *ical.IANAProperty, loc *time.Location) time.Time {
	_, hasTZ := prop.ICalParameters["TZID"]
	if hasTZ || strings.HasSuffix(strings.TrimSpace(prop.Value), "Z") {
		return t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func nextOccurrence(w window, rule string, now time.Time) window {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return w
	}
	r.DTStart(w.start)
	next := r.After(now, true)
	if next.IsZero() {
		return w
	}
	span := w.end.Sub(w.start)
	start := next.In(w.start.Location())
	return window{start: start, end: start.Add(span)}
}
