package invite

import (
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/teemow/invitebooker/internal/slots"
)

// PhraseResolver turns a free-text date/time phrase into an instant.
type PhraseResolver interface {
	Resolve(text string, loc *time.Location, now time.Time) (time.Time, bool)
}

// WhenResolver resolves English phrases such as "tomorrow at 3pm".
type WhenResolver struct {
	parser *when.Parser
}

// NewWhenResolver returns a resolver with the English and common rule sets.
func NewWhenResolver() *WhenResolver {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &WhenResolver{parser: w}
}

// Resolve reads the phrase relative to now, taking clock times as wall-clock
// times in loc. Seconds are dropped.
//
// The rule set only contributes the calendar date. A stated year and the
// last clock time in the phrase are applied on top of it, since the rules
// misread "Oct 16, 2025 at 3pm" as a 20:25 clock time.
func (r *WhenResolver) Resolve(text string, loc *time.Location, now time.Time) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	if isoDateTimeRE.MatchString(strings.TrimSpace(text)) {
		if t, err := slots.ParseTimestamp(text, loc); err == nil {
			return t, true
		}
	}

	year := 0
	if m := yearRE.FindStringSubmatchIndex(text); m != nil {
		year, _ = strconv.Atoi(text[m[2]:m[3]])
		start := m[0]
		if prefix := strings.TrimRight(text[:start], " "); strings.HasSuffix(prefix, ",") {
			start = len(prefix) - 1
		}
		text = text[:start] + text[m[1]:]
	}

	res, err := r.parser.Parse(text, now.In(loc))
	if err != nil || res == nil {
		return time.Time{}, false
	}
	t := res.Time.In(loc)
	hour, minute := t.Hour(), t.Minute()
	if h, mi, ok := lastClock(text); ok {
		hour, minute = h, mi
	}
	if year == 0 {
		year = t.Year()
	}
	return time.Date(year, t.Month(), t.Day(), hour, minute, 0, 0, loc), true
}

// lastClock returns the final "3pm", "3:30 p.m." or "15:30" in text.
func lastClock(text string) (int, int, bool) {
	matches := clockRE.FindAllStringSubmatch(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if m[3] != "" {
			if hour, minute, ok := clock12(m[1], m[2], m[3]); ok {
				return hour, minute, true
			}
			continue
		}
		hour, err := strconv.Atoi(m[4])
		if err != nil || hour > 23 {
			continue
		}
		minute, err := strconv.Atoi(m[5])
		if err != nil || minute > 59 {
			continue
		}
		return hour, minute, true
	}
	return 0, 0, false
}

// ResolverFunc adapts a function to PhraseResolver.
type ResolverFunc func(text string, loc *time.Location, now time.Time) (time.Time, bool)

// Resolve calls f.
func (f ResolverFunc) Resolve(text string, loc *time.Location, now time.Time) (time.Time, bool) {
	return f(text, loc, now)
}
