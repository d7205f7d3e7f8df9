package invite

import (
	"strconv"
	"time"
)

const staleAfter = 365 * 24 * time.Hour

// correctYear moves the window to the first four-digit year stated in the
// subject when it differs from the parsed one.
func correctYear(w window, subject string) window {
	m := yearRE.FindStringSubmatch(subject)
	if m == nil {
		return w
	}
	year, err := strconv.Atoi(m[1])
	if err != nil || year == w.start.Year() {
		return w
	}
	return shiftTo(w, year)
}

// rollForward moves a window that lies more than a year in the past to the
// next occurrence of its month and day on or after now's month.
func rollForward(w window, now time.Time) window {
	if now.Sub(w.start) <= staleAfter {
		return w
	}
	year := now.Year()
	if w.start.Month() < now.Month() {
		year++
	}
	return shiftTo(w, year)
}

func shiftTo(w window, year int) window {
	span := w.end.Sub(w.start)
	s := w.start
	start := time.Date(year, s.Month(), s.Day(), s.Hour(), s.Minute(), s.Second(), s.Nanosecond(), s.Location())
	return window{start: start, end: start.Add(span)}
}
