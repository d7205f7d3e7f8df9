package invite

import (
	"strconv"
	"strings"
	"time"

	"github.com/teemow/invitebooker/internal/slots"
)

func fromSubject(subject string, loc *time.Location, dur time.Duration) (window, bool) {
	m := subjectRE.FindStringSubmatch(subject)
	if m == nil {
		return window{}, false
	}
	day, year, ok := dayYear(m[2], m[3])
	if !ok {
		return window{}, false
	}
	month := months[strings.ToLower(m[1][:3])]

	hour, minute, ok := clock12(m[4], m[5], m[6])
	if !ok {
		return window{}, false
	}
	start, ok := civil(year, month, day, hour, minute, loc)
	if !ok {
		return window{}, false
	}

	if m[7] == "" {
		return window{start: start, end: start.Add(dur)}, true
	}
	meridiem := m[9]
	if meridiem == "" {
		meridiem = m[6]
	}
	endHour, endMinute, ok := clock12(m[7], m[8], meridiem)
	if !ok {
		return window{start: start, end: start.Add(dur)}, true
	}
	end := time.Date(year, time.Month(month), day, endHour, endMinute, 0, 0, loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	if end.Sub(start) < time.Minute {
		end = start.Add(time.Minute)
	}
	return window{start: start, end: end}, true
}

func (p *Parser) fromPhrase(text string, loc *time.Location, now time.Time, dur time.Duration) (window, bool) {
	for _, candidate := range phraseCandidateRE.FindAllString(text, -1) {
		if isoDateTimeRE.MatchString(candidate) {
			if t, err := slots.ParseTimestamp(candidate, loc); err == nil {
				return window{start: t, end: t.Add(dur)}, true
			}
			continue
		}
		if p.resolver == nil {
			continue
		}
		t, ok := p.resolver.Resolve(candidate, loc, now)
		if !ok || t.IsZero() {
			continue
		}
		return window{start: t, end: t.Add(dur)}, true
	}
	return window{}, false
}

func (p *Parser) fromDateOnly(text string, loc *time.Location, dur time.Duration) (window, bool) {
	m := dateOnlyRE.FindStringSubmatch(text)
	if m == nil {
		return window{}, false
	}
	day, year, ok := dayYear(m[2], m[3])
	if !ok {
		return window{}, false
	}
	start, ok := civil(year, months[strings.ToLower(m[1])], day, p.workStart.Hour, p.workStart.Minute, loc)
	if !ok {
		return window{}, false
	}
	return window{start: start, end: start.Add(dur)}, true
}

func (p *Parser) fromMicrodata(raw string, loc *time.Location, dur time.Duration) (window, bool) {
	m := microdataRE.FindStringSubmatch(raw)
	if m == nil {
		return window{}, false
	}
	ymd := m[1]
	year, _ := strconv.Atoi(ymd[0:4])
	month, _ := strconv.Atoi(ymd[4:6])
	day, _ := strconv.Atoi(ymd[6:8])
	start, ok := civil(year, month, day, p.workStart.Hour, p.workStart.Minute, loc)
	if !ok {
		return window{}, false
	}
	return window{start: start, end: start.Add(dur)}, true
}

func dayYear(dayStr, yearStr string) (int, int, bool) {
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return 0, 0, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, 0, false
	}
	return day, year, true
}

// clock12 converts an "h[:mm] a|p" triple to 24-hour time.
func clock12(hourStr, minuteStr, meridiem string) (int, int, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, false
	}
	minute := 0
	if minuteStr != "" {
		minute, err = strconv.Atoi(minuteStr)
		if err != nil || minute > 59 {
			return 0, 0, false
		}
	}
	hour %= 12
	if strings.EqualFold(meridiem, "p") {
		hour += 12
	}
	return hour, minute, true
}

// civil builds a time in loc and rejects dates that time.Date would
// normalize, such as February 30.
func civil(year, month, day, hour, minute int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
