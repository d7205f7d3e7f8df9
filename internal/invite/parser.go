package invite

import (
	"html"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/teemow/invitebooker/internal/slots"
)

// Config holds the parser's defaults.
type Config struct {
	// Location localizes times when the text carries no zone hint.
	Location *time.Location
	// DefaultDurationMinutes applies when the body states no duration.
	DefaultDurationMinutes int
	// WorkStart is the clock time used for date-only matches.
	WorkStart slots.Clock
	// Resolver handles free-text phrases. Nil disables that strategy.
	Resolver PhraseResolver
	// Now defaults to time.Now.
	Now func() time.Time
}

// Parser extracts Invites from messages. It is safe for concurrent use when
// its Resolver is.
type Parser struct {
	loc             *time.Location
	defaultDuration int
	workStart       slots.Clock
	resolver        PhraseResolver
	now             func() time.Time
}

// NewParser returns a Parser with zero config fields replaced by defaults.
func NewParser(cfg Config) *Parser {
	p := &Parser{
		loc:             cfg.Location,
		defaultDuration: cfg.DefaultDurationMinutes,
		workStart:       cfg.WorkStart,
		resolver:        cfg.Resolver,
		now:             cfg.Now,
	}
	if p.loc == nil {
		p.loc = time.UTC
	}
	if p.defaultDuration < 1 {
		p.defaultDuration = 30
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Parse is a convenience wrapper that builds a Parser from a zone name and a
// default duration and parses one message with the natural-language resolver.
func Parse(subject, body string, headers map[string]string, userTimezone string, defaultDurationMinutes int) Invite {
	loc, err := time.LoadLocation(userTimezone)
	if err != nil {
		loc = time.UTC
	}
	p := NewParser(Config{
		Location:               loc,
		DefaultDurationMinutes: defaultDurationMinutes,
		WorkStart:              slots.Clock{Hour: 10},
		Resolver:               NewWhenResolver(),
	})
	return p.Parse(Message{Subject: subject, Body: body, Headers: headers})
}

// window is an intermediate start/end pair produced by a strategy.
type window struct {
	start, end time.Time
}

// Parse extracts an Invite from msg. It never fails.
func (p *Parser) Parse(msg Message) Invite {
	now := p.now()
	body := stripTags(msg.Body)

	inv := Invite{
		Title:           title(msg.Subject),
		DurationMinutes: p.duration(body),
		TimezoneHint:    zoneHintFor(msg.Subject + "\n" + body),
		DatePhrase:      datePhrase(body),
		Attendees:       Attendees(msg.Headers),
	}

	loc := p.loc
	if inv.TimezoneHint != "" {
		if l, err := time.LoadLocation(inv.TimezoneHint); err == nil {
			loc = l
		}
	}
	dur := inv.Duration()
	text := msg.Subject + "\n" + body

	strategies := []struct {
		name Strategy
		run  func() (window, bool)
	}{
		{StrategySubject, func() (window, bool) { return fromSubject(msg.Subject, loc, dur) }},
		{StrategyCalendar, func() (window, bool) { return p.fromCalendars(msg.Calendars, loc, now, dur) }},
		{StrategyPhrase, func() (window, bool) { return p.fromPhrase(text, loc, now, dur) }},
		{StrategyDateOnly, func() (window, bool) { return p.fromDateOnly(text, loc, dur) }},
		{StrategyMicrodata, func() (window, bool) { return p.fromMicrodata(msg.Subject+"\n"+msg.Body, loc, dur) }},
	}

	for _, s := range strategies {
		w, ok := attempt(s.run)
		if !ok {
			continue
		}
		w = correctYear(w, msg.Subject)
		w = rollForward(w, now)
		if !w.end.After(w.start) {
			w.end = w.start.Add(time.Minute)
		}
		start, end := w.start, w.end
		inv.HardStart = &start
		inv.HardEnd = &end
		inv.DurationMinutes = max(1, int(end.Sub(start)/time.Minute))
		inv.Strategy = s.name
		break
	}

	return inv
}

// attempt runs fn and turns a panic into "no match".
func attempt(fn func() (window, bool)) (w window, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			w, ok = window{}, false
		}
	}()
	return fn()
}

func stripTags(s string) string {
	return html.UnescapeString(tagRE.ReplaceAllString(s, " "))
}

func title(subject string) string {
	t := strings.TrimSpace(subject)
	if t == "" {
		return DefaultTitle
	}
	if utf8.RuneCountInString(t) > maxTitleLength {
		t = string([]rune(t)[:maxTitleLength])
	}
	return t
}

func (p *Parser) duration(body string) int {
	m := durationRE.FindStringSubmatch(body)
	if m == nil {
		return p.defaultDuration
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return p.defaultDuration
	}
	unit := strings.ToLower(m[2])
	if strings.HasPrefix(unit, "h") {
		n *= 60
	}
	return n
}

func zoneHintFor(text string) string {
	for _, h := range zoneHints {
		if h.re.MatchString(text) {
			return h.zone
		}
	}
	return ""
}

func datePhrase(body string) string {
	return strings.TrimSpace(datePhraseRE.FindString(body))
}
