package invite

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/invitebooker/internal/slots"
)

var fixedNow = time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func newTestParser(t *testing.T, resolver PhraseResolver) *Parser {
	t.Helper()
	return NewParser(Config{
		Location:               mustLoad(t, "Asia/Kolkata"),
		DefaultDurationMinutes: 30,
		WorkStart:              slots.Clock{Hour: 10},
		Resolver:               resolver,
		Now:                    func() time.Time { return fixedNow },
	})
}

func TestParse_SubjectWithEndTime(t *testing.T) {
	p := newTestParser(t, nil)
	inv := p.Parse(Message{Subject: "Invitation: Sync Tue Oct 28, 2025 5:45pm - 7:45pm (IST)"})

	ist := mustLoad(t, "Asia/Kolkata")
	require.True(t, inv.HasHardTime())
	assert.Equal(t, "2025-10-28T17:45:00+05:30", inv.HardStart.In(ist).Format(time.RFC3339))
	assert.Equal(t, "2025-10-28T19:45:00+05:30", inv.HardEnd.In(ist).Format(time.RFC3339))
	assert.Equal(t, 120, inv.DurationMinutes)
	assert.Equal(t, "Asia/Kolkata", inv.TimezoneHint)
	assert.Equal(t, StrategySubject, inv.Strategy)
	assert.Equal(t, "Invitation: Sync Tue Oct 28, 2025 5:45pm - 7:45pm (IST)", inv.Title)
}

func TestParse_ConvenienceWrapper(t *testing.T) {
	inv := Parse("Invitation: Sync Tue Oct 28, 2031 5:45pm - 7:45pm (IST)", "", nil, "Asia/Kolkata", 30)
	require.True(t, inv.HasHardTime())
	assert.Equal(t, "2031-10-28T12:15:00Z", inv.HardStart.UTC().Format(time.RFC3339))
	assert.Equal(t, 120, inv.DurationMinutes)
}

func TestParse_SubjectVariants(t *testing.T) {
	ist := mustLoad(t, "Asia/Kolkata")

	tests := []struct {
		name         string
		subject      string
		body         string
		wantStart    string
		wantDuration int
	}{
		{
			name:         "no end time uses body duration",
			subject:      "Review Fri Nov 7, 2025 at 9am",
			body:         "Agenda attached. Should take 45 min.",
			wantStart:    "2025-11-07T09:00:00+05:30",
			wantDuration: 45,
		},
		{
			name:         "end without meridiem inherits start meridiem",
			subject:      "Planning Wednesday November 5, 2025 2:00pm - 3:30",
			wantStart:    "2025-11-05T14:00:00+05:30",
			wantDuration: 90,
		},
		{
			name:         "crosses midnight",
			subject:      "Ops handover Fri Nov 7, 2025 11:30pm - 12:30am",
			wantStart:    "2025-11-07T23:30:00+05:30",
			wantDuration: 60,
		},
	}

	p := newTestParser(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := p.Parse(Message{Subject: tt.subject, Body: tt.body})
			require.True(t, inv.HasHardTime())
			assert.Equal(t, tt.wantStart, inv.HardStart.In(ist).Format(time.RFC3339))
			assert.Equal(t, tt.wantDuration, inv.DurationMinutes)
			assert.Equal(t, StrategySubject, inv.Strategy)
		})
	}
}

func TestParse_InvalidCalendarDateFallsThrough(t *testing.T) {
	p := newTestParser(t, nil)
	inv := p.Parse(Message{Subject: "Sync Mon Feb 30, 2025 10:00am"})
	assert.False(t, inv.HasHardTime())
}

func TestParse_DurationOnly(t *testing.T) {
	p := newTestParser(t, NewWhenResolver())
	inv := p.Parse(Message{Subject: "Quick chat", Body: "Can we find 90 minutes to go over the roadmap?"})

	assert.Equal(t, 90, inv.DurationMinutes)
	assert.Nil(t, inv.HardStart)
	assert.Nil(t, inv.HardEnd)
	assert.Equal(t, StrategyNone, inv.Strategy)
}

func TestParse_Duration(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{body: "about 2 hours", want: 120},
		{body: "1 hr tops", want: 60},
		{body: "20mins", want: 20},
		{body: "0 minutes", want: 30},
		{body: "no length given", want: 30},
		{body: "<b>15</b> <i>minutes</i>", want: 15},
	}

	p := newTestParser(t, nil)
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(Message{Body: tt.body}).DurationMinutes)
		})
	}
}

func TestParse_TimezoneHint(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{name: "pst in body", body: "10am PST works", want: "America/Los_Angeles"},
		{name: "pt token", body: "9 PT", want: "America/Los_Angeles"},
		{name: "cet", subject: "Call (CET)", want: "Europe/Paris"},
		{name: "uk time", body: "3pm UK time", want: "Europe/London"},
		{name: "first in table wins", body: "BST or IST", want: "Asia/Kolkata"},
		{name: "no hint", body: "whenever", want: ""},
		{name: "substring is not a hint", body: "optimistic", want: ""},
	}

	p := newTestParser(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(Message{Subject: tt.subject, Body: tt.body}).TimezoneHint)
		})
	}
}

func TestParse_DateOnly(t *testing.T) {
	p := newTestParser(t, nil)
	inv := p.Parse(Message{Subject: "Offsite", Body: "Team offsite @ Thu Oct 30, 2025 in the main hall"})

	require.True(t, inv.HasHardTime())
	assert.Equal(t, "2025-10-30T10:00:00+05:30", inv.HardStart.Format(time.RFC3339))
	assert.Equal(t, 30, inv.DurationMinutes)
	assert.Equal(t, StrategyDateOnly, inv.Strategy)
}

func TestParse_Microdata(t *testing.T) {
	p := newTestParser(t, nil)
	body := `<div itemscope><meta itemprop="startDate" datetime="20251105"></div>`
	inv := p.Parse(Message{Subject: "Event", Body: body})

	require.True(t, inv.HasHardTime())
	assert.Equal(t, "2025-11-05T10:00:00+05:30", inv.HardStart.Format(time.RFC3339))
	assert.Equal(t, StrategyMicrodata, inv.Strategy)
}

func TestParse_PhraseWithYearCorrection(t *testing.T) {
	var got []string
	resolver := ResolverFunc(func(text string, loc *time.Location, now time.Time) (time.Time, bool) {
		got = append(got, text)
		return time.Date(2024, 11, 4, 15, 0, 0, 0, loc), true
	})
	p := newTestParser(t, resolver)
	inv := p.Parse(Message{Subject: "Planning 2025", Body: "Let's meet Nov 4 at 3pm to plan."})

	require.True(t, inv.HasHardTime())
	require.NotEmpty(t, got)
	assert.Contains(t, got[0], "3pm")
	assert.Equal(t, 2025, inv.HardStart.Year())
	assert.Equal(t, time.November, inv.HardStart.Month())
	assert.Equal(t, 4, inv.HardStart.Day())
	assert.Equal(t, 30, inv.DurationMinutes)
	assert.Equal(t, StrategyPhrase, inv.Strategy)
}

func TestParse_PhraseWithWhenResolver(t *testing.T) {
	ist := mustLoad(t, "Asia/Kolkata")
	now := time.Date(2025, 10, 10, 9, 0, 0, 0, ist)
	p := NewParser(Config{
		Location:               ist,
		DefaultDurationMinutes: 30,
		WorkStart:              slots.Clock{Hour: 10},
		Resolver:               NewWhenResolver(),
		Now:                    func() time.Time { return now },
	})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"iso with space", "Meeting on 2025-10-21 14:00 please", "2025-10-21T14:00:00+05:30"},
		{"iso with T", "Please join at 2025-10-21T14:00", "2025-10-21T14:00:00+05:30"},
		{"weekday month day year", "Let's meet on Thursday, Oct 16, 2025 at 3pm", "2025-10-16T15:00:00+05:30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := p.Parse(Message{Subject: "Sync", Body: tt.body})

			require.True(t, inv.HasHardTime())
			assert.Equal(t, tt.want, inv.HardStart.In(ist).Format(time.RFC3339))
			assert.Equal(t, 30*time.Minute, inv.HardEnd.Sub(*inv.HardStart))
			assert.Equal(t, StrategyPhrase, inv.Strategy)
		})
	}
}

func TestParse_IsoPhraseWithoutResolver(t *testing.T) {
	p := newTestParser(t, nil)
	inv := p.Parse(Message{Subject: "Sync", Body: "Meeting on 2025-10-21 14:00 please"})

	require.True(t, inv.HasHardTime())
	assert.Equal(t, "2025-10-21T14:00:00+05:30", inv.HardStart.Format(time.RFC3339))
	assert.Equal(t, StrategyPhrase, inv.Strategy)
}

func TestParse_StaleDateRollsForward(t *testing.T) {
	resolver := ResolverFunc(func(text string, loc *time.Location, now time.Time) (time.Time, bool) {
		return time.Date(2023, 3, 10, 10, 0, 0, 0, loc), true
	})
	p := newTestParser(t, resolver)
	inv := p.Parse(Message{Subject: "Sync", Body: "How about March 10 at 10:00?"})

	require.True(t, inv.HasHardTime())
	assert.Equal(t, 2026, inv.HardStart.Year())
	assert.Equal(t, time.March, inv.HardStart.Month())
	assert.Equal(t, 10, inv.HardStart.Day())
	assert.Equal(t, 30*time.Minute, inv.HardEnd.Sub(*inv.HardStart))
}

func TestParse_ResolverPanicFallsThrough(t *testing.T) {
	resolver := ResolverFunc(func(string, *time.Location, time.Time) (time.Time, bool) {
		panic("boom")
	})
	p := newTestParser(t, resolver)
	inv := p.Parse(Message{Body: "tomorrow at 3pm, or failing that @ Thu Oct 30, 2025"})

	require.True(t, inv.HasHardTime())
	assert.Equal(t, StrategyDateOnly, inv.Strategy)
}

func TestParse_Title(t *testing.T) {
	p := newTestParser(t, nil)
	assert.Equal(t, DefaultTitle, p.Parse(Message{Subject: "   "}).Title)

	long := strings.Repeat("é", 200)
	assert.Equal(t, 120, len([]rune(p.Parse(Message{Subject: long}).Title)))
}

func TestParse_DatePhrase(t *testing.T) {
	p := newTestParser(t, nil)
	inv := p.Parse(Message{Body: "Hi! Can we do tomorrow afternoon? thanks. Bye"})
	assert.Equal(t, "tomorrow afternoon? thanks", inv.DatePhrase)
	assert.False(t, inv.HasHardTime())
}

func TestAttendees(t *testing.T) {
	headers := map[string]string{
		"From":    "Carol <carol@example.org>",
		"to":      "Alice <alice@example.com>, bob@example.com",
		"CC":      "ALICE@example.com, dave@example.net",
		"Subject": "ignored@example.com",
	}
	assert.Equal(t, []string{
		"alice@example.com",
		"bob@example.com",
		"dave@example.net",
		"carol@example.org",
	}, Attendees(headers))

	assert.Empty(t, Attendees(nil))
}

func TestInvite_Window(t *testing.T) {
	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	inv := Invite{DurationMinutes: 45, HardStart: &start}
	w, ok := inv.Window()
	require.True(t, ok)
	assert.Equal(t, start.Add(45*time.Minute), w.End)

	_, ok = Invite{DurationMinutes: 30}.Window()
	assert.False(t, ok)
}

func TestWhenResolver(t *testing.T) {
	r := NewWhenResolver()
	base := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	got, ok := r.Resolve("tomorrow at 3pm", time.UTC, base)
	require.True(t, ok)
	assert.Equal(t, 7, got.Day())
	assert.Equal(t, 15, got.Hour())
	assert.Equal(t, 0, got.Second())

	_, ok = r.Resolve("no time here", time.UTC, base)
	assert.False(t, ok)
}

func TestWhenResolver_ExplicitYearAndClock(t *testing.T) {
	r := NewWhenResolver()
	base := time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		phrase string
		want   time.Time
	}{
		{"year after comma", "Thursday, Oct 16, 2025 at 3pm", time.Date(2025, 10, 16, 15, 0, 0, 0, time.UTC)},
		{"minutes and dotted meridiem", "tomorrow at 4:30 p.m.", time.Date(2025, 10, 11, 16, 30, 0, 0, time.UTC)},
		{"24h clock", "tomorrow at 14:15", time.Date(2025, 10, 11, 14, 15, 0, 0, time.UTC)},
		{"iso date and time", "2025-10-21 14:00", time.Date(2025, 10, 21, 14, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.phrase, time.UTC, base)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
