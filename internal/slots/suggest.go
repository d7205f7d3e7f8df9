package slots

import (
	"fmt"
	"time"
)

// DefaultStep is the granularity at which candidate starts are generated.
const DefaultStep = 30 * time.Minute

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// On returns the clock time on day's calendar date in day's location.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, day.Location())
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Options controls a slot search.
type Options struct {
	WorkStart Clock
	WorkEnd   Clock
	Duration  time.Duration
	Buffer    time.Duration
	// Step defaults to DefaultStep.
	Step      time.Duration
	DaysAhead int
	Limit     int
}

// Result is the outcome of a search together with how many candidates were
// examined.
type Result struct {
	Slots    []Interval
	Examined int
}

// Suggest returns up to opts.Limit free slots in chronological order.
func Suggest(busy []Interval, now time.Time, opts Options) []Interval {
	return Search(busy, now, opts).Slots
}

// Search walks days 1..DaysAhead after now (in now's location), skipping
// weekends. Within each work window it tries starts at Step increments from
// WorkStart. A candidate is accepted when it ends by WorkEnd, starts strictly
// after now, and, widened by Buffer on both sides, overlaps no busy interval.
func Search(busy []Interval, now time.Time, opts Options) Result {
	var res Result
	if opts.Duration <= 0 || opts.Limit <= 0 || opts.DaysAhead <= 0 {
		return res
	}
	step := opts.Step
	if step <= 0 {
		step = DefaultStep
	}

	for d := 1; d <= opts.DaysAhead && len(res.Slots) < opts.Limit; d++ {
		day := now.AddDate(0, 0, d)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		windowEnd := opts.WorkEnd.On(day)
		for cur := opts.WorkStart.On(day); !cur.Add(opts.Duration).After(windowEnd) && len(res.Slots) < opts.Limit; cur = cur.Add(step) {
			res.Examined++
			candidate := Interval{Start: cur, End: cur.Add(opts.Duration)}
			if _, clash := FirstConflict(candidate.Expand(opts.Buffer), busy); clash {
				continue
			}
			if !candidate.Start.After(now) {
				continue
			}
			res.Slots = append(res.Slots, candidate)
		}
	}
	return res
}
