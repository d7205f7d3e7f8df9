// Package slots holds the time arithmetic behind meeting scheduling.
//
// It covers three concerns:
//
//   - Interval and Overlaps: half-open [start, end) intervals. Back-to-back
//     intervals do not overlap.
//   - DeriveBusy: normalizes calendar events, timed or all-day, into busy
//     intervals in a single location.
//   - Suggest: scans work windows on weekdays at a fixed step and returns the
//     first free slots that keep a buffer around every busy interval.
//
// Example usage:
//
//	busy := slots.DeriveBusy(events, loc)
//	if _, conflict := slots.FirstConflict(candidate, busy); conflict {
//	    free := slots.Suggest(busy, now, slots.Options{
//	        WorkStart: slots.Clock{Hour: 10},
//	        WorkEnd:   slots.Clock{Hour: 18},
//	        Duration:  30 * time.Minute,
//	        Buffer:    10 * time.Minute,
//	        DaysAhead: 7,
//	        Limit:     3,
//	    })
//	}
package slots
