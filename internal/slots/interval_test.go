package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.January, 6, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		a0, a1, b0, b1 time.Time
		want           bool
	}{
		{name: "disjoint", a0: at(9, 0), a1: at(10, 0), b0: at(11, 0), b1: at(12, 0), want: false},
		{name: "adjacent", a0: at(9, 0), a1: at(10, 0), b0: at(10, 0), b1: at(11, 0), want: false},
		{name: "partial", a0: at(9, 0), a1: at(10, 30), b0: at(10, 0), b1: at(11, 0), want: true},
		{name: "contained", a0: at(10, 15), a1: at(10, 45), b0: at(10, 0), b1: at(11, 0), want: true},
		{name: "identical", a0: at(10, 0), a1: at(11, 0), b0: at(10, 0), b1: at(11, 0), want: true},
		{name: "empty self", a0: at(10, 0), a1: at(10, 0), b0: at(10, 0), b1: at(10, 0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a0, tt.a1, tt.b0, tt.b1))
			assert.Equal(t, tt.want, Overlaps(tt.b0, tt.b1, tt.a0, tt.a1), "overlap must be symmetric")
		})
	}
}

func TestOverlaps_AcrossZones(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 15:30 IST is 10:00 UTC.
	a := Interval{Start: time.Date(2025, 1, 6, 15, 30, 0, 0, ist), End: time.Date(2025, 1, 6, 16, 0, 0, 0, ist)}
	b := Interval{Start: at(10, 0), End: at(10, 30)}
	assert.True(t, a.Overlaps(b))

	adjacent := Interval{Start: at(9, 30), End: at(10, 0)}
	assert.False(t, a.Overlaps(adjacent))
}

func TestNewInterval(t *testing.T) {
	_, err := NewInterval(at(10, 0), at(10, 0))
	assert.Error(t, err)

	_, err = NewInterval(at(11, 0), at(10, 0))
	assert.Error(t, err)

	iv, err := NewInterval(at(10, 0), at(10, 45))
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, iv.Duration())
	assert.True(t, iv.Valid())
}

func TestInterval_Expand(t *testing.T) {
	iv := Interval{Start: at(10, 0), End: at(10, 30)}
	got := iv.Expand(10 * time.Minute)
	assert.Equal(t, at(9, 50), got.Start)
	assert.Equal(t, at(10, 40), got.End)
}

func TestFirstConflict(t *testing.T) {
	busy := []Interval{
		{Start: at(9, 0), End: at(9, 30)},
		{Start: at(11, 0), End: at(12, 0)},
		{Start: at(11, 30), End: at(13, 0)},
	}

	got, ok := FirstConflict(Interval{Start: at(11, 45), End: at(12, 15)}, busy)
	require.True(t, ok)
	assert.Equal(t, busy[1], got)

	_, ok = FirstConflict(Interval{Start: at(9, 30), End: at(11, 0)}, busy)
	assert.False(t, ok)
}
