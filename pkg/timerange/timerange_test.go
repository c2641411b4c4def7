package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(h, m int) time.Time {
	return time.Date(2024, 6, 10, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"partial overlap", at(9, 0), at(9, 30), at(9, 15), at(9, 45), true},
		{"contained", at(9, 0), at(10, 0), at(9, 15), at(9, 45), true},
		{"identical", at(9, 0), at(9, 30), at(9, 0), at(9, 30), true},
		{"touching boundary", at(9, 0), at(9, 30), at(9, 30), at(10, 0), false},
		{"touching boundary reversed", at(9, 30), at(10, 0), at(9, 0), at(9, 30), false},
		{"disjoint", at(9, 0), at(9, 30), at(11, 0), at(12, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd), "overlap must be symmetric")
		})
	}
}

func TestIsPast(t *testing.T) {
	now := at(12, 0)
	assert.True(t, IsPast(at(11, 59), now))
	assert.False(t, IsPast(at(12, 0), now))
	assert.False(t, IsPast(at(12, 1), now))
}

func TestIsPastDay(t *testing.T) {
	today := at(23, 59)
	assert.True(t, IsPastDay(today.AddDate(0, 0, -1), today))
	// Same calendar day is not past even at an earlier hour.
	assert.False(t, IsPastDay(at(0, 0), today))
	assert.False(t, IsPastDay(today.AddDate(0, 0, 1), today))
}

func TestStartOfWeek(t *testing.T) {
	// 2024-06-10 is a Monday.
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, StartOfWeek(at(15, 30)))
	assert.Equal(t, monday, StartOfWeek(monday))
	sunday := time.Date(2024, 6, 16, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, StartOfWeek(sunday))
}

func TestDaysIn(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysIn(day, day.AddDate(0, 0, 1)))
	assert.Equal(t, 7, DaysIn(day, day.AddDate(0, 0, 7)))
	assert.Equal(t, 30, DaysIn(StartOfMonth(day), StartOfMonth(day).AddDate(0, 1, 0)))
	// Degenerate window still counts as one day.
	assert.Equal(t, 1, DaysIn(day, day))
}

func TestAt(t *testing.T) {
	day := time.Date(2024, 6, 10, 17, 45, 12, 0, time.UTC)
	got := At(day, 9, 30)
	assert.Equal(t, time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC), got)
}
