package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInferStartDate(t *testing.T) {
	// 2026-08-25 is a Tuesday.
	now := time.Date(2026, time.August, 25, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		goal string
		want time.Time
	}{
		{"today", "leave today for Goa", date(2026, time.August, 25)},
		{"tomorrow", "fly out tomorrow", date(2026, time.August, 26)},
		{"day after tomorrow", "start the day after tomorrow", date(2026, time.August, 27)},
		{"this weekend", "a getaway this weekend", date(2026, time.August, 29)},
		{"bare weekend", "weekend in Lonavala", date(2026, time.August, 29)},
		{"next weekend", "hiking next weekend", date(2026, time.September, 5)},
		{"next week", "a tour next week", date(2026, time.August, 31)},
		{"next month", "vacation next month", date(2026, time.September, 24)},
		{"in n days", "leaving in 5 days", date(2026, time.August, 30)},
		{"in n weeks", "a trip in 2 weeks", date(2026, time.September, 8)},
		{"explicit day month", "arriving on 25th oct", date(2026, time.October, 25)},
		{"explicit month day", "around Oct 25 this year", date(2026, time.October, 25)},
		{"past date rolls forward", "celebrate on 15th aug", date(2027, time.August, 15)},
		{"no cue", "a trip to Goa", date(2026, time.August, 28)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inferStartDate(tc.goal, now)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInferStartDate_WeekendOnSaturday(t *testing.T) {
	// When today already is Saturday, "this weekend" means today.
	saturday := time.Date(2026, time.August, 29, 8, 0, 0, 0, time.UTC)
	got := inferStartDate("this weekend in Goa", saturday)
	assert.Equal(t, date(2026, time.August, 29), got)
}

func TestExplicitDate_RejectsImpossibleDay(t *testing.T) {
	today := date(2026, time.August, 25)
	_, ok := explicitDate("party on 31st feb", today)
	assert.False(t, ok)
}

func TestExplicitDate_NoMatch(t *testing.T) {
	today := date(2026, time.August, 25)
	_, ok := explicitDate("a trip sometime soon", today)
	assert.False(t, ok)
}
