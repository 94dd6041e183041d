package jitter

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	minuteNS = 60 * nsPerSecond
	hourNS   = 60 * minuteNS
	dayNS    = 24 * hourNS
)

func TestCoordinatesOf(t *testing.T) {
	tests := []struct {
		name string
		ts   uint64
		want Coordinates
	}{
		{"epoch", 0, Coordinates{}},
		{"one minute", minuteNS, Coordinates{Minute: 1}},
		{"last nanosecond of first hour", hourNS - 1, Coordinates{Minute: 59}},
		{"hour 14 minute 5", 14*hourNS + 5*minuteNS, Coordinates{Minute: 5, Hour: 14}},
		{"day 8", 8 * dayNS, Coordinates{DayOfWeek: 1, DayOfMonth: 8, WeekOfMonth: 1}},
		{"day 30", 30*dayNS + 23*hourNS, Coordinates{Hour: 23, DayOfWeek: 2, DayOfMonth: 30, WeekOfMonth: 4}},
		{"day 31 wraps", 31 * dayNS, Coordinates{DayOfWeek: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoordinatesOf(tt.ts))
		})
	}
}

func TestCoordinatesOfStayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	timestamps := []uint64{0, 1, math.MaxUint64, math.MaxUint64 - 1, math.MaxInt64}
	for i := 0; i < 10000; i++ {
		timestamps = append(timestamps, rng.Uint64())
	}
	for _, ts := range timestamps {
		c := CoordinatesOf(ts)
		assert.True(t, c.Minute >= 0 && c.Minute < MinutesInAnHour, "minute %d for %d", c.Minute, ts)
		assert.True(t, c.Hour >= 0 && c.Hour < HoursInADay, "hour %d for %d", c.Hour, ts)
		assert.True(t, c.DayOfWeek >= 0 && c.DayOfWeek < DaysInAWeek, "day of week %d for %d", c.DayOfWeek, ts)
		assert.True(t, c.DayOfMonth >= 0 && c.DayOfMonth < DaysInAMonth, "day of month %d for %d", c.DayOfMonth, ts)
		assert.True(t, c.WeekOfMonth >= 0 && c.WeekOfMonth < WeeksInAMonth, "week of month %d for %d", c.WeekOfMonth, ts)
	}
}

func TestFamilyIndexWithinSize(t *testing.T) {
	c := Coordinates{Minute: 59, Hour: 23, DayOfWeek: 6, DayOfMonth: 30, WeekOfMonth: 4}
	for _, f := range Families() {
		assert.Equal(t, f.Size()-1, f.Index(c), f.String())
		assert.Equal(t, 0, f.Index(Coordinates{}), f.String())
	}
}

func TestFamilyUnflatten(t *testing.T) {
	c := Coordinates{Minute: 7, Hour: 13, DayOfMonth: 22}
	idx := MinutesOfEachHourOfEachDay.Unflatten(MinutesOfEachHourOfEachDay.Index(c))
	assert.Equal(t, []int{22, 13, 7}, idx)

	assert.Equal(t, []int{3, 5}, DayOfEachWeek.Unflatten(3*DaysInAWeek+5))
	assert.Equal(t, []int{42}, MinutesOfAllHours.Unflatten(42))
}

func TestFamilyNames(t *testing.T) {
	var names []string
	for _, f := range Families() {
		names = append(names, f.String())
	}
	assert.Equal(t, []string{
		"minutesOfAllHours",
		"minutesOfEachHour",
		"minutesOfEachHourOfEachDay",
		"hourOfAllDays",
		"hourOfEachDay",
		"dayOfAllWeeks",
		"dayOfEachWeek",
		"dayOfTheMonth",
	}, names)
	assert.Equal(t, "unknown", Family(99).String())
}
