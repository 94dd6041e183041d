package jitter

// Calendar dimensions used by the bucket families
const (
	MinutesInAnHour = 60
	HoursInADay     = 24
	DaysInAMonth    = 31
	DaysInAWeek     = 7
	WeeksInAMonth   = 5
)

const (
	nsPerSecond = 1_000_000_000
	secsPerHour = 3600
	hoursPerDay = 24
)

// Coordinates locates a timestamp in every calendar dimension.
// All fields are zero-based and always within range.
type Coordinates struct {
	Minute      int // 0-59
	Hour        int // 0-23
	DayOfWeek   int // 0-6
	DayOfMonth  int // 0-30
	WeekOfMonth int // 0-4
}

// CoordinatesOf derives the calendar coordinates of a nanosecond timestamp.
//
// DayOfMonth is the day count modulo 31 and WeekOfMonth is DayOfMonth / 7.
// Neither follows real calendar month or week boundaries.
func CoordinatesOf(timestampNS uint64) Coordinates {
	secs := timestampNS / nsPerSecond
	days := secs / secsPerHour / hoursPerDay
	dayOfMonth := int(days % DaysInAMonth)
	return Coordinates{
		Minute:      int((secs / 60) % MinutesInAnHour),
		Hour:        int((secs / secsPerHour) % HoursInADay),
		DayOfWeek:   int(days % DaysInAWeek),
		DayOfMonth:  dayOfMonth,
		WeekOfMonth: dayOfMonth / DaysInAWeek,
	}
}
