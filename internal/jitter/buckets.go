package jitter

// Family identifies one calendar partitioning scheme.
type Family int

const (
	MinutesOfAllHours Family = iota
	MinutesOfEachHour
	MinutesOfEachHourOfEachDay
	HourOfAllDays
	HourOfEachDay
	DayOfAllWeeks
	DayOfEachWeek
	DayOfTheMonth

	numFamilies
)

type familyInfo struct {
	name string
	dims []int // outermost first
}

var familyInfos = [numFamilies]familyInfo{
	MinutesOfAllHours:          {"minutesOfAllHours", []int{MinutesInAnHour}},
	MinutesOfEachHour:          {"minutesOfEachHour", []int{HoursInADay, MinutesInAnHour}},
	MinutesOfEachHourOfEachDay: {"minutesOfEachHourOfEachDay", []int{DaysInAMonth, HoursInADay, MinutesInAnHour}},
	HourOfAllDays:              {"hourOfAllDays", []int{HoursInADay}},
	HourOfEachDay:              {"hourOfEachDay", []int{DaysInAMonth, HoursInADay}},
	DayOfAllWeeks:              {"dayOfAllWeeks", []int{DaysInAWeek}},
	DayOfEachWeek:              {"dayOfEachWeek", []int{WeeksInAMonth, DaysInAWeek}},
	DayOfTheMonth:              {"dayOfTheMonth", []int{DaysInAMonth}},
}

// Families returns every bucket family in a stable order.
func Families() []Family {
	fs := make([]Family, numFamilies)
	for i := range fs {
		fs[i] = Family(i)
	}
	return fs
}

// String returns the family name used in result file names.
func (f Family) String() string {
	if f < 0 || f >= numFamilies {
		return "unknown"
	}
	return familyInfos[f].name
}

// Dims returns the dimension sizes of the family, outermost first.
func (f Family) Dims() []int {
	return append([]int(nil), familyInfos[f].dims...)
}

// Size returns the number of cells in the family.
func (f Family) Size() int {
	n := 1
	for _, d := range familyInfos[f].dims {
		n *= d
	}
	return n
}

// Unflatten converts a flat cell offset back into per-dimension indices.
func (f Family) Unflatten(offset int) []int {
	dims := familyInfos[f].dims
	idx := make([]int, len(dims))
	for i := len(dims) - 1; i >= 0; i-- {
		idx[i] = offset % dims[i]
		offset /= dims[i]
	}
	return idx
}

// Index returns the flat cell offset of c within family f.
func (f Family) Index(c Coordinates) int {
	switch f {
	case MinutesOfAllHours:
		return c.Minute
	case MinutesOfEachHour:
		return c.Hour*MinutesInAnHour + c.Minute
	case MinutesOfEachHourOfEachDay:
		return (c.DayOfMonth*HoursInADay+c.Hour)*MinutesInAnHour + c.Minute
	case HourOfAllDays:
		return c.Hour
	case HourOfEachDay:
		return c.DayOfMonth*HoursInADay + c.Hour
	case DayOfAllWeeks:
		return c.DayOfWeek
	case DayOfEachWeek:
		return c.WeekOfMonth*DaysInAWeek + c.DayOfWeek
	case DayOfTheMonth:
		return c.DayOfMonth
	}
	return 0
}

// Buckets holds one uint64 cell per calendar bucket for all eight families.
// Multi-dimensional families are stored flat, row-major.
type Buckets struct {
	minutesOfAllHours          [MinutesInAnHour]uint64
	minutesOfEachHour          [HoursInADay * MinutesInAnHour]uint64
	minutesOfEachHourOfEachDay [DaysInAMonth * HoursInADay * MinutesInAnHour]uint64
	hourOfAllDays              [HoursInADay]uint64
	hourOfEachDay              [DaysInAMonth * HoursInADay]uint64
	dayOfAllWeeks              [DaysInAWeek]uint64
	dayOfEachWeek              [WeeksInAMonth * DaysInAWeek]uint64
	dayOfTheMonth              [DaysInAMonth]uint64
}

// Cells returns the backing cells of family f. The slice aliases b.
func (b *Buckets) Cells(f Family) []uint64 {
	switch f {
	case MinutesOfAllHours:
		return b.minutesOfAllHours[:]
	case MinutesOfEachHour:
		return b.minutesOfEachHour[:]
	case MinutesOfEachHourOfEachDay:
		return b.minutesOfEachHourOfEachDay[:]
	case HourOfAllDays:
		return b.hourOfAllDays[:]
	case HourOfEachDay:
		return b.hourOfEachDay[:]
	case DayOfAllWeeks:
		return b.dayOfAllWeeks[:]
	case DayOfEachWeek:
		return b.dayOfEachWeek[:]
	case DayOfTheMonth:
		return b.dayOfTheMonth[:]
	}
	return nil
}

// Reset zeroes every cell.
func (b *Buckets) Reset() {
	*b = Buckets{}
}
