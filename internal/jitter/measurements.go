package jitter

// Measurements aggregates elapsed-time samples into the calendar buckets.
// It keeps three parallel bucket sets: the worst sample, the running sum
// (replaced by the average once finalized) and the number of samples.
//
// Measurements is not safe for concurrent use. The measurement loop is the
// only writer and all reads happen after it stops.
type Measurements struct {
	Worsts   Buckets
	Averages Buckets
	Counts   Buckets

	finalized bool
}

// NewMeasurements returns zeroed measurements with all pages touched.
func NewMeasurements() *Measurements {
	m := new(Measurements)
	m.Reset()
	return m
}

// Record attributes elapsedNS to every bucket that timestampNS falls into.
func (m *Measurements) Record(timestampNS, elapsedNS uint64) {
	c := CoordinatesOf(timestampNS)

	// Straight-line updates keep the per-sample cost to a handful of stores.
	m.add(&m.Worsts.minutesOfAllHours[c.Minute], &m.Averages.minutesOfAllHours[c.Minute], &m.Counts.minutesOfAllHours[c.Minute], elapsedNS)

	i := c.Hour*MinutesInAnHour + c.Minute
	m.add(&m.Worsts.minutesOfEachHour[i], &m.Averages.minutesOfEachHour[i], &m.Counts.minutesOfEachHour[i], elapsedNS)

	i = (c.DayOfMonth*HoursInADay+c.Hour)*MinutesInAnHour + c.Minute
	m.add(&m.Worsts.minutesOfEachHourOfEachDay[i], &m.Averages.minutesOfEachHourOfEachDay[i], &m.Counts.minutesOfEachHourOfEachDay[i], elapsedNS)

	m.add(&m.Worsts.hourOfAllDays[c.Hour], &m.Averages.hourOfAllDays[c.Hour], &m.Counts.hourOfAllDays[c.Hour], elapsedNS)

	i = c.DayOfMonth*HoursInADay + c.Hour
	m.add(&m.Worsts.hourOfEachDay[i], &m.Averages.hourOfEachDay[i], &m.Counts.hourOfEachDay[i], elapsedNS)

	m.add(&m.Worsts.dayOfAllWeeks[c.DayOfWeek], &m.Averages.dayOfAllWeeks[c.DayOfWeek], &m.Counts.dayOfAllWeeks[c.DayOfWeek], elapsedNS)

	i = c.WeekOfMonth*DaysInAWeek + c.DayOfWeek
	m.add(&m.Worsts.dayOfEachWeek[i], &m.Averages.dayOfEachWeek[i], &m.Counts.dayOfEachWeek[i], elapsedNS)

	m.add(&m.Worsts.dayOfTheMonth[c.DayOfMonth], &m.Averages.dayOfTheMonth[c.DayOfMonth], &m.Counts.dayOfTheMonth[c.DayOfMonth], elapsedNS)
}

func (m *Measurements) add(worst, sum, count *uint64, elapsedNS uint64) {
	if elapsedNS > *worst {
		*worst = elapsedNS
	}
	*sum += elapsedNS
	*count++
}

// FinalizeAverages turns every running sum into sum/count. Cells without
// samples stay at zero and are reported as unset by Average.
// Calls after the first are no-ops.
func (m *Measurements) FinalizeAverages() {
	if m.finalized {
		return
	}
	for _, f := range Families() {
		sums := m.Averages.Cells(f)
		counts := m.Counts.Cells(f)
		for i, n := range counts {
			if n > 0 {
				sums[i] /= n
			}
		}
	}
	m.finalized = true
}

// Finalized reports whether FinalizeAverages has run.
func (m *Measurements) Finalized() bool {
	return m.finalized
}

// Average returns the average of cell offset in family f and whether the
// cell received any samples. It must only be used after FinalizeAverages.
func (m *Measurements) Average(f Family, offset int) (uint64, bool) {
	if m.Counts.Cells(f)[offset] == 0 {
		return 0, false
	}
	return m.Averages.Cells(f)[offset], true
}

// Worst returns the worst sample of cell offset in family f and whether the
// cell received any samples.
func (m *Measurements) Worst(f Family, offset int) (uint64, bool) {
	if m.Counts.Cells(f)[offset] == 0 {
		return 0, false
	}
	return m.Worsts.Cells(f)[offset], true
}

// Samples returns the total number of samples recorded. Every sample lands in
// exactly one cell of each family, so any family's counts add up to it.
func (m *Measurements) Samples() uint64 {
	var total uint64
	for _, n := range m.Counts.dayOfAllWeeks {
		total += n
	}
	return total
}

// Reset zeroes all cells and clears the finalized state.
func (m *Measurements) Reset() {
	*m = Measurements{}
}
