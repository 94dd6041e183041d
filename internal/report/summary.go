package report

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cbrunnkvist/rtjitter/internal/jitter"
)

// UnitName returns the conventional name of a distribution resolution.
func UnitName(resolution time.Duration) string {
	switch resolution {
	case time.Nanosecond:
		return "ns"
	case time.Microsecond:
		return "µs"
	case time.Millisecond:
		return "ms"
	case time.Second:
		return "s"
	}
	return fmt.Sprintf("(unknown time unit -- factor = %d)", int64(resolution))
}

// LogSummary logs the finalized worst and average values of every bucket.
// One-dimensional families are logged at info level, the others at debug.
// Buckets that received no samples are reported as having no data.
func LogSummary(logger log.FieldLogger, m *jitter.Measurements, d *jitter.Distribution) {
	for _, f := range jitter.Families() {
		level := log.DebugLevel
		if len(f.Dims()) == 1 {
			level = log.InfoLevel
		}
		fl := logger.WithField("family", f.String())

		empty := 0
		for offset := range m.Counts.Cells(f) {
			worst, ok := m.Worst(f, offset)
			if !ok {
				empty++
				fl.Debugf("%s: no data", cellName(f, offset))
				continue
			}
			avg, _ := m.Average(f, offset)
			fl.Logf(level, "%s: worst %v, average %v (%d samples)",
				cellName(f, offset), time.Duration(worst), time.Duration(avg), m.Counts.Cells(f)[offset])
		}
		if empty > 0 {
			fl.Infof("%d of %d buckets: no data", empty, f.Size())
		}
	}

	unit := UnitName(d.Resolution())
	logger.Infof("Distribution overflows (over %d%s): %d", d.SlotCount(), unit, d.Overflows())
	if last := d.LastNonZeroSlot(); last > 0 {
		logger.Infof("Slowest tracked sample falls in slot %d (%d%s)", last-1, last-1, unit)
	}
}

func cellName(f jitter.Family, offset int) string {
	idx := f.Unflatten(offset)
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = fmt.Sprint(v)
	}
	return f.String() + "[" + strings.Join(parts, "][") + "]"
}
