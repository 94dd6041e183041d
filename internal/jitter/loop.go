package jitter

import (
	"sync/atomic"
	"time"
)

// Clock reads a monotonic nanosecond timestamp from an arbitrary epoch.
type Clock interface {
	Nanotime() uint64
}

// Loop busy-waits on Clock and records the gap between consecutive reads.
type Loop struct {
	Clock Clock

	// CalendarOffsetNS is added to timestamps before deriving calendar
	// buckets. Elapsed times are never shifted.
	CalendarOffsetNS uint64
}

// Result describes a finished measurement run.
type Result struct {
	Iterations uint64
	Elapsed    time.Duration
	Canceled   bool
}

// Run measures until duration has elapsed or stop is set, whichever comes
// first, and finalizes the averages of m. At least one sample is always
// taken. stop may be nil.
//
// Nothing in the loop body allocates, blocks or yields: the loop is the
// workload whose scheduling delays are being measured.
func (l Loop) Run(m *Measurements, d *Distribution, duration time.Duration, stop *atomic.Bool) Result {
	if stop == nil {
		stop = new(atomic.Bool)
	}
	durationNS := uint64(max(duration, 0))
	offset := l.CalendarOffsetNS

	startNS := l.Clock.Nanotime()
	lastNS := startNS
	var currentNS, iterations uint64
	for {
		currentNS = l.Clock.Nanotime()
		elapsedNS := currentNS - lastNS

		// The interval is attributed to the bucket it started in.
		m.Record(lastNS+offset, elapsedNS)
		d.Record(elapsedNS)
		iterations++

		lastNS = currentNS
		if stop.Load() || currentNS-startNS >= durationNS {
			break
		}
	}

	m.FinalizeAverages()
	return Result{
		Iterations: iterations,
		Elapsed:    time.Duration(currentNS - startNS),
		Canceled:   stop.Load(),
	}
}
