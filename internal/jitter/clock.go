//go:build !windows
// +build !windows

package jitter

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MonotonicClock reads the runtime's monotonic clock, shifted so readings
// count from the CLOCK_MONOTONIC epoch (usually boot). It is unaffected by
// wall-clock adjustments.
//
// Readings go through time.Since, which the runtime serves from the vDSO
// without entering the kernel.
type MonotonicClock struct {
	base   time.Time
	baseNS uint64
}

// NewMonotonicClock anchors a clock to the current CLOCK_MONOTONIC reading.
func NewMonotonicClock() (*MonotonicClock, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return nil, errors.Wrap(err, "reading CLOCK_MONOTONIC")
	}
	return &MonotonicClock{base: time.Now(), baseNS: uint64(ts.Nano())}, nil
}

// Nanotime implements Clock.
func (c *MonotonicClock) Nanotime() uint64 {
	return c.baseNS + uint64(time.Since(c.base))
}

// WallClockOffset returns the offset that, added to a clock reading,
// approximates nanoseconds since the Unix epoch. It is sampled once so the
// shifted readings stay monotonic.
func WallClockOffset(clock Clock) uint64 {
	mono := clock.Nanotime()
	wall := uint64(time.Now().UnixNano())
	if wall <= mono {
		return 0
	}
	return wall - mono
}
