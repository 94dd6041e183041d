package jitter

import (
	"fmt"
	"math"
	"time"
)

// bytesPerSlot is the memory taken by one distribution counter.
const bytesPerSlot = 8

// Distribution is a fixed-width histogram of elapsed times. Each slot covers
// Resolution nanoseconds; samples past the last slot are counted as overflows.
type Distribution struct {
	slots      []uint64
	overflows  uint64
	resolution uint64
}

// SlotsFor computes how many slots are needed to track latencies of up to
// maxSeconds at the given resolution, rejecting layouts that would need more
// than maxBytes of memory. maxBytes <= 0 disables the memory check.
func SlotsFor(maxSeconds float64, resolution time.Duration, maxBytes int64) (int, error) {
	if resolution <= 0 {
		return 0, fmt.Errorf("resolution must be positive, got %v", resolution)
	}
	if math.IsNaN(maxSeconds) || math.IsInf(maxSeconds, 0) || maxSeconds <= 0 {
		return 0, fmt.Errorf("max tracking seconds must be positive, got %v", maxSeconds)
	}
	slots := math.Floor(maxSeconds * float64(time.Second) / float64(resolution))
	if slots < 1 {
		return 0, fmt.Errorf("%vs at %v resolution leaves no distribution slots", maxSeconds, resolution)
	}
	if maxBytes > 0 && slots*bytesPerSlot > float64(maxBytes) {
		return 0, fmt.Errorf("%vs at %v resolution needs %.0f slots (%s), over the %s limit",
			maxSeconds, resolution, slots, FormatBytes(int64(slots*bytesPerSlot)), FormatBytes(maxBytes))
	}
	if slots > math.MaxInt32 {
		return 0, fmt.Errorf("%.0f distribution slots is more than can be allocated", slots)
	}
	return int(slots), nil
}

// MemoryFor returns the bytes a distribution with slotCount slots occupies.
func MemoryFor(slotCount int) int64 {
	return int64(slotCount) * bytesPerSlot
}

// FormatBytes renders n using binary units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// NewDistribution allocates a zeroed distribution of slotCount slots, each
// resolution wide. It panics if slotCount or resolution is not positive.
func NewDistribution(slotCount int, resolution time.Duration) *Distribution {
	if slotCount <= 0 || resolution <= 0 {
		panic(fmt.Sprintf("jitter: invalid distribution layout %d x %v", slotCount, resolution))
	}
	d := &Distribution{
		slots:      make([]uint64, slotCount),
		resolution: uint64(resolution),
	}
	// Touch every page now so the loop never takes a first-use page fault.
	d.Reset()
	return d
}

// Record counts one sample.
func (d *Distribution) Record(elapsedNS uint64) {
	slot := elapsedNS / d.resolution
	if slot >= uint64(len(d.slots)) {
		d.overflows++
		return
	}
	d.slots[slot]++
}

// LastNonZeroSlot returns one past the highest slot holding a sample, or 0
// when the distribution is empty.
func (d *Distribution) LastNonZeroSlot() int {
	for i := len(d.slots) - 1; i >= 0; i-- {
		if d.slots[i] > 0 {
			return i + 1
		}
	}
	return 0
}

// Slots returns the slot counters. The slice aliases d.
func (d *Distribution) Slots() []uint64 {
	return d.slots
}

// SlotCount returns the number of slots.
func (d *Distribution) SlotCount() int {
	return len(d.slots)
}

// Resolution returns the width of one slot.
func (d *Distribution) Resolution() time.Duration {
	return time.Duration(d.resolution)
}

// Overflows returns how many samples did not fit in any slot.
func (d *Distribution) Overflows() uint64 {
	return d.overflows
}

// Total returns the number of samples recorded, overflows included.
func (d *Distribution) Total() uint64 {
	total := d.overflows
	for _, n := range d.slots {
		total += n
	}
	return total
}

// Reset zeroes all slots and the overflow counter.
func (d *Distribution) Reset() {
	clear(d.slots)
	d.overflows = 0
}
