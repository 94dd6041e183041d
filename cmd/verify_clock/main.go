//go:build !windows
// +build !windows

// verify_clock measures the gap between back-to-back monotonic clock reads,
// the floor below which rtjitter cannot resolve anything.
// Usage: go run ./cmd/verify_clock --samples 10000000
package main

import (
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/cbrunnkvist/rtjitter/internal/jitter"
)

func main() {
	samples := flag.Int("samples", 10_000_000, "Number of clock reads to time")
	flag.Parse()
	if *samples <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --samples must be positive")
		os.Exit(1)
	}

	clock, err := jitter.NewMonotonicClock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	prev := clock.Nanotime()

	var sum, max uint64
	min := ^uint64(0)
	zero := 0

	for i := 0; i < *samples; i++ {
		now := clock.Nanotime()
		delta := now - prev
		prev = now

		sum += delta
		if delta < min {
			min = delta
		}
		if delta > max {
			max = delta
		}
		if delta == 0 {
			zero++
		}
	}

	avg := sum / uint64(*samples)
	fmt.Printf("Count: %d | Min: %v | Max: %v | Avg: %v | Zero gaps: %d\n",
		*samples, time.Duration(min), time.Duration(max), time.Duration(avg), zero)
}
