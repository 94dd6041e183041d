//go:build !windows
// +build !windows

package main

import (
	"sort"
	"time"
)

// precision is a distribution resolution together with how many seconds of
// latency it tracks by default.
type precision struct {
	Resolution time.Duration
	MaxSeconds float64
}

const defaultPrecision = "µs"

// precisions maps the accepted 'time precision' tokens to their presets.
// Defaults keep the histogram at a few hundred MiB at most:
// 8 bytes * 1e9/resolution * seconds.
var precisions = map[string]precision{
	"ns": {
		Resolution: time.Nanosecond,
		MaxSeconds: 0.2, // ~1.5 GiB
	},
	"µs": {
		Resolution: time.Microsecond,
		MaxSeconds: 36, // ~275 MiB
	},
	"us": { // ASCII spelling of µs
		Resolution: time.Microsecond,
		MaxSeconds: 36,
	},
	"ms": {
		Resolution: time.Millisecond,
		MaxSeconds: 60,
	},
	"s": {
		Resolution: time.Second,
		MaxSeconds: 3600,
	},
}

// precisionNames returns the accepted tokens, finest resolution first.
func precisionNames() []string {
	names := make([]string, 0, len(precisions))
	for name := range precisions {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := precisions[names[i]], precisions[names[j]]
		if pi.Resolution != pj.Resolution {
			return pi.Resolution < pj.Resolution
		}
		return names[i] > names[j]
	})
	return names
}
