// Package hostprep readies the current thread and process for latency
// measurements: thread locking, CPU pinning, scheduling priority, memory
// locking and garbage collection.
//
// Every step is best effort. Most of them need elevated privileges, and a
// measurement on an unprepared host is still meaningful.
package hostprep

import (
	"runtime"
	"runtime/debug"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// NoCPU disables CPU pinning.
const NoCPU = -1

// Options selects which preparation steps to apply.
type Options struct {
	CPU        int  // CPU to pin the measuring thread to, NoCPU to leave unpinned
	Nice       int  // Process nice value, 0 leaves it unchanged
	LockMemory bool // mlockall current and future pages
	DisableGC  bool // Turn the garbage collector off until restore
}

// Prepare locks the calling goroutine to its OS thread and applies opts.
// The returned restore func undoes what can be undone and must be called
// from the same goroutine. The error collects the steps that failed; restore
// is valid even when err is non-nil.
func Prepare(opts Options) (restore func(), err error) {
	runtime.LockOSThread()

	var result *multierror.Error
	var undo []func()

	if opts.CPU != NoCPU {
		if u, err := pinCPU(opts.CPU); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "pinning to CPU %d", opts.CPU))
		} else {
			undo = append(undo, u)
		}
	}
	if opts.Nice != 0 {
		if u, err := setNice(opts.Nice); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "setting nice %d", opts.Nice))
		} else {
			undo = append(undo, u)
		}
	}
	if opts.LockMemory {
		if u, err := lockMemory(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "locking memory"))
		} else {
			undo = append(undo, u)
		}
	}
	if opts.DisableGC {
		// Collect now so the loop starts with a clean heap.
		runtime.GC()
		previous := debug.SetGCPercent(-1)
		undo = append(undo, func() { debug.SetGCPercent(previous) })
	}

	restore = func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		runtime.UnlockOSThread()
	}
	return restore, result.ErrorOrNil()
}
