package hostprep

import (
	"golang.org/x/sys/unix"
)

// pinCPU restricts the calling thread to cpu.
func pinCPU(cpu int) (func(), error) {
	var previous unix.CPUSet
	if err := unix.SchedGetaffinity(0, &previous); err != nil {
		return nil, err
	}
	var set unix.CPUSet
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return nil, err
	}
	return func() { _ = unix.SchedSetaffinity(0, &previous) }, nil
}

func setNice(nice int) (func(), error) {
	// getpriority(2) returns 20-nice on Linux.
	prio, err := unix.Getpriority(unix.PRIO_PROCESS, 0)
	if err != nil {
		return nil, err
	}
	previous := 20 - prio
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, nice); err != nil {
		return nil, err
	}
	return func() { _ = unix.Setpriority(unix.PRIO_PROCESS, 0, previous) }, nil
}

func lockMemory() (func(), error) {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return nil, err
	}
	return func() { _ = unix.Munlockall() }, nil
}
