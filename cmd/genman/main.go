//go:build ignore

// genman generates the rtjitter man page.
// Usage: go run cmd/genman/main.go > rtjitter.1
package main

import (
	"fmt"
	"os"
)

func main() {
	// Use a fixed date for reproducible builds/CI
	date := "October 2026"

	manpage := fmt.Sprintf(`.TH RTJITTER 1 "%s" "rtjitter 0.2.0" "User Commands"
.SH NAME
rtjitter \- measure scheduling jitter to judge a host's real-time suitability
.SH SYNOPSIS
.B rtjitter
[\fIflags\fR] \fIseconds\fR [\fBns\fR|\fBµs\fR|\fBms\fR|\fBs\fR] [\fImax\-seconds\fR]
.SH DESCRIPTION
.B rtjitter
busy-waits on one CPU for the requested time, reading the monotonic clock in
a tight loop. Every gap between two consecutive readings is a sample: on an
idle, well-behaved host gaps are tens of nanoseconds, while preemption, page
faults, interrupts or a hypervisor stealing the CPU show up as long gaps.
.PP
Samples are attributed to calendar buckets (minute of the hour, hour of the
day, day of the week, day of the month and their combinations), keeping the
worst gap, the average gap and the number of samples per bucket. All samples
also go into a fixed-width distribution histogram.
.PP
A discarded warm-up run precedes the real measurement.
.SH ARGUMENTS
.TP
.I seconds
How long to measure. A whole number of seconds or a duration such as
\fB90m\fR. Zero takes exactly one sample.
.TP
.I precision
Width of one distribution slot: \fBns\fR, \fBµs\fR (also \fBus\fR, the
default), \fBms\fR or \fBs\fR.
.TP
.I max\-seconds
Largest gap the distribution tracks. Longer gaps are counted as overflows.
Defaults: ns 0.2, µs 36, ms 60, s 3600. The histogram takes 8 bytes per slot,
about 8 GiB per tracked second at ns precision and 8 MiB at µs.
.SH OPTIONS
.TP
.B \-\-config \fIfile\fR
YAML file with flag values, keyed by flag name.
.TP
.B \-\-warmup \fIduration\fR
Discarded warm-up run before the measurement (default 5s, 0 disables).
.TP
.B \-\-calendar \fIuptime\fR|\fIwall\fR
Reference for the calendar buckets. \fBuptime\fR (default) uses the
monotonic clock's epoch; \fBwall\fR uses the host's wall clock, sampled once
at startup.
.TP
.B \-\-max\-histogram\-mib \fIn\fR
Refuse distributions needing more memory than this (default 2048).
.TP
.B \-\-output\-dir \fIdir\fR
Directory receiving the result files (default: current directory).
.TP
.B \-\-textfile \fIfile\fR
Also write Prometheus metrics to \fIfile\fR, for the node exporter textfile
collector.
.TP
.B \-\-cpu \fIn\fR
Pin the measuring thread to CPU \fIn\fR (\-1, the default, disables pinning).
.TP
.B \-\-nice \fIn\fR
Nice value for the process. Negative values need privileges.
.TP
.B \-\-mlock
Lock all process memory with mlockall(2).
.TP
.B \-\-disable\-gc
Disable the garbage collector while measuring (default true).
.TP
.B \-\-verbose
Log every bucket, multi-dimensional families included.
.TP
.BR \-q ", " \-\-quiet
Only log warnings and errors.
.TP
.BR \-h ", " \-\-help
Show help message.
.TP
.B \-\-version
Show version information.
.SH FILES
Result files are tab separated, one line per bucket: the bucket indices,
outermost first, then the value in nanoseconds.
.TP
.B worsts_\fIfamily\fR, averages_\fIfamily\fR
One pair per bucket family: minutesOfAllHours, minutesOfEachHour,
minutesOfEachHourOfEachDay, hourOfAllDays, hourOfEachDay, dayOfAllWeeks,
dayOfEachWeek and dayOfTheMonth. Buckets without samples hold 0.
.TP
.B gaussianTimes
Slot index and sample count, up to the last non-empty slot.
.SH SIGNALS
SIGINT and SIGTERM end the measurement early; results gathered so far are
reported and written. SIGHUP is logged and ignored.
.SH ENVIRONMENT
Every option can be set as \fBRTJITTER_\fIOPTION\fR, with dashes replaced by
underscores, e.g. \fBRTJITTER_OUTPUT_DIR\fR. Flags take precedence.
.PP
Setting \fBGODEBUG=asyncpreemptoff=1\fR stops the Go runtime from preempting
the measuring loop with signals.
.SH EXAMPLES
Quick check with millisecond precision:
.PP
.RS
.nf
rtjitter 60 ms
.fi
.RE
.PP
An hour on an isolated CPU with as little interference as possible:
.PP
.RS
.nf
sudo sync; sudo GODEBUG=asyncpreemptoff=1 nice \-n \-20 rtjitter \-\-mlock \-\-cpu 3 3600
.fi
.RE
.SH EXIT STATUS
0 once results are reported, even if some files could not be written.
1 on a usage or configuration error.
.SH SEE ALSO
.BR cyclictest (8),
.BR taskset (1),
.BR nice (1)
`, date)

	fmt.Fprint(os.Stdout, manpage)
}
