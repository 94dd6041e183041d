//go:build !windows
// +build !windows

package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cbrunnkvist/rtjitter/internal/hostprep"
	"github.com/cbrunnkvist/rtjitter/internal/jitter"
	"github.com/cbrunnkvist/rtjitter/internal/report"
)

var version = "0.2.0"

// Histograms larger than this get a memory warning at startup
const largeHistogramBytes = 256 << 20

const longDescription = `rtjitter gathers statistics to quantify the reactiveness of a host (physical
or virtual), reporting whether it may be trusted to run hard, firm or soft
real-time applications.

It busy-waits for the requested time, measuring the gap between consecutive
loop iterations, and reports worst and average gaps per minute, hour, day of
week and day of month, plus a distribution of all gaps.

Arguments:
  seconds to measure      how long to busy-wait (whole seconds, or a duration like 90m)
  time precision          distribution resolution: ns, µs (default), ms or s
  seconds to track        largest gap the distribution tracks; longer gaps are
                          counted as overflows. Defaults: ns 0.2, µs 36, ms 60, s 3600.
                          Memory needed is 8 bytes * slots, where slots is
                          seconds * 1e9 for ns (~8 GiB/s), * 1e6 for µs (~8 MiB/s),
                          * 1e3 for ms (~8 KiB/s) and * 1 for s.

Result files (tab separated) are written to --output-dir:
  worsts_<family>, averages_<family>, gaussianTimes

Run it with as little interference as possible, e.g.:
  sudo sync; sudo GODEBUG=asyncpreemptoff=1 nice -n -20 rtjitter --mlock --cpu 3 3600`

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	exitCode := 0
	cmd := newRootCommand(func(cfg *Config) {
		exitCode = run(cfg, stdout, new(atomic.Bool))
	})
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if isUsageError(err) {
			fmt.Fprintln(stderr, "")
			fmt.Fprint(stderr, cmd.UsageString())
		}
		return 1
	}
	return exitCode
}

func newRootCommand(runFn func(*Config)) *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:     "rtjitter <seconds to measure> [time precision] [seconds to track on distribution accounting]",
		Short:   "Measure scheduling jitter to judge a host's real-time suitability",
		Long:    longDescription,
		Version: version,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 3 {
				return usageErrorf("accepts between 1 and 3 arguments, received %d", len(args))
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, cmd.Flags(), args)
			if err != nil {
				return err
			}
			runFn(cfg)
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})
	defineFlags(cmd.Flags())
	return cmd
}

// newLogger configures logging the way the result output is consumed: plain
// text with full timestamps, coloured only on a terminal.
func newLogger(cfg *Config, out io.Writer) *log.Logger {
	logger := log.New()
	logger.SetOutput(out)
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
		ForceColors:   isTerminal(out),
		DisableColors: !isTerminal(out),
	})
	switch {
	case cfg.Quiet:
		logger.SetLevel(log.WarnLevel)
	case cfg.Verbose:
		logger.SetLevel(log.DebugLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// run performs the warm-up and the real measurement, then reports the
// results. Setting stop, from a signal or beforehand, ends both phases early.
// Failures after the measurement are logged and do not change the exit code:
// partial results are still useful.
func run(cfg *Config, stdout io.Writer, stop *atomic.Bool) int {
	runID := uuid.NewString()
	logger := newLogger(cfg, stdout).WithField("run", runID)

	unit := report.UnitName(cfg.Resolution)
	logger.Info("Starting real-time measurements with parameters:")
	logger.Infof("  'seconds to measure'                          : %v", cfg.Duration)
	logger.Infof("  'time precision'                              : %s (factor %d)", unit, int64(cfg.Resolution))
	logger.Infof("  'seconds to track on distribution accounting' : %v (%d slots, %s)",
		cfg.MaxSeconds, cfg.Slots, jitter.FormatBytes(cfg.HistogramBytes()))
	if cfg.HistogramBytes() > largeHistogramBytes {
		logger.Warnf("The distribution needs %s of memory; lower the precision or the seconds to track to reduce it",
			jitter.FormatBytes(cfg.HistogramBytes()))
	}

	clock, err := jitter.NewMonotonicClock()
	if err != nil {
		logger.WithError(err).Error("No usable clock")
		return 1
	}

	stopWatching := watchSignals(newSignalHandler(logger, stop))
	defer stopWatching()

	restore, err := hostprep.Prepare(cfg.HostOptions())
	if err != nil {
		logger.WithError(err).Warn("Host preparation incomplete, measuring anyway")
	}

	loop := jitter.Loop{Clock: clock}
	if cfg.Calendar == calendarWall {
		loop.CalendarOffsetNS = jitter.WallClockOffset(loop.Clock)
	}

	if cfg.Warmup > 0 {
		logger.Infof("Warming up for %v", cfg.Warmup)
		res := loop.Run(jitter.NewMeasurements(), jitter.NewDistribution(cfg.Slots, cfg.Resolution), cfg.Warmup, stop)
		logger.Debugf("Warm-up done after %d iterations", res.Iterations)
		// Drop the warm-up instances before allocating the real ones.
		runtime.GC()
	}

	measurements := jitter.NewMeasurements()
	distribution := jitter.NewDistribution(cfg.Slots, cfg.Resolution)
	logger.Infof("Performing real measurements for up to %v or until SIGTERM is received", cfg.Duration)
	res := loop.Run(measurements, distribution, cfg.Duration, stop)
	restore()

	logger.WithFields(log.Fields{
		"iterations": res.Iterations,
		"canceled":   res.Canceled,
	}).Infof("Measurement completed after %d seconds", int64(res.Elapsed.Seconds()))

	report.LogSummary(logger, measurements, distribution)

	if err := report.WriteFiles(logger, cfg.OutputDir, measurements, distribution); err != nil {
		logger.WithError(err).Warn("Some result files could not be written")
	} else {
		logger.Infof("Results written to %s", cfg.OutputDir)
	}

	if cfg.Textfile != "" {
		metrics := report.NewMetrics(runID)
		metrics.Observe(measurements, distribution, res.Elapsed)
		if err := metrics.WriteTextfile(cfg.Textfile); err != nil {
			logger.WithError(err).Warn("Metrics textfile not written")
		}
	}

	return 0
}
