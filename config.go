//go:build !windows
// +build !windows

package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cbrunnkvist/rtjitter/internal/hostprep"
	"github.com/cbrunnkvist/rtjitter/internal/jitter"
)

// Flag names, also used as viper keys
const (
	flagConfig          = "config"
	flagWarmup          = "warmup"
	flagOutputDir       = "output-dir"
	flagTextfile        = "textfile"
	flagCalendar        = "calendar"
	flagMaxHistogramMiB = "max-histogram-mib"
	flagCPU             = "cpu"
	flagNice            = "nice"
	flagMlock           = "mlock"
	flagDisableGC       = "disable-gc"
	flagVerbose         = "verbose"
	flagQuiet           = "quiet"
)

// Defaults
const (
	defaultWarmup          = 5 * time.Second
	defaultMaxHistogramMiB = 2048
	envPrefix              = "RTJITTER"
)

// Calendar references
const (
	calendarUptime = "uptime" // buckets follow the monotonic clock's epoch
	calendarWall   = "wall"   // buckets follow the host's wall clock
)

// Config holds the complete run configuration
type Config struct {
	// Measurement
	Duration   time.Duration `validate:"gte=0"`
	Warmup     time.Duration `validate:"gte=0"`
	Calendar   string        `validate:"oneof=uptime wall"`
	Precision  string        `validate:"required"`
	Resolution time.Duration `validate:"gt=0"`
	MaxSeconds float64       `validate:"gt=0"`
	Slots      int           `validate:"gt=0"` // derived from MaxSeconds and Resolution

	// Limits
	MaxHistogramMiB int64 `validate:"gt=0"`

	// Host preparation
	CPU        int `validate:"gte=-1"`
	Nice       int `validate:"gte=-20,lte=19"`
	LockMemory bool
	DisableGC  bool

	// Output
	OutputDir string `validate:"required"`
	Textfile  string
	Verbose   bool
	Quiet     bool
}

// HostOptions returns the host preparation settings.
func (c *Config) HostOptions() hostprep.Options {
	return hostprep.Options{
		CPU:        c.CPU,
		Nice:       c.Nice,
		LockMemory: c.LockMemory,
		DisableGC:  c.DisableGC,
	}
}

// HistogramBytes returns the memory the distribution histogram will take.
func (c *Config) HistogramBytes() int64 {
	return jitter.MemoryFor(c.Slots)
}

// usageError is a malformed command line. It is reported along with the
// usage text.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func isUsageError(err error) bool {
	var ue *usageError
	return errors.As(err, &ue)
}

// defineFlags registers every option flag on fs.
func defineFlags(fs *flag.FlagSet) {
	fs.SortFlags = false // Preserve definition order in help

	fs.String(flagConfig, "", "YAML file with flag values (keys are flag names)")
	fs.Duration(flagWarmup, defaultWarmup, "Discarded warm-up measurement before the real run (0 disables)")
	fs.String(flagCalendar, calendarUptime, "Calendar reference for the buckets: uptime or wall")
	fs.Int64(flagMaxHistogramMiB, defaultMaxHistogramMiB, "Refuse distributions needing more memory than this (MiB)")
	fs.String(flagOutputDir, ".", "Directory receiving the result files")
	fs.String(flagTextfile, "", "Also write Prometheus metrics to this file (textfile collector format)")
	fs.Int(flagCPU, hostprep.NoCPU, "Pin the measuring thread to this CPU (-1 = no pinning)")
	fs.Int(flagNice, 0, "Nice value for the process (negative values need privileges)")
	fs.Bool(flagMlock, false, "Lock all process memory with mlockall")
	fs.Bool(flagDisableGC, true, "Disable the garbage collector while measuring")
	fs.Bool(flagVerbose, false, "Log every bucket, multi-dimensional families included")
	fs.BoolP(flagQuiet, "q", false, "Only log warnings and errors")
}

// newViper returns a viper instance reading RTJITTER_* environment variables.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig builds the configuration from the positional arguments and the
// flags in fs, which may be overridden by the environment or a config file.
func loadConfig(v *viper.Viper, fs *flag.FlagSet, args []string) (*Config, error) {
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "binding flags")
	}
	if path := v.GetString(flagConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	}

	cfg := &Config{
		Warmup:          v.GetDuration(flagWarmup),
		Calendar:        v.GetString(flagCalendar),
		MaxHistogramMiB: v.GetInt64(flagMaxHistogramMiB),
		CPU:             v.GetInt(flagCPU),
		Nice:            v.GetInt(flagNice),
		LockMemory:      v.GetBool(flagMlock),
		DisableGC:       v.GetBool(flagDisableGC),
		OutputDir:       v.GetString(flagOutputDir),
		Textfile:        v.GetString(flagTextfile),
		Verbose:         v.GetBool(flagVerbose),
		Quiet:           v.GetBool(flagQuiet),
	}
	if err := parsePositional(args, cfg); err != nil {
		return nil, err
	}
	if cfg.MaxHistogramMiB <= 0 {
		return nil, errors.Errorf("--%s must be positive, got %d", flagMaxHistogramMiB, cfg.MaxHistogramMiB)
	}

	slots, err := jitter.SlotsFor(cfg.MaxSeconds, cfg.Resolution, cfg.MaxHistogramMiB<<20)
	if err != nil {
		return nil, usageErrorf("invalid 'seconds to track on distribution accounting': %v", err)
	}
	cfg.Slots = slots

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parsePositional parses <seconds to measure> [time precision] [seconds to track].
func parsePositional(args []string, cfg *Config) error {
	switch {
	case len(args) == 0:
		return usageErrorf("missing 'seconds to measure'")
	case len(args) > 3:
		return usageErrorf("too many arguments: %s", strings.Join(args[3:], " "))
	}

	d, err := parseSeconds(args[0])
	if err != nil {
		return usageErrorf("invalid 'seconds to measure': %v", err)
	}
	cfg.Duration = d

	name := defaultPrecision
	if len(args) > 1 {
		name = args[1]
	}
	p, ok := precisions[name]
	if !ok {
		return usageErrorf("wrong value '%s' for 'time precision', want one of: %s",
			name, strings.Join(precisionNames(), ", "))
	}
	cfg.Precision = name
	cfg.Resolution = p.Resolution
	cfg.MaxSeconds = p.MaxSeconds

	if len(args) > 2 {
		s, err := strconv.ParseFloat(args[2], 64)
		if err != nil || math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
			return usageErrorf("invalid 'seconds to track on distribution accounting': %q", args[2])
		}
		cfg.MaxSeconds = s
	}
	return nil
}

// parseSeconds accepts a whole number of seconds or a Go duration ("90s", "2h").
func parseSeconds(s string) (time.Duration, error) {
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		if n > uint64(math.MaxInt64/int64(time.Second)) {
			return 0, errors.Errorf("%d seconds is too long", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Errorf("%q is neither a number of seconds nor a duration", s)
	}
	if d < 0 {
		return 0, errors.Errorf("%q is negative", s)
	}
	return d, nil
}

var validate = validator.New()

// validateConfig checks cfg against its struct tags and reports every
// offending field.
func validateConfig(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validating config")
	}
	var result *multierror.Error
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			result = multierror.Append(result, errors.Errorf("field %s is required but was not set", fe.Field()))
		default:
			result = multierror.Append(result, errors.Errorf("field %s has invalid value %v: %s", fe.Field(), fe.Value(), fe.ActualTag()))
		}
	}
	return result.ErrorOrNil()
}
