//go:build !windows
// +build !windows

package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbrunnkvist/rtjitter/internal/report"
)

func executeForTest(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = execute(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// readColumns returns the tab-separated fields of every line of path.
func readColumns(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var rows [][]string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		rows = append(rows, strings.Split(sc.Text(), "\t"))
	}
	require.NoError(t, sc.Err())
	return rows
}

func nonZeroRows(rows [][]string) int {
	n := 0
	for _, row := range rows {
		if row[len(row)-1] != "0" {
			n++
		}
	}
	return n
}

func TestExecuteUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no arguments", nil, "accepts between 1 and 3 arguments, received 0"},
		{"too many arguments", []string{"1", "ms", "1", "2"}, "received 4"},
		{"unknown precision", []string{"10", "xs"}, "wrong value 'xs' for 'time precision'"},
		{"unknown flag", []string{"--bogus", "10"}, "unknown flag: --bogus"},
		{"histogram too large", []string{"10", "ns", "10"}, "over the 2.0 GiB limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := executeForTest(tt.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "error: ")
			assert.Contains(t, stderr, tt.want)
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func TestExecuteConfigErrorHasNoUsage(t *testing.T) {
	code, _, stderr := executeForTest("10", "--calendar", "lunar")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "field Calendar has invalid value lunar")
	assert.NotContains(t, stderr, "Usage:")
}

func TestExecuteHelpAndVersion(t *testing.T) {
	code, stdout, _ := executeForTest("--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "seconds to track")
	assert.Contains(t, stdout, "--max-histogram-mib")

	code, stdout, _ = executeForTest("--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, version)
}

func TestExecuteWritesResults(t *testing.T) {
	dir := t.TempDir()
	prom := filepath.Join(dir, "rtjitter.prom")

	code, stdout, stderr := executeForTest("1", "ms", "1",
		"--warmup", "0", "--output-dir", dir, "--textfile", prom)
	require.Equal(t, 0, code, stderr)

	assert.Contains(t, stdout, "Starting real-time measurements")
	assert.Contains(t, stdout, "Measurement completed after 1 seconds")
	assert.Contains(t, stdout, "Results written to "+dir)

	// Piped output is plain text with LF line endings.
	assert.NotContains(t, stdout, "\r\n")
	assert.NotContains(t, stdout, "\x1b[")

	for _, name := range report.FileNames() {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	// All samples land in the current hour, or two if the run straddles one.
	hours := readColumns(t, filepath.Join(dir, "worsts_hourOfAllDays"))
	require.Len(t, hours, 24)
	assert.GreaterOrEqual(t, nonZeroRows(hours), 1)
	assert.LessOrEqual(t, nonZeroRows(hours), 2)

	days := readColumns(t, filepath.Join(dir, "averages_minutesOfEachHourOfEachDay"))
	require.Len(t, days, 31*24*60)
	assert.Len(t, days[0], 4)

	slots := readColumns(t, filepath.Join(dir, "gaussianTimes"))
	assert.NotEmpty(t, slots)
	assert.LessOrEqual(t, len(slots), 1000)
	assert.NotEqual(t, "0", slots[len(slots)-1][1], "the dump stops at the last populated slot")

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "rtjitter_samples_total")
	assert.Contains(t, string(metrics), `family="hourOfAllDays"`)
}

func TestExecuteZeroDuration(t *testing.T) {
	dir := t.TempDir()

	code, stdout, stderr := executeForTest("0", "ms", "--warmup", "0", "--output-dir", dir)
	require.Equal(t, 0, code, stderr)

	assert.Contains(t, stdout, "Measurement completed after 0 seconds")
	assert.Contains(t, stdout, "(1 samples)")
	assert.FileExists(t, filepath.Join(dir, "worsts_dayOfAllWeeks"))
	assert.NoFileExists(t, filepath.Join(dir, "rtjitter.prom"))
}

func TestExecuteUnwritableOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	code, stdout, _ := executeForTest("0", "ms", "--warmup", "0", "--output-dir", dir)
	assert.Equal(t, 0, code, "results that cannot be written do not fail the run")
	assert.Contains(t, stdout, "Some result files could not be written")
}

func TestRunStoppedDuringWarmupStillWritesResults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadTestConfig(t, []string{"--warmup", "1m", "--output-dir", dir, "--verbose"}, "3600", "ms")
	require.NoError(t, err)

	stop := new(atomic.Bool)
	stop.Store(true)

	var out bytes.Buffer
	start := time.Now()
	code := run(cfg, &out, stop)
	require.Equal(t, 0, code)
	assert.Less(t, time.Since(start), 30*time.Second, "neither phase waits out its duration")

	stdout := out.String()
	assert.Contains(t, stdout, "Warm-up done after 1 iterations")
	assert.Contains(t, stdout, "Measurement completed after 0 seconds")
	assert.Contains(t, stdout, "canceled=true")
	assert.Contains(t, stdout, "(1 samples)")

	for _, name := range report.FileNames() {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	days := readColumns(t, filepath.Join(dir, "worsts_dayOfAllWeeks"))
	assert.Len(t, days, 7)
}
