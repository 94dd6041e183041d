package report

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/cbrunnkvist/rtjitter/internal/jitter"
)

// DistributionFile is the name of the distribution histogram dump.
const DistributionFile = "gaussianTimes"

// Statistic prefixes of the bucket dumps.
const (
	WorstsPrefix   = "worsts"
	AveragesPrefix = "averages"
)

// FileName returns the dump file name of one statistic of one family.
func FileName(prefix string, f jitter.Family) string {
	return prefix + "_" + f.String()
}

// FileNames lists every file WriteFiles produces, in write order.
func FileNames() []string {
	var names []string
	for _, prefix := range []string{WorstsPrefix, AveragesPrefix} {
		for _, f := range jitter.Families() {
			names = append(names, FileName(prefix, f))
		}
	}
	return append(names, DistributionFile)
}

// WriteFiles dumps worst and average values of every family plus the
// distribution histogram as tab-separated files in dir, overwriting existing
// files. A failed file does not stop the others; all failures are returned
// together.
func WriteFiles(logger log.FieldLogger, dir string, m *jitter.Measurements, d *jitter.Distribution) error {
	var result *multierror.Error

	for _, stat := range []struct {
		prefix  string
		buckets *jitter.Buckets
	}{
		{WorstsPrefix, &m.Worsts},
		{AveragesPrefix, &m.Averages},
	} {
		for _, f := range jitter.Families() {
			cells := stat.buckets.Cells(f)
			err := writeFile(logger, filepath.Join(dir, FileName(stat.prefix, f)), func(w io.Writer) error {
				return writeCells(w, f, cells)
			})
			if err != nil {
				result = multierror.Append(result, err)
			}
		}
	}

	slots := d.Slots()[:d.LastNonZeroSlot()]
	err := writeFile(logger, filepath.Join(dir, DistributionFile), func(w io.Writer) error {
		return writeSlots(w, slots)
	})
	if err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

func writeFile(logger log.FieldLogger, path string, write func(io.Writer) error) error {
	logger.Debugf("Writing '%s'", path)
	file, err := os.Create(path)
	if err != nil {
		logger.WithError(err).Errorf("Could not create '%s'", path)
		return errors.Wrapf(err, "creating %s", path)
	}
	w := bufio.NewWriter(file)
	if err := write(w); err != nil {
		file.Close()
		logger.WithError(err).Errorf("Could not write '%s'", path)
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		logger.WithError(err).Errorf("Could not write '%s'", path)
		return errors.Wrapf(err, "flushing %s", path)
	}
	if err := file.Close(); err != nil {
		logger.WithError(err).Errorf("Could not close '%s'", path)
		return errors.Wrapf(err, "closing %s", path)
	}
	return nil
}

// writeCells writes one line per cell: the indices outermost first, then the value.
func writeCells(w io.Writer, f jitter.Family, cells []uint64) error {
	buf := make([]byte, 0, 64)
	for offset, v := range cells {
		buf = buf[:0]
		for _, i := range f.Unflatten(offset) {
			buf = strconv.AppendInt(buf, int64(i), 10)
			buf = append(buf, '\t')
		}
		buf = strconv.AppendUint(buf, v, 10)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func writeSlots(w io.Writer, slots []uint64) error {
	buf := make([]byte, 0, 32)
	for i, n := range slots {
		buf = strconv.AppendInt(buf[:0], int64(i), 10)
		buf = append(buf, '\t')
		buf = strconv.AppendUint(buf, n, 10)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
