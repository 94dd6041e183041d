package report

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cbrunnkvist/rtjitter/internal/jitter"
)

const metricsNamespace = "rtjitter"

// Metrics holds the gauges exported after a run. Only one-dimensional
// families are exported, keyed by family and bucket index.
type Metrics struct {
	registry *prometheus.Registry

	worst    *prometheus.GaugeVec
	average  *prometheus.GaugeVec
	samples  *prometheus.GaugeVec
	total    prometheus.Gauge
	overflow prometheus.Gauge
	slots    prometheus.Gauge
	duration prometheus.Gauge
}

// NewMetrics registers the run gauges on a fresh registry. Every series
// carries the run id as a constant label.
func NewMetrics(runID string) *Metrics {
	labels := prometheus.Labels{"run": runID}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		worst: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "worst_latency_seconds",
			Help:        "Worst gap between two consecutive loop iterations per calendar bucket.",
			ConstLabels: labels,
		}, []string{"family", "index"}),
		average: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "average_latency_seconds",
			Help:        "Average gap between two consecutive loop iterations per calendar bucket.",
			ConstLabels: labels,
		}, []string{"family", "index"}),
		samples: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "bucket_samples",
			Help:        "Number of samples recorded per calendar bucket.",
			ConstLabels: labels,
		}, []string{"family", "index"}),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "samples_total",
			Help:        "Number of loop iterations measured.",
			ConstLabels: labels,
		}),
		overflow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "distribution_overflows_total",
			Help:        "Samples longer than the distribution tracks.",
			ConstLabels: labels,
		}),
		slots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "distribution_slots",
			Help:        "Number of slots in the distribution histogram.",
			ConstLabels: labels,
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "measurement_duration_seconds",
			Help:        "How long the measurement loop ran.",
			ConstLabels: labels,
		}),
	}
	m.registry.MustRegister(m.worst, m.average, m.samples, m.total, m.overflow, m.slots, m.duration)
	return m
}

// Observe loads finalized results into the gauges. Buckets without samples
// are left out.
func (m *Metrics) Observe(meas *jitter.Measurements, d *jitter.Distribution, elapsed time.Duration) {
	for _, f := range jitter.Families() {
		if len(f.Dims()) != 1 {
			continue
		}
		family := f.String()
		for i, n := range meas.Counts.Cells(f) {
			if n == 0 {
				continue
			}
			index := strconv.Itoa(i)
			worst, _ := meas.Worst(f, i)
			avg, _ := meas.Average(f, i)
			m.worst.WithLabelValues(family, index).Set(time.Duration(worst).Seconds())
			m.average.WithLabelValues(family, index).Set(time.Duration(avg).Seconds())
			m.samples.WithLabelValues(family, index).Set(float64(n))
		}
	}
	m.total.Set(float64(meas.Samples()))
	m.overflow.Set(float64(d.Overflows()))
	m.slots.Set(float64(d.SlotCount()))
	m.duration.Set(elapsed.Seconds())
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the gauges in the text exposition format, suitable
// for the node exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "writing metrics to %s", path)
	}
	return nil
}
