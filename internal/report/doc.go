// Package report turns finalized jitter measurements into result files,
// log output and Prometheus metrics.
package report
