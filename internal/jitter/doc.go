// Package jitter measures scheduling jitter with a busy-wait loop.
//
// Every gap between two consecutive clock reads is a sample. Samples are
// aggregated into calendar buckets (minute of hour, hour of day, day of week,
// day of month and their combinations) tracking the worst value, the average
// and the sample count, and into a fixed-resolution distribution histogram.
//
// The aggregation structures are dense fixed-size arrays so that recording a
// sample is a constant number of stores with no allocation.
package jitter
