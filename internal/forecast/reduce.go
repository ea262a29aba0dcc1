package forecast

import "time"

// Sample is one raw forecast data point: a numeric value at an instant.
type Sample struct {
	Time  time.Time
	Value float64
}

// Reducers never run over empty input: each returns ok=false for an empty
// slice and callers must resolve such buckets to the missing-data sentinel.

// MaxSample returns the sample with the largest value. Ties keep the earliest
// sample so the reported timestamp is deterministic.
func MaxSample(samples []Sample) (Sample, bool) {
	if len(samples) == 0 {
		return Sample{}, false
	}
	best := samples[0]
	for _, s := range samples[1:] {
		if s.Value > best.Value {
			best = s
		}
	}
	return best, true
}

// MinSample returns the sample with the smallest value, keeping the earliest
// on ties.
func MinSample(samples []Sample) (Sample, bool) {
	if len(samples) == 0 {
		return Sample{}, false
	}
	best := samples[0]
	for _, s := range samples[1:] {
		if s.Value < best.Value {
			best = s
		}
	}
	return best, true
}

// Mean returns the arithmetic mean of the sample values, discarding timestamps.
func Mean(samples []Sample) (float64, bool) {
	if len(samples) == 0 {
		return 0, false
	}
	var total float64
	for _, s := range samples {
		total += s.Value
	}
	return total / float64(len(samples)), true
}

// Sum returns the total of the sample values, discarding timestamps.
func Sum(samples []Sample) (float64, bool) {
	if len(samples) == 0 {
		return 0, false
	}
	var total float64
	for _, s := range samples {
		total += s.Value
	}
	return total, true
}
