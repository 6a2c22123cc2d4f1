// Package stats holds the running statistics kept for every aggregation node.
package stats

import (
	"math"
	"time"
)

// Accumulator keeps count, sum, extremes and sum of squares of observed
// durations. It never retains individual samples.
//
// SumSquares is stored in seconds² as a float64: squaring a nanosecond
// int64 overflows after roughly three seconds.
type Accumulator struct {
	Count      int64
	Total      time.Duration
	Min        time.Duration
	Max        time.Duration
	SumSquares float64
}

// Observe folds one duration into the accumulator.
func (a *Accumulator) Observe(d time.Duration) {
	if a.Count == 0 || d < a.Min {
		a.Min = d
	}
	if a.Count == 0 || d > a.Max {
		a.Max = d
	}
	a.Count++
	a.Total += d
	s := d.Seconds()
	a.SumSquares += s * s
}

// Mean returns Total/Count, or zero for an empty accumulator.
func (a Accumulator) Mean() time.Duration {
	if a.Count == 0 {
		return 0
	}
	return a.Total / time.Duration(a.Count)
}

// Variance returns the population variance in seconds².
// Rounding can push sumsq/n - mean² slightly below zero; it is clamped.
func (a Accumulator) Variance() float64 {
	if a.Count < 2 {
		return 0
	}
	n := float64(a.Count)
	mean := a.Total.Seconds() / n
	v := a.SumSquares/n - mean*mean
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// Empty reports whether nothing has been observed yet.
func (a Accumulator) Empty() bool { return a.Count == 0 }
