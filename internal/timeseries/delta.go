package timeseries

import (
	"math"
	"time"
)

// CounterDelta returns now-prev for a cumulative counter. A negative result
// means the counter was reset between samples, in which case prev is taken as
// zero.
func CounterDelta(now, prev float64) float64 {
	d := now - prev
	if d < 0 {
		return now
	}
	return d
}

// Interval returns the gap between two sample timestamps in seconds. It falls
// back to nominal when there is no previous sample or the gap is not positive.
func Interval(now time.Time, prev *time.Time, nominal time.Duration) float64 {
	fallback := nominal.Seconds()
	if fallback <= 0 {
		fallback = 1
	}
	if prev == nil {
		return fallback
	}
	gap := now.Sub(*prev).Seconds()
	if gap <= 0 {
		return fallback
	}
	return gap
}

// Rate divides a delta by an interval in seconds, returning 0 for a
// non-positive interval.
func Rate(delta, intervalSeconds float64) float64 {
	if intervalSeconds <= 0 {
		return 0
	}
	return Finite(delta / intervalSeconds)
}

// Jitter approximates jitter as the absolute change in mean latency between
// two consecutive samples. It is not a windowed variance.
func Jitter(latencyNow, latencyPrev float64) float64 {
	return math.Abs(latencyNow - latencyPrev)
}

// Finite maps NaN and infinities to zero.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return Finite(math.Round(v*p) / p)
}
