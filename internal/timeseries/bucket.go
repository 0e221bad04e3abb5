// Package timeseries aligns independently sampled series onto a shared
// bucketed time axis.
package timeseries

import (
	"time"
)

// Key identifies a bucket by the unix second at which it starts. Buckets are
// cut inside each minute: [n*W, (n+1)*W) seconds past the minute, with the last
// bucket of a minute truncated when W does not divide 60.
type Key int64

// BucketKey returns the key of the bucket containing t for width w. Widths
// below one second are treated as one second; widths above a minute as a
// whole minute.
func BucketKey(t time.Time, w time.Duration) Key {
	width := widthSeconds(w)
	unix := t.Unix()
	minute := unix - mod(unix, 60)
	second := unix - minute
	return Key(minute + (second/width)*width)
}

// Shift returns the key of the bucket containing k's start plus steps widths.
// When the width does not divide a minute, a step across the minute boundary
// can skip the short last bucket of the previous minute.
func (k Key) Shift(steps int, w time.Duration) Key {
	offset := int64(steps) * widthSeconds(w)
	return BucketKey(time.Unix(int64(k)+offset, 0), w)
}

// Time returns the bucket start in loc.
func (k Key) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(int64(k), 0).In(loc)
}

func (k Key) String() string {
	return k.Time(time.UTC).Format("2006-01-02 15:04:05")
}

func widthSeconds(w time.Duration) int64 {
	s := int64(w / time.Second)
	switch {
	case s < 1:
		return 1
	case s > 60:
		return 60
	default:
		return s
	}
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// ActualPoint is one observation of the measured series.
type ActualPoint struct {
	Key       Key
	Time      time.Time
	Mbps      float64
	DelayMs   float64
	JitterMs  float64
	PktsDelta float64
	LostDelta float64
	Samples   int
}

// PacketLoss returns the lost share of transmitted packets in percent.
func (p ActualPoint) PacketLoss() float64 {
	if p.PktsDelta <= 0 || p.LostDelta <= 0 {
		return 0
	}
	return p.LostDelta / p.PktsDelta * 100
}

// Bucketize keys every point by w and collapses points sharing a key. Rates
// and delays are averaged, packet counts are pooled, and the latest sample
// time is kept. Input must be ascending; output stays ascending.
func Bucketize(points []ActualPoint, w time.Duration) []ActualPoint {
	out := make([]ActualPoint, 0, len(points))
	for _, p := range points {
		p.Key = BucketKey(p.Time, w)
		if p.Samples == 0 {
			p.Samples = 1
		}

		n := len(out)
		if n == 0 || out[n-1].Key != p.Key {
			out = append(out, p)
			continue
		}

		last := &out[n-1]
		total := float64(last.Samples + p.Samples)
		last.Mbps = (last.Mbps*float64(last.Samples) + p.Mbps*float64(p.Samples)) / total
		last.DelayMs = (last.DelayMs*float64(last.Samples) + p.DelayMs*float64(p.Samples)) / total
		last.JitterMs = (last.JitterMs*float64(last.Samples) + p.JitterMs*float64(p.Samples)) / total
		last.PktsDelta += p.PktsDelta
		last.LostDelta += p.LostDelta
		last.Samples += p.Samples
		last.Time = p.Time
	}
	return out
}
