package timeseries

import (
	"time"
)

// Resolution tells how a merged point obtained its predicted value.
type Resolution string

const (
	ResolvedExact    Resolution = "exact"
	ResolvedNeighbor Resolution = "neighbor"
	ResolvedCarried  Resolution = "carried"
	ResolvedMissing  Resolution = "missing"
)

// Prediction is a predicted value together with the time it was produced.
type Prediction struct {
	Value     float64
	CreatedAt time.Time
}

// Carry is the forward-fill accumulator threaded between merges. Only
// strictly positive predictions are ever stored in it.
type Carry struct {
	Value float64
	Valid bool
}

// Seed builds a carry from an optional earlier prediction.
func Seed(value float64, ok bool) Carry {
	if !ok || value <= 0 {
		return Carry{}
	}
	return Carry{Value: value, Valid: true}
}

type MergeOptions struct {
	Width time.Duration
	// NeighborSteps is how many widths to search on each side of a key
	// before falling back to the carry.
	NeighborSteps int
}

// Merged is an actual point aligned with its prediction.
type Merged struct {
	ActualPoint
	Predicted  *float64
	Source     *Prediction
	Resolution Resolution
}

// Merge aligns the actual series with the predicted map. For every actual
// point it takes the exact bucket, then the nearest neighbour bucket (earlier
// side first on ties), then the carried value, else leaves the prediction
// nil. Non-positive predictions are treated as glitches and never replace or
// overwrite the carry. The returned carry can seed the next merge.
func Merge(actual []ActualPoint, predicted map[Key]Prediction, opts MergeOptions, carry Carry) ([]Merged, Carry) {
	out := make([]Merged, 0, len(actual))
	for _, a := range actual {
		m := Merged{ActualPoint: a, Resolution: ResolvedMissing}

		if p, res, ok := resolve(a.Key, predicted, opts); ok && p.Value > 0 {
			v := p.Value
			src := p
			m.Predicted = &v
			m.Source = &src
			m.Resolution = res
			carry = Carry{Value: v, Valid: true}
		} else if carry.Valid {
			v := carry.Value
			m.Predicted = &v
			m.Resolution = ResolvedCarried
		}

		out = append(out, m)
	}
	return out, carry
}

func resolve(k Key, predicted map[Key]Prediction, opts MergeOptions) (Prediction, Resolution, bool) {
	if p, ok := predicted[k]; ok {
		return p, ResolvedExact, true
	}
	for step := 1; step <= opts.NeighborSteps; step++ {
		if p, ok := predicted[k.Shift(-step, opts.Width)]; ok {
			return p, ResolvedNeighbor, true
		}
		if p, ok := predicted[k.Shift(step, opts.Width)]; ok {
			return p, ResolvedNeighbor, true
		}
	}
	return Prediction{}, ResolvedMissing, false
}

// PredictionMap keys predictions by bucket. When several fall into the same
// bucket the latest one wins.
func PredictionMap(preds []Prediction, w time.Duration) map[Key]Prediction {
	m := make(map[Key]Prediction, len(preds))
	for _, p := range preds {
		k := BucketKey(p.CreatedAt, w)
		if prev, ok := m[k]; ok && prev.CreatedAt.After(p.CreatedAt) {
			continue
		}
		m[k] = p
	}
	return m
}
