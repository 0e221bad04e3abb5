package forecast

import (
	"math"

	"github.com/OldStager01/sdn-telemetry/internal/timeseries"
	"github.com/OldStager01/sdn-telemetry/pkg/models"
)

// Pair is one aligned actual/predicted observation.
type Pair struct {
	Actual    float64
	Predicted *float64
}

func (p Pair) valid() bool {
	return p.Actual > 0 && p.Predicted != nil && *p.Predicted > 0
}

// PercentError returns |actual-predicted|/actual*100, or false when either
// side is missing or not positive.
func PercentError(p Pair) (float64, bool) {
	if !p.valid() {
		return 0, false
	}
	return math.Abs(p.Actual-*p.Predicted) / p.Actual * 100, true
}

// ErrorStats computes MAPE and RMSE over the pairs where both values are
// positive. Pairs failing that guard count in neither numerator nor
// denominator. With no usable pair both results are zero.
func ErrorStats(pairs []Pair) (mape, rmse float64, n int) {
	var sumPct, sumSq float64
	for _, p := range pairs {
		pct, ok := PercentError(p)
		if !ok {
			continue
		}
		diff := p.Actual - *p.Predicted
		sumPct += pct
		sumSq += diff * diff
		n++
	}
	if n == 0 {
		return 0, 0, 0
	}
	mape = timeseries.Finite(sumPct / float64(n))
	rmse = timeseries.Finite(math.Sqrt(sumSq / float64(n)))
	return mape, rmse, n
}

// MeanTimeToReroute averages the event-to-forecast lag in milliseconds over
// the reroute events that have a preceding forecast. count is the number of
// reroute events regardless of whether they could be matched.
func MeanTimeToReroute(lags []models.RerouteLag) (mean float64, count int) {
	var sum float64
	var matched int
	for _, l := range lags {
		ms, ok := l.LagMs()
		if !ok {
			continue
		}
		sum += ms
		matched++
	}
	if matched == 0 {
		return 0, len(lags)
	}
	return timeseries.Finite(sum / float64(matched)), len(lags)
}

// Mean returns the average of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return timeseries.Finite(sum / float64(len(values)))
}
