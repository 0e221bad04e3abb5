package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/OldStager01/sdn-telemetry/pkg/models"
)

func ptr(v float64) *float64 { return &v }

func TestErrorStats(t *testing.T) {
	tests := []struct {
		name     string
		pairs    []Pair
		wantMAPE float64
		wantRMSE float64
		wantN    int
	}{
		{
			name: "two valid pairs",
			pairs: []Pair{
				{Actual: 100, Predicted: ptr(90)},
				{Actual: 200, Predicted: ptr(210)},
			},
			wantMAPE: 7.5,
			wantRMSE: 10,
			wantN:    2,
		},
		{
			name: "zero actual and missing prediction are ignored",
			pairs: []Pair{
				{Actual: 0, Predicted: ptr(90)},
				{Actual: 100, Predicted: nil},
				{Actual: 100, Predicted: ptr(0)},
				{Actual: 100, Predicted: ptr(80)},
			},
			wantMAPE: 20,
			wantRMSE: 20,
			wantN:    1,
		},
		{
			name:  "no usable pair",
			pairs: []Pair{{Actual: 0, Predicted: nil}},
		},
		{
			name: "empty input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mape, rmse, n := ErrorStats(tt.pairs)
			assert.InDelta(t, tt.wantMAPE, mape, 1e-9)
			assert.InDelta(t, tt.wantRMSE, rmse, 1e-9)
			assert.Equal(t, tt.wantN, n)
		})
	}
}

func TestPercentError(t *testing.T) {
	pct, ok := PercentError(Pair{Actual: 50, Predicted: ptr(55)})
	assert.True(t, ok)
	assert.InDelta(t, 10, pct, 1e-9)

	_, ok = PercentError(Pair{Actual: 50, Predicted: ptr(-1)})
	assert.False(t, ok)
}

func TestMeanTimeToReroute(t *testing.T) {
	event := time.Date(2026, 3, 2, 10, 15, 19, 0, time.UTC)
	forecastAt := func(d time.Duration) *time.Time {
		ts := event.Add(-d)
		return &ts
	}

	t.Run("no events", func(t *testing.T) {
		mean, count := MeanTimeToReroute(nil)
		assert.Zero(t, mean)
		assert.Zero(t, count)
	})

	t.Run("matched events are averaged", func(t *testing.T) {
		mean, count := MeanTimeToReroute([]models.RerouteLag{
			{EventID: 1, EventTS: event, ForecastTS: forecastAt(2 * time.Second)},
			{EventID: 2, EventTS: event, ForecastTS: forecastAt(4 * time.Second)},
		})
		assert.InDelta(t, 3000, mean, 1e-9)
		assert.Equal(t, 2, count)
	})

	t.Run("unmatched events count but are not averaged", func(t *testing.T) {
		mean, count := MeanTimeToReroute([]models.RerouteLag{
			{EventID: 1, EventTS: event, ForecastTS: forecastAt(500 * time.Millisecond)},
			{EventID: 2, EventTS: event},
		})
		assert.InDelta(t, 500, mean, 1e-9)
		assert.Equal(t, 2, count)
	})

	t.Run("only unmatched events", func(t *testing.T) {
		mean, count := MeanTimeToReroute([]models.RerouteLag{{EventID: 1, EventTS: event}})
		assert.Zero(t, mean)
		assert.Equal(t, 1, count)
	})
}

func TestMean(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-9)
}
