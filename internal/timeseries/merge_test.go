package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const width = 5 * time.Second

func series(times ...string) []ActualPoint {
	out := make([]ActualPoint, 0, len(times))
	for i, hms := range times {
		tm := at(hms)
		out = append(out, ActualPoint{Key: BucketKey(tm, width), Time: tm, Mbps: float64(100 + i)})
	}
	return out
}

func predictions(pairs map[string]float64) map[Key]Prediction {
	preds := make([]Prediction, 0, len(pairs))
	for hms, v := range pairs {
		preds = append(preds, Prediction{Value: v, CreatedAt: at(hms)})
	}
	return PredictionMap(preds, width)
}

func opts() MergeOptions {
	return MergeOptions{Width: width, NeighborSteps: 2}
}

func TestMerge_Resolution(t *testing.T) {
	tests := []struct {
		name      string
		predicted map[string]float64
		carry     Carry
		want      *float64
		wantRes   Resolution
	}{
		{
			name:      "exact bucket",
			predicted: map[string]float64{"10:15:11": 500},
			want:      ptr(500),
			wantRes:   ResolvedExact,
		},
		{
			name:      "neighbour one width later",
			predicted: map[string]float64{"10:15:16": 510},
			want:      ptr(510),
			wantRes:   ResolvedNeighbor,
		},
		{
			name:      "neighbour two widths earlier",
			predicted: map[string]float64{"10:15:00": 490},
			want:      ptr(490),
			wantRes:   ResolvedNeighbor,
		},
		{
			name:      "nearest neighbour wins",
			predicted: map[string]float64{"10:15:00": 490, "10:15:15": 515},
			want:      ptr(515),
			wantRes:   ResolvedNeighbor,
		},
		{
			name:      "beyond search distance falls back to carry",
			predicted: map[string]float64{"10:15:25": 530},
			carry:     Carry{Value: 420, Valid: true},
			want:      ptr(420),
			wantRes:   ResolvedCarried,
		},
		{
			name:      "no prediction and no history stays nil",
			predicted: map[string]float64{},
			want:      nil,
			wantRes:   ResolvedMissing,
		},
		{
			name:      "zero prediction does not read as zero",
			predicted: map[string]float64{"10:15:10": 0},
			carry:     Carry{Value: 420, Valid: true},
			want:      ptr(420),
			wantRes:   ResolvedCarried,
		},
		{
			name:      "negative prediction without history stays nil",
			predicted: map[string]float64{"10:15:10": -3},
			want:      nil,
			wantRes:   ResolvedMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := Merge(series("10:15:10"), predictions(tt.predicted), opts(), tt.carry)

			require.Len(t, out, 1)
			assert.Equal(t, tt.wantRes, out[0].Resolution)
			if tt.want == nil {
				assert.Nil(t, out[0].Predicted)
				return
			}
			require.NotNil(t, out[0].Predicted)
			assert.Equal(t, *tt.want, *out[0].Predicted)
		})
	}
}

func TestMerge_ForwardFill(t *testing.T) {
	actual := series("10:15:00", "10:15:05", "10:15:30", "10:15:35")
	predicted := predictions(map[string]float64{"10:15:00": 700})

	out, carry := Merge(actual, predicted, MergeOptions{Width: width}, Carry{})

	require.Len(t, out, 4)
	assert.Equal(t, ResolvedExact, out[0].Resolution)
	for _, m := range out[1:] {
		require.NotNil(t, m.Predicted)
		assert.Equal(t, 700.0, *m.Predicted)
		assert.Equal(t, ResolvedCarried, m.Resolution)
		assert.Nil(t, m.Source)
	}
	assert.Equal(t, Carry{Value: 700, Valid: true}, carry)
}

func TestMerge_ZeroPredictionKeepsCarry(t *testing.T) {
	actual := series("10:15:00", "10:15:30", "10:15:55")
	predicted := predictions(map[string]float64{"10:15:00": 650, "10:15:30": 0})

	out, carry := Merge(actual, predicted, opts(), Carry{})

	require.Len(t, out, 3)
	assert.Equal(t, 650.0, *out[1].Predicted)
	assert.Equal(t, 650.0, *out[2].Predicted)
	assert.Equal(t, 650.0, carry.Value)
}

func TestMerge_PreservesInputOrder(t *testing.T) {
	actual := series("10:15:00", "10:15:05", "10:15:10", "10:15:15")

	out, _ := Merge(actual, predictions(nil), opts(), Carry{})

	require.Len(t, out, len(actual))
	for i := range actual {
		assert.Equal(t, actual[i].Time, out[i].Time)
		assert.Equal(t, actual[i].Mbps, out[i].Mbps)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	actual := series("10:15:00", "10:15:05", "10:15:20", "10:15:45")
	predicted := predictions(map[string]float64{"10:15:05": 300, "10:15:40": 0, "10:15:20": 320})
	seed := Carry{Value: 250, Valid: true}

	first, c1 := Merge(actual, predicted, opts(), seed)
	second, c2 := Merge(actual, predicted, opts(), seed)

	assert.Equal(t, first, second)
	assert.Equal(t, c1, c2)
}

func TestPredictionMap_LatestInBucketWins(t *testing.T) {
	preds := []Prediction{
		{Value: 2, CreatedAt: at("10:15:04")},
		{Value: 1, CreatedAt: at("10:15:01")},
	}

	m := PredictionMap(preds, width)

	require.Len(t, m, 1)
	assert.Equal(t, 2.0, m[BucketKey(at("10:15:00"), width)].Value)
}

func TestSeed(t *testing.T) {
	assert.Equal(t, Carry{}, Seed(10, false))
	assert.Equal(t, Carry{}, Seed(0, true))
	assert.Equal(t, Carry{Value: 10, Valid: true}, Seed(10, true))
}

func ptr(v float64) *float64 { return &v }
