// Package forecast builds the actual-vs-predicted chart, its QoS status and
// the model and reroute summary metrics.
package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/OldStager01/sdn-telemetry/internal/metrics"
	"github.com/OldStager01/sdn-telemetry/internal/timeseries"
	"github.com/OldStager01/sdn-telemetry/pkg/models"
)

type FlowStore interface {
	LatestTimestamp(ctx context.Context) (*time.Time, error)
	TotalsBetween(ctx context.Context, from, to time.Time) ([]models.TotalsSnapshot, error)
}

type ForecastStore interface {
	Between(ctx context.Context, from, to time.Time) ([]models.ForecastPoint, error)
	LastPositiveBefore(ctx context.Context, before time.Time) (*models.ForecastPoint, error)
}

type EventStore interface {
	Between(ctx context.Context, from, to time.Time, limit int) ([]models.SystemEvent, error)
	RerouteLags(ctx context.Context, eventType string, from, to time.Time) ([]models.RerouteLag, error)
}

type Config struct {
	BucketWidth      time.Duration
	NeighborSteps   int
	CollectInterval  time.Duration
	Divisor          float64
	EventWindow      time.Duration
	EventLimit       int
	RerouteEventType string
	Location         *time.Location
	Thresholds       Thresholds
}

type Service struct {
	flows      FlowStore
	forecasts  ForecastStore
	events     EventStore
	config     Config
	classifier Classifier
}

func NewService(flows FlowStore, forecasts ForecastStore, events EventStore, cfg Config) *Service {
	if cfg.BucketWidth <= 0 {
		cfg.BucketWidth = 5 * time.Second
	}
	if cfg.CollectInterval <= 0 {
		cfg.CollectInterval = 5 * time.Second
	}
	if cfg.Divisor <= 0 {
		cfg.Divisor = 1
	}
	if cfg.EventWindow <= 0 {
		cfg.EventWindow = time.Hour
	}
	if cfg.EventLimit <= 0 {
		cfg.EventLimit = 50
	}
	if cfg.RerouteEventType == "" {
		cfg.RerouteEventType = "REROUTE"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &Service{
		flows:      flows,
		forecasts:  forecasts,
		events:     events,
		config:     cfg,
		classifier: NewClassifier(cfg.Thresholds),
	}
}

// Build assembles the chart for the trailing window ending at the newest flow
// sample. Anchoring on stored data rather than the wall clock keeps the output
// a function of the stored rows.
func (s *Service) Build(ctx context.Context, window time.Duration) (*models.ForecastView, error) {
	start := time.Now()
	defer func() {
		metrics.Get().ObservePipeline("forecast", time.Since(start))
	}()

	view := &models.ForecastView{
		Data:         []models.ChartRecord{},
		SystemEvents: []models.SystemEvent{},
	}

	anchor, err := s.flows.LatestTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("forecast: latest sample: %w", err)
	}
	if anchor == nil {
		return view, nil
	}

	from := anchor.Add(-window)
	w := s.config.BucketWidth
	searchSpan := time.Duration(s.config.NeighborSteps) * w

	snapshots, err := s.flows.TotalsBetween(ctx, from.Add(-2*s.config.CollectInterval), *anchor)
	if err != nil {
		return nil, fmt.Errorf("forecast: flow totals: %w", err)
	}

	points, err := s.forecasts.Between(ctx, from.Add(-searchSpan), anchor.Add(searchSpan))
	if err != nil {
		return nil, fmt.Errorf("forecast: predictions: %w", err)
	}

	seed, err := s.forecasts.LastPositiveBefore(ctx, from.Add(-searchSpan))
	if err != nil {
		return nil, fmt.Errorf("forecast: carry seed: %w", err)
	}

	eventsFrom := anchor.Add(-s.config.EventWindow)
	events, err := s.events.Between(ctx, eventsFrom, *anchor, s.config.EventLimit)
	if err != nil {
		return nil, fmt.Errorf("forecast: system events: %w", err)
	}
	if events != nil {
		view.SystemEvents = events
	}

	lags, err := s.events.RerouteLags(ctx, s.config.RerouteEventType, eventsFrom, *anchor)
	if err != nil {
		return nil, fmt.Errorf("forecast: reroute lags: %w", err)
	}

	actual := timeseries.Bucketize(ActualSeries(snapshots, from, s.config.CollectInterval), w)
	predicted := timeseries.PredictionMap(s.scale(points), w)

	carry := timeseries.Carry{}
	if seed != nil {
		carry = timeseries.Seed(seed.YPred/s.config.Divisor, true)
	}

	merged, _ := timeseries.Merge(actual, predicted, timeseries.MergeOptions{
		Width:          w,
		NeighborSteps: s.config.NeighborSteps,
	}, carry)
	s.recordResolutions(merged)

	view.Data = s.records(merged, s.convergenceByBucket(lags))
	view.ModelMetrics = modelMetrics(merged)
	view.SystemMetrics = systemMetrics(view.Data, lags)
	if n := len(view.Data); n > 0 {
		latest := view.Data[n-1]
		view.LatestStatus = &latest
	}

	return view, nil
}

// ActualSeries turns consecutive totals snapshots into per-second rates.
// Snapshots before from only serve as the baseline of the first delta.
func ActualSeries(snapshots []models.TotalsSnapshot, from time.Time, nominal time.Duration) []timeseries.ActualPoint {
	out := make([]timeseries.ActualPoint, 0, len(snapshots))
	for i := 1; i < len(snapshots); i++ {
		prev, cur := snapshots[i-1], snapshots[i]
		if cur.Timestamp.Before(from) {
			continue
		}

		interval := timeseries.Interval(cur.Timestamp, &prev.Timestamp, nominal)
		bytes := timeseries.CounterDelta(cur.TotalBytesTx, prev.TotalBytesTx)

		out = append(out, timeseries.ActualPoint{
			Time:      cur.Timestamp,
			Mbps:      timeseries.Rate(bytes, interval) * 8 / 1e6,
			DelayMs:   cur.AvgLatencyMs,
			JitterMs:  timeseries.Jitter(cur.AvgLatencyMs, prev.AvgLatencyMs),
			PktsDelta: timeseries.CounterDelta(cur.TotalPktsTx, prev.TotalPktsTx),
			LostDelta: timeseries.CounterDelta(cur.TotalPktsLost, prev.TotalPktsLost),
		})
	}
	return out
}

func (s *Service) scale(points []models.ForecastPoint) []timeseries.Prediction {
	out := make([]timeseries.Prediction, 0, len(points))
	for _, p := range points {
		out = append(out, timeseries.Prediction{
			Value:     timeseries.Finite(p.YPred / s.config.Divisor),
			CreatedAt: p.TS,
		})
	}
	return out
}

// convergenceByBucket maps each matched reroute event onto its chart bucket;
// the latest event in a bucket wins.
func (s *Service) convergenceByBucket(lags []models.RerouteLag) map[timeseries.Key]float64 {
	out := make(map[timeseries.Key]float64)
	latest := make(map[timeseries.Key]time.Time)
	for _, l := range lags {
		ms, ok := l.LagMs()
		if !ok {
			continue
		}
		k := timeseries.BucketKey(l.EventTS, s.config.BucketWidth)
		if seen, ok := latest[k]; ok && seen.After(l.EventTS) {
			continue
		}
		latest[k] = l.EventTS
		out[k] = ms
	}
	return out
}

func (s *Service) records(merged []timeseries.Merged, convergence map[timeseries.Key]float64) []models.ChartRecord {
	out := make([]models.ChartRecord, 0, len(merged))
	for i, m := range merged {
		loss := m.PacketLoss()
		rec := models.ChartRecord{
			ID:              i + 1,
			RunTime:         m.Key.Time(s.config.Location).Format("15:04:05"),
			ActualMbps:      timeseries.Round(m.Mbps, 2),
			DelayMs:         timeseries.Round(m.DelayMs, 1),
			JitterMs:        timeseries.Round(m.JitterMs, 2),
			PacketLoss:      timeseries.Round(loss, 2),
			Status:          s.classifier.Classify(m.Predicted, m.DelayMs, loss),
			ConvergenceTime: timeseries.Round(convergence[m.Key], 2),
		}
		if m.Predicted != nil {
			p := timeseries.Round(*m.Predicted, 2)
			rec.PredictedMbps = &p
		}
		if pct, ok := PercentError(Pair{Actual: m.Mbps, Predicted: m.Predicted}); ok {
			v := timeseries.Round(pct, 2)
			rec.Mape = &v
		}
		if m.Source != nil {
			v := math.Abs(float64(m.Time.Sub(m.Source.CreatedAt).Milliseconds()))
			rec.DetectionTime = &v
		}
		out = append(out, rec)
	}
	return out
}

func (s *Service) recordResolutions(merged []timeseries.Merged) {
	counts := make(map[timeseries.Resolution]int)
	for _, m := range merged {
		counts[m.Resolution]++
	}
	for res, n := range counts {
		metrics.Get().AddResolutions(string(res), n)
	}
}

func modelMetrics(merged []timeseries.Merged) models.ModelMetrics {
	pairs := make([]Pair, 0, len(merged))
	for _, m := range merged {
		pairs = append(pairs, Pair{Actual: m.Mbps, Predicted: m.Predicted})
	}
	mape, rmse, _ := ErrorStats(pairs)
	return models.ModelMetrics{
		MAPE: timeseries.Round(mape, 2),
		RMSE: timeseries.Round(rmse, 2),
	}
}

func systemMetrics(records []models.ChartRecord, lags []models.RerouteLag) models.SystemMetrics {
	detections := make([]float64, 0, len(records))
	for _, r := range records {
		if r.DetectionTime != nil {
			detections = append(detections, *r.DetectionTime)
		}
	}
	mttr, count := MeanTimeToReroute(lags)
	return models.SystemMetrics{
		MTTD:         timeseries.Round(Mean(detections), 2),
		MTTR:         timeseries.Round(mttr, 2),
		RerouteCount: count,
	}
}
