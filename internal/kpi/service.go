// Package kpi serves the live per-category traffic indicators.
package kpi

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/OldStager01/sdn-telemetry/internal/logger"
	"github.com/OldStager01/sdn-telemetry/internal/metrics"
	"github.com/OldStager01/sdn-telemetry/internal/timeseries"
	"github.com/OldStager01/sdn-telemetry/pkg/models"
)

const filterOptionsKey = "filter-options"

type FlowReader interface {
	LatestTimestamps(ctx context.Context, n int) ([]time.Time, error)
	CategoriesAt(ctx context.Context, ts time.Time) ([]models.CategorySnapshot, error)
	Categories(ctx context.Context) ([]string, error)
	Raw(ctx context.Context, limit int) ([]models.RawFlowPoint, error)
}

// Cache is optional; a nil Cache disables caching.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Service struct {
	flows           FlowReader
	cache           Cache
	cacheTTL        time.Duration
	collectInterval time.Duration
}

func NewService(flows FlowReader, cache Cache, cacheTTL, collectInterval time.Duration) *Service {
	if collectInterval <= 0 {
		collectInterval = 5 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Service{
		flows:           flows,
		cache:           cache,
		cacheTTL:        cacheTTL,
		collectInterval: collectInterval,
	}
}

// StatsByCategory compares the two most recent sample timestamps and returns
// one record per category seen at either of them, sorted by category. A
// category absent at the newest timestamp yields a record whose metrics are
// all nil so charts show a gap instead of a drop to zero.
func (s *Service) StatsByCategory(ctx context.Context) ([]models.CategoryStats, error) {
	start := time.Now()
	defer func() {
		metrics.Get().ObservePipeline("stats_by_category", time.Since(start))
	}()

	stamps, err := s.flows.LatestTimestamps(ctx, 2)
	if err != nil {
		return nil, fmt.Errorf("kpi: latest timestamps: %w", err)
	}
	if len(stamps) == 0 {
		return []models.CategoryStats{}, nil
	}

	tsNow := stamps[0]
	var tsPrev *time.Time
	if len(stamps) > 1 {
		tsPrev = &stamps[1]
	}
	interval := timeseries.Interval(tsNow, tsPrev, s.collectInterval)

	nowRows, err := s.flows.CategoriesAt(ctx, tsNow)
	if err != nil {
		return nil, fmt.Errorf("kpi: snapshot at %s: %w", tsNow, err)
	}
	now := byCategory(nowRows)

	prev := map[string]models.CategorySnapshot{}
	if tsPrev != nil {
		prevRows, err := s.flows.CategoriesAt(ctx, *tsPrev)
		if err != nil {
			return nil, fmt.Errorf("kpi: snapshot at %s: %w", *tsPrev, err)
		}
		prev = byCategory(prevRows)
	}

	out := make([]models.CategoryStats, 0, len(now)+len(prev))
	for _, category := range unionKeys(now, prev) {
		cur, ok := now[category]
		if !ok {
			logger.WithCategory(category).
				WithField("trace_id", logger.TraceIDFromContext(ctx)).
				Debugf("no sample at %s, reporting a gap", tsNow.Format(time.RFC3339))
			out = append(out, models.CategoryStats{Timestamp: tsNow, Category: category})
			continue
		}

		before, ok := prev[category]
		if !ok {
			before = models.CategorySnapshot{Category: category, AvgLatencyMs: cur.AvgLatencyMs}
		}

		throughput := timeseries.Rate(timeseries.CounterDelta(cur.TotalBytesTx, before.TotalBytesTx), interval)
		pps := timeseries.Rate(timeseries.CounterDelta(cur.TotalPktsTx, before.TotalPktsTx), interval)
		latency := timeseries.Finite(cur.AvgLatencyMs)
		jitter := timeseries.Finite(timeseries.Jitter(cur.AvgLatencyMs, before.AvgLatencyMs))
		flows := cur.ActiveFlows

		out = append(out, models.CategoryStats{
			Timestamp:     tsNow,
			Category:      category,
			ThroughputBps: &throughput,
			PpsTx:         &pps,
			AvgLatencyMs:  &latency,
			AvgJitterMs:   &jitter,
			ActiveFlows:   &flows,
		})
	}
	return out, nil
}

// FilterOptions lists the known categories. Cache failures are logged and
// fall back to the data store.
func (s *Service) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	if s.cache != nil {
		var cached models.FilterOptions
		hit, err := s.cache.GetJSON(ctx, filterOptionsKey, &cached)
		if err != nil {
			logger.WarnCtxf(ctx, "filter options cache read failed: %v", err)
		}
		if hit && err == nil {
			if cached.Categories == nil {
				cached.Categories = []string{}
			}
			return &cached, nil
		}
	}

	categories, err := s.flows.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("kpi: categories: %w", err)
	}

	opts := &models.FilterOptions{Categories: cleanCategories(categories)}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, filterOptionsKey, opts, s.cacheTTL); err != nil {
			logger.WarnCtxf(ctx, "filter options cache write failed: %v", err)
		}
	}
	return opts, nil
}

// RawSamples returns the latest raw flow rows in ascending time order.
func (s *Service) RawSamples(ctx context.Context, limit int) ([]models.RawFlowPoint, error) {
	rows, err := s.flows.Raw(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("kpi: raw samples: %w", err)
	}
	if rows == nil {
		rows = []models.RawFlowPoint{}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})
	return rows, nil
}

func byCategory(rows []models.CategorySnapshot) map[string]models.CategorySnapshot {
	m := make(map[string]models.CategorySnapshot, len(rows))
	for _, r := range rows {
		if r.Category == "" || r.Category == models.UnknownCategory {
			continue
		}
		m[r.Category] = r
	}
	return m
}

func unionKeys(a, b map[string]models.CategorySnapshot) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cleanCategories(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		if c == "" || c == models.UnknownCategory {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
