package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/sdn-telemetry/internal/resilience"
	"github.com/OldStager01/sdn-telemetry/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeKPI struct {
	stats    []models.CategoryStats
	opts     *models.FilterOptions
	raw      []models.RawFlowPoint
	err      error
	rawLimit int
}

func (f *fakeKPI) StatsByCategory(ctx context.Context) ([]models.CategoryStats, error) {
	return f.stats, f.err
}

func (f *fakeKPI) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	return f.opts, f.err
}

func (f *fakeKPI) RawSamples(ctx context.Context, limit int) ([]models.RawFlowPoint, error) {
	f.rawLimit = limit
	return f.raw, f.err
}

type fakeBuilder struct {
	window time.Duration
	view   *models.ForecastView
	err    error
}

func (f *fakeBuilder) Build(ctx context.Context, window time.Duration) (*models.ForecastView, error) {
	f.window = window
	return f.view, f.err
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func kpiRouter(svc KPIService, breaker *resilience.CircuitBreaker) *gin.Engine {
	h := NewKPIHandler(svc, breaker, 50)
	r := gin.New()
	r.GET("/api/kpi/stats-by-category", h.StatsByCategory)
	r.GET("/api/filter-options", h.FilterOptions)
	r.GET("/flowstats", h.FlowStats)
	return r
}

func TestKPIHandler_StatsByCategory(t *testing.T) {
	tp := 1000.0
	flows := 3
	svc := &fakeKPI{stats: []models.CategoryStats{
		{Timestamp: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), Category: "video"},
		{Timestamp: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), Category: "voip", ThroughputBps: &tp, ActiveFlows: &flows},
	}}

	w := serve(kpiRouter(svc, nil), http.MethodGet, "/api/kpi/stats-by-category", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 2)

	assert.Contains(t, body[0], "throughput_bps")
	assert.Nil(t, body[0]["throughput_bps"])
	assert.Nil(t, body[0]["active_flows"])
	assert.InDelta(t, 1000, body[1]["throughput_bps"], 1e-9)
	assert.InDelta(t, 3, body[1]["active_flows"], 1e-9)
}

func TestKPIHandler_EmptyStatsIsArray(t *testing.T) {
	svc := &fakeKPI{stats: []models.CategoryStats{}}

	w := serve(kpiRouter(svc, nil), http.MethodGet, "/api/kpi/stats-by-category", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestKPIHandler_FilterOptions(t *testing.T) {
	svc := &fakeKPI{opts: &models.FilterOptions{Categories: []string{"video", "voip"}}}

	w := serve(kpiRouter(svc, nil), http.MethodGet, "/api/filter-options", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories":["video","voip"]}`, w.Body.String())
}

func TestKPIHandler_FlowStatsLimit(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantLimit int
	}{
		{"default", "", http.StatusOK, 50},
		{"explicit", "?limit=10", http.StatusOK, 10},
		{"clamped", "?limit=100000", http.StatusOK, 500},
		{"not a number", "?limit=ten", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeKPI{raw: []models.RawFlowPoint{}}
			w := serve(kpiRouter(svc, nil), http.MethodGet, "/flowstats"+tt.query, "")
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLimit, svc.rawLimit)
		})
	}
}

func TestKPIHandler_StoreErrors(t *testing.T) {
	t.Run("store failure is a 500 without details", func(t *testing.T) {
		svc := &fakeKPI{err: errors.New("pq: password authentication failed")}
		w := serve(kpiRouter(svc, nil), http.MethodGet, "/api/kpi/stats-by-category", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("open breaker is a 503", func(t *testing.T) {
		breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute})
		svc := &fakeKPI{err: errors.New("connection refused")}
		r := kpiRouter(svc, breaker)

		first := serve(r, http.MethodGet, "/api/filter-options", "")
		assert.Equal(t, http.StatusInternalServerError, first.Code)

		second := serve(r, http.MethodGet, "/api/filter-options", "")
		assert.Equal(t, http.StatusServiceUnavailable, second.Code)
		assert.JSONEq(t, `{"error":"data store unavailable"}`, second.Body.String())
	})
}

func forecastRouter(b ForecastBuilder) *gin.Engine {
	h := NewForecastHandler(b, nil, "5m")
	r := gin.New()
	r.GET("/api/forecast/data", h.Data)
	r.GET("/forecast/data", h.Data)
	return r
}

func TestForecastHandler_Range(t *testing.T) {
	tests := []struct {
		query      string
		wantCode   int
		wantWindow time.Duration
	}{
		{"", http.StatusOK, 5 * time.Minute},
		{"?range=10s", http.StatusOK, 10 * time.Second},
		{"?range=1h", http.StatusOK, time.Hour},
		{"?range=2h", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			b := &fakeBuilder{view: &models.ForecastView{Data: []models.ChartRecord{}, SystemEvents: []models.SystemEvent{}}}
			w := serve(forecastRouter(b), http.MethodGet, "/api/forecast/data"+tt.query, "")
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantWindow, b.window)
		})
	}
}

func TestForecastHandler_EmptyViewShape(t *testing.T) {
	b := &fakeBuilder{view: &models.ForecastView{Data: []models.ChartRecord{}, SystemEvents: []models.SystemEvent{}}}

	w := serve(forecastRouter(b), http.MethodGet, "/forecast/data", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"data": [],
		"system_events": [],
		"latest_status": null,
		"system_metrics": {"mttd": 0, "mttr": 0, "reroute_count": 0},
		"model_metrics": {"mape": 0, "rmse": 0}
	}`, w.Body.String())
}

func TestForecastHandler_RecordShape(t *testing.T) {
	pred := 90.0
	rec := models.ChartRecord{
		ID: 1, RunTime: "10:15:10", ActualMbps: 100, PredictedMbps: &pred,
		DelayMs: 12, JitterMs: 2, Status: models.StatusCritical,
	}
	b := &fakeBuilder{view: &models.ForecastView{
		Data:         []models.ChartRecord{rec},
		SystemEvents: []models.SystemEvent{},
		LatestStatus: &rec,
	}}

	w := serve(forecastRouter(b), http.MethodGet, "/api/forecast/data?range=1m", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data         []map[string]interface{} `json:"data"`
		LatestStatus map[string]interface{}   `json:"latest_status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "CRITICAL (REROUTE)", body.Data[0]["status"])
	assert.Nil(t, body.Data[0]["mape"])
	assert.Nil(t, body.Data[0]["detection_time"])
	assert.Equal(t, "10:15:10", body.LatestStatus["run_time"])
}

func TestForecastHandler_StoreError(t *testing.T) {
	b := &fakeBuilder{err: context.DeadlineExceeded}
	w := serve(forecastRouter(b), http.MethodGet, "/api/forecast/data", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestIntentHandler_Submit(t *testing.T) {
	h := NewIntentHandler()
	r := gin.New()
	r.POST("/forecast/intent", h.Submit)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"no body", "", http.StatusOK},
		{"full body", `{"action":"REROUTE","target":"s1","reason":"predicted overload"}`, http.StatusOK},
		{"empty object", `{}`, http.StatusOK},
		{"malformed json", `{"action":`, http.StatusBadRequest},
		{"unknown action", `{"action":"SHUTDOWN"}`, http.StatusBadRequest},
		{"bad target", `{"target":"s1; drop"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodPost, "/forecast/intent", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.JSONEq(t, `{"message":"Intent Simulated","count":1}`, w.Body.String())
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	healthy := PingerFunc(func(ctx context.Context) error { return nil })
	down := PingerFunc(func(ctx context.Context) error { return errors.New("dial tcp: refused") })

	tests := []struct {
		name     string
		db       Pinger
		cache    Pinger
		path     string
		wantCode int
	}{
		{"healthy", healthy, nil, "/health", http.StatusOK},
		{"database down", down, nil, "/health", http.StatusServiceUnavailable},
		{"cache down only degrades", healthy, down, "/health", http.StatusOK},
		{"ready", healthy, nil, "/health/ready", http.StatusOK},
		{"not ready", down, nil, "/health/ready", http.StatusServiceUnavailable},
		{"live ignores database", down, nil, "/health/live", http.StatusOK},
		{"test route", down, nil, "/api/test", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, tt.cache, nil)
			r := gin.New()
			r.GET("/health", h.Health)
			r.GET("/health/ready", h.Ready)
			r.GET("/health/live", h.Live)
			r.GET("/api/test", h.Test)

			w := serve(r, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestHealthHandler_ReportsBreakerStats(t *testing.T) {
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "datastore", MaxFailures: 3, Timeout: time.Minute})
	_ = breaker.Execute(func() error { return errors.New("connection refused") })

	h := NewHealthHandler(PingerFunc(func(ctx context.Context) error { return nil }), nil, breaker)
	r := gin.New()
	r.GET("/health", h.Health)

	w := serve(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "closed", body.Checks["circuit_breaker"])
	assert.Equal(t, "1", body.Checks["circuit_breaker_failures"])
	assert.NotEmpty(t, body.Checks["circuit_breaker_last_failure"])
}
