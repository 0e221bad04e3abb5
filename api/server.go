package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/sdn-telemetry/api/handlers"
	"github.com/OldStager01/sdn-telemetry/api/middleware"
	"github.com/OldStager01/sdn-telemetry/internal/auth"
	"github.com/OldStager01/sdn-telemetry/internal/cache"
	"github.com/OldStager01/sdn-telemetry/internal/forecast"
	"github.com/OldStager01/sdn-telemetry/internal/kpi"
	"github.com/OldStager01/sdn-telemetry/internal/logger"
	"github.com/OldStager01/sdn-telemetry/internal/metrics"
	"github.com/OldStager01/sdn-telemetry/internal/resilience"
	"github.com/OldStager01/sdn-telemetry/pkg/config"
	"github.com/OldStager01/sdn-telemetry/pkg/database"
	"github.com/OldStager01/sdn-telemetry/pkg/database/queries"
)

const maxIntentBodyBytes = 4 << 10

// Services are the read paths the HTTP layer exposes.
type Services struct {
	KPI      handlers.KPIService
	Forecast handlers.ForecastBuilder
	DB       handlers.Pinger
	Cache    handlers.Pinger
}

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      *config.Config
	services    Services
	breaker     *resilience.CircuitBreaker
	authService *auth.Service
	rateLimiter *middleware.RateLimiter
}

// NewServer wires repositories and services over db. cacheClient may be nil,
// in which case filter options always come from the database.
func NewServer(cfg *config.Config, db *database.DB, cacheClient *cache.Client) *Server {
	flows := queries.NewFlowStatsRepository(db.DB)
	forecasts := queries.NewForecastRepository(db.DB)
	events := queries.NewSystemEventRepository(db.DB)

	var kpiCache kpi.Cache
	var cachePinger handlers.Pinger
	if cacheClient != nil {
		kpiCache = cacheClient
		cachePinger = handlers.PingerFunc(cacheClient.Ping)
	}

	return newServer(cfg, Services{
		KPI:      kpi.NewService(flows, kpiCache, cfg.Cache.TTL, cfg.Telemetry.CollectInterval),
		Forecast: forecast.NewService(flows, forecasts, events, ForecastConfig(cfg)),
		DB:       db,
		Cache:    cachePinger,
	})
}

// ForecastConfig maps the loaded configuration onto the chart pipeline.
func ForecastConfig(cfg *config.Config) forecast.Config {
	return forecast.Config{
		BucketWidth:      cfg.Forecast.BucketWidth,
		NeighborSteps:   cfg.Forecast.NeighborSteps,
		CollectInterval:  cfg.Telemetry.CollectInterval,
		Divisor:          cfg.Forecast.Divisor,
		EventWindow:      cfg.Forecast.EventWindow,
		EventLimit:       cfg.Forecast.EventLimit,
		RerouteEventType: cfg.Forecast.RerouteEventType,
		Location:         cfg.App.Location(),
		Thresholds: forecast.Thresholds{
			WarningMbps:   cfg.Status.WarningMbps,
			CriticalMbps:  cfg.Status.CriticalMbps,
			MaxDelayMs:    cfg.Status.MaxDelayMs,
			MaxPacketLoss: cfg.Status.MaxPacketLoss,
		},
	}
}

func newServer(cfg *config.Config, services Services) *Server {
	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s := &Server{
		router:   gin.New(),
		config:   cfg,
		services: services,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:          "datastore",
			MaxFailures:   cfg.Breaker.MaxFailures,
			Timeout:       cfg.Breaker.Timeout,
			HalfOpenMax:   cfg.Breaker.HalfOpenMax,
			OnStateChange: onBreakerStateChange,
		}),
	}

	if cfg.API.JWTSecret != "" {
		s.authService = auth.NewService(cfg.API.JWTSecret, cfg.API.JWTIssuer, cfg.API.JWTDuration)
	} else {
		logger.Warn("api.jwt_secret is empty, generate-intent is unauthenticated")
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func onBreakerStateChange(name string, from, to resilience.State) {
	logger.WithFields(map[string]interface{}{
		"breaker": name,
		"from":    from.String(),
		"to":      to.String(),
	}).Warn("circuit breaker state changed")
	metrics.Get().SetCircuitBreakerState(name, int(to))
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(s.config.API.CORS))
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.HTTPMetrics())
	s.router.Use(middleware.SecurityHeaders())

	s.rateLimiter = middleware.NewRateLimiter(float64(s.config.API.RateLimit), s.config.API.RateBurst)
	s.rateLimiter.StartCleanup(time.Minute)
	s.router.Use(middleware.RateLimit(s.rateLimiter))

	s.router.Use(middleware.Deadline(s.config.Database.QueryTimeout))
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.services.DB, s.services.Cache, s.breaker)
	kpiHandler := handlers.NewKPIHandler(s.services.KPI, s.breaker, s.config.Telemetry.RawLimit)
	forecastHandler := handlers.NewForecastHandler(s.services.Forecast, s.breaker, s.config.Forecast.DefaultRange)
	intentHandler := handlers.NewIntentHandler()

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)
	s.router.GET("/api/test", healthHandler.Test)

	s.router.GET("/flowstats", kpiHandler.FlowStats)
	s.router.GET("/api/kpi/stats-by-category", kpiHandler.StatsByCategory)
	s.router.GET("/api/filter-options", kpiHandler.FilterOptions)

	s.router.GET("/api/forecast/data", forecastHandler.Data)
	s.router.GET("/forecast/data", forecastHandler.Data)

	s.router.POST("/forecast/intent",
		middleware.RequestSizeLimit(maxIntentBodyBytes),
		intentHandler.Submit)
	s.router.POST("/api/forecast/generate-intent",
		middleware.RequestSizeLimit(maxIntentBodyBytes),
		middleware.JWTAuth(s.authService),
		intentHandler.Submit)
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.API.Port)

	idle := s.config.API.IdleTimeout
	if idle <= 0 {
		idle = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.API.ReadTimeout,
		WriteTimeout: s.config.API.WriteTimeout,
		IdleTimeout:  idle,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Breaker() *resilience.CircuitBreaker {
	return s.breaker
}
