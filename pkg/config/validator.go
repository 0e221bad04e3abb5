package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/OldStager01/sdn-telemetry/pkg/validation"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	if c.App.Timezone != "" {
		if _, err := time.LoadLocation(c.App.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("app.timezone %q is not a known location", c.App.Timezone))
		}
	}

	if c.App.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("app.shutdown_timeout must be positive"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, errors.New("database.port must be between 1 and 65535"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if c.Database.MaxConnections <= 0 {
		errs = append(errs, errors.New("database.max_connections must be positive"))
	}

	// Telemetry validation
	if c.Telemetry.CollectInterval <= 0 {
		errs = append(errs, errors.New("telemetry.collect_interval must be positive"))
	}
	if c.Telemetry.RawLimit <= 0 {
		errs = append(errs, errors.New("telemetry.raw_limit must be positive"))
	}

	// Forecast validation
	if c.Forecast.BucketWidth < time.Second || c.Forecast.BucketWidth > time.Minute {
		errs = append(errs, errors.New("forecast.bucket_width must be between 1s and 1m"))
	}
	if c.Forecast.NeighborSteps < 0 {
		errs = append(errs, errors.New("forecast.neighbor_steps must not be negative"))
	}
	if c.Forecast.Divisor <= 0 {
		errs = append(errs, errors.New("forecast.divisor must be positive"))
	}
	if !validation.IsRange(c.Forecast.DefaultRange) {
		errs = append(errs, fmt.Errorf("forecast.default_range must be one of: %v", validation.Ranges()))
	}
	if c.Forecast.EventWindow <= 0 {
		errs = append(errs, errors.New("forecast.event_window must be positive"))
	}
	if c.Forecast.EventLimit <= 0 {
		errs = append(errs, errors.New("forecast.event_limit must be positive"))
	}
	if c.Forecast.RerouteEventType == "" {
		errs = append(errs, errors.New("forecast.reroute_event_type is required"))
	}

	// Status validation
	if c.Status.WarningMbps <= 0 || c.Status.CriticalMbps <= 0 {
		errs = append(errs, errors.New("status.warning_mbps and status.critical_mbps must be positive"))
	}
	if c.Status.CriticalMbps <= c.Status.WarningMbps {
		errs = append(errs, errors.New("status.critical_mbps must be greater than warning_mbps"))
	}
	if c.Status.MaxDelayMs < 0 || c.Status.MaxPacketLoss < 0 {
		errs = append(errs, errors.New("status QoS limits must not be negative"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, errors.New("api.rate_limit must not be negative"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret != "" && len(c.API.JWTSecret) < 32 {
		errs = append(errs, errors.New("api.jwt_secret must be at least 32 characters in production"))
	}

	// Cache validation
	if c.Cache.Enabled && c.Cache.Address == "" {
		errs = append(errs, errors.New("cache.address is required when the cache is enabled"))
	}

	// Breaker validation
	if c.Breaker.MaxFailures <= 0 {
		errs = append(errs, errors.New("breaker.max_failures must be positive"))
	}
	if c.Breaker.Timeout <= 0 {
		errs = append(errs, errors.New("breaker.timeout must be positive"))
	}

	if c.Prometheus.Enabled {
		if c.Prometheus.Port <= 0 || c.Prometheus.Port > 65535 {
			errs = append(errs, errors.New("prometheus.port must be between 1 and 65535"))
		}
		if c.Prometheus.Port == c.API.Port {
			errs = append(errs, errors.New("prometheus.port must differ from api.port"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
