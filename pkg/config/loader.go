package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "TELEMETRY"

func Load(configPath string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/sdn-telemetry")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sdn-telemetry")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "")
	v.SetDefault("app.log_max_size_mb", 100)
	v.SetDefault("app.log_max_backups", 5)
	v.SetDefault("app.log_max_age_days", 28)
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("app.shutdown_timeout", "15s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "sdn")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")
	v.SetDefault("database.ping_timeout", "10s")
	v.SetDefault("database.query_timeout", "5s")

	v.SetDefault("telemetry.collect_interval", "5s")
	v.SetDefault("telemetry.raw_limit", 50)

	v.SetDefault("forecast.bucket_width", "5s")
	v.SetDefault("forecast.neighbor_steps", 2)
	v.SetDefault("forecast.divisor", 1e6)
	v.SetDefault("forecast.default_range", "5m")
	v.SetDefault("forecast.event_window", "1h")
	v.SetDefault("forecast.event_limit", 50)
	v.SetDefault("forecast.reroute_event_type", "REROUTE")

	v.SetDefault("status.warning_mbps", 900.0)
	v.SetDefault("status.critical_mbps", 1100.0)
	v.SetDefault("status.max_delay_ms", 150.0)
	v.SetDefault("status.max_packet_loss", 1.0)

	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")
	v.SetDefault("api.rate_limit", 20)
	v.SetDefault("api.rate_burst", 40)
	v.SetDefault("api.jwt_secret", "")
	v.SetDefault("api.jwt_duration", "24h")
	v.SetDefault("api.jwt_issuer", "sdn-telemetry")
	v.SetDefault("api.cors.allowed_origins", []string{"http://localhost:5173", "http://localhost:8000"})
	v.SetDefault("api.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("api.cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization", "X-Trace-ID"})
	v.SetDefault("api.cors.exposed_headers", []string{"X-Trace-ID"})
	v.SetDefault("api.cors.allow_credentials", false)
	v.SetDefault("api.cors.max_age", "12h")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.key_prefix", "sdn-telemetry:")
	v.SetDefault("cache.ttl", "30s")

	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.timeout", "30s")
	v.SetDefault("breaker.half_open_max", 1)

	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.port", 9090)
}
