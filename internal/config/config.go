package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the adbridge application.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	Platform   PlatformConfig
	Sync       SyncConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ClickHouseConfig configures the audit event store.
type ClickHouseConfig struct {
	Enabled  bool
	Addr     string
	Database string
	User     string
	Password string
}

// PlatformConfig configures the outbound ad platform client.
type PlatformConfig struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
}

// SyncConfig tunes the reconcilers and the outbound throttle.
type SyncConfig struct {
	Concurrency int
	ThrottleRPS int
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("ADBRIDGE_HTTP_ADDR", ":8080"),
			Env:             getEnv("ADBRIDGE_ENV", "development"),
			ShutdownTimeout: getDurationEnv("ADBRIDGE_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("ADBRIDGE_DB_HOST", "localhost"),
			Port:     getIntEnv("ADBRIDGE_DB_PORT", 5432),
			User:     getEnv("ADBRIDGE_DB_USER", "adbridge"),
			Password: getEnv("ADBRIDGE_DB_PASSWORD", "adbridge_secret"),
			DBName:   getEnv("ADBRIDGE_DB_NAME", "adbridge"),
			SSLMode:  getEnv("ADBRIDGE_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("ADBRIDGE_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("ADBRIDGE_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("ADBRIDGE_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("ADBRIDGE_REDIS_PASSWORD", ""),
			DB:       getIntEnv("ADBRIDGE_REDIS_DB", 0),
		},
		ClickHouse: ClickHouseConfig{
			Enabled:  getBoolEnv("ADBRIDGE_CLICKHOUSE_ENABLED", false),
			Addr:     getEnv("ADBRIDGE_CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("ADBRIDGE_CLICKHOUSE_DB", "adbridge"),
			User:     getEnv("ADBRIDGE_CLICKHOUSE_USER", "default"),
			Password: getEnv("ADBRIDGE_CLICKHOUSE_PASSWORD", ""),
		},
		Platform: PlatformConfig{
			BaseURL:  getEnv("ADBRIDGE_PLATFORM_BASE_URL", "https://graph.adplatform.example/v19.0"),
			Timeout:  getDurationEnv("ADBRIDGE_PLATFORM_TIMEOUT", time.Minute),
			PageSize: getIntEnv("ADBRIDGE_PLATFORM_PAGE_SIZE", 50),
		},
		Sync: SyncConfig{
			Concurrency: getIntEnv("ADBRIDGE_SYNC_CONCURRENCY", 4),
			ThrottleRPS: getIntEnv("ADBRIDGE_SYNC_THROTTLE_RPS", 10),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("ADBRIDGE_AUTH_ENABLED", true),
			MasterKey: getEnv("ADBRIDGE_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("ADBRIDGE_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("ADBRIDGE_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("ADBRIDGE_RATE_LIMIT_RPS", 100),
			Burst:   getIntEnv("ADBRIDGE_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("ADBRIDGE_LOG_LEVEL", "info"),
			Format: getEnv("ADBRIDGE_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("ADBRIDGE_METRICS_ENABLED", true),
			Path:    getEnv("ADBRIDGE_METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("ADBRIDGE_API_KEY_MASTER is required when auth is enabled")
	}
	if c.Sync.Concurrency < 1 {
		return fmt.Errorf("ADBRIDGE_SYNC_CONCURRENCY must be at least 1")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
