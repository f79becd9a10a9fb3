package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the process configuration
type Config struct {
	Port   int    `mapstructure:"port"`
	AppEnv string `mapstructure:"app_env"`

	APIKey       string `mapstructure:"api_key"`
	APIKeyHeader string `mapstructure:"api_key_header"`

	DatabaseURL string `mapstructure:"database_url"`
	RedisURL    string `mapstructure:"redis_url"` // empty = in-process throttle window

	ThrottleWindowMs    int    `mapstructure:"throttle_window_ms"`
	ThrottleMaxRequests int    `mapstructure:"throttle_max_requests"`
	ThrottleKey         string `mapstructure:"throttle_key"` // global | ip

	CaptureQueueSize      int `mapstructure:"capture_queue_size"`
	CaptureWorkers        int `mapstructure:"capture_workers"`
	CaptureWriteTimeoutMs int `mapstructure:"capture_write_timeout_ms"`

	QueryTimeoutMs int `mapstructure:"query_timeout_ms"`

	WeatherBaseURL   string `mapstructure:"weather_base_url"`
	WeatherTimeoutMs int    `mapstructure:"weather_timeout_ms"`

	PublicDir         string `mapstructure:"public_dir"` // empty disables static assets
	ShutdownTimeoutMs int    `mapstructure:"shutdown_timeout_ms"`
}

// Throttle key modes
const (
	ThrottleKeyGlobal = "global"
	ThrottleKeyIP     = "ip"
)

var keys = []string{
	"port", "app_env", "api_key", "api_key_header", "database_url", "redis_url",
	"throttle_window_ms", "throttle_max_requests", "throttle_key",
	"capture_queue_size", "capture_workers", "capture_write_timeout_ms",
	"query_timeout_ms", "weather_base_url", "weather_timeout_ms",
	"public_dir", "shutdown_timeout_ms",
}

// SetDefaults registers the default value of every option on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("app_env", "development")
	v.SetDefault("api_key", "")
	v.SetDefault("api_key_header", "x-api-key")
	v.SetDefault("database_url", "sqlite3://weather_api.db")
	v.SetDefault("redis_url", "")
	v.SetDefault("throttle_window_ms", 60_000)
	v.SetDefault("throttle_max_requests", 100)
	v.SetDefault("throttle_key", ThrottleKeyGlobal)
	v.SetDefault("capture_queue_size", 1024)
	v.SetDefault("capture_workers", 2)
	v.SetDefault("capture_write_timeout_ms", 5_000)
	v.SetDefault("query_timeout_ms", 10_000)
	v.SetDefault("weather_base_url", "https://api.open-meteo.com")
	v.SetDefault("weather_timeout_ms", 8_000)
	v.SetDefault("public_dir", "public")
	v.SetDefault("shutdown_timeout_ms", 15_000)
}

// Load reads configuration from an optional config.yaml and the environment.
// Environment variables use the upper-cased key, e.g. THROTTLE_MAX_REQUESTS.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about when unmarshalling
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; using defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks option ranges
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (got %d)", c.Port)
	}
	if c.APIKeyHeader == "" {
		return fmt.Errorf("api_key_header must not be empty")
	}
	if c.ThrottleWindowMs <= 0 {
		return fmt.Errorf("throttle_window_ms must be > 0 (got %d)", c.ThrottleWindowMs)
	}
	if c.ThrottleMaxRequests <= 0 {
		return fmt.Errorf("throttle_max_requests must be > 0 (got %d)", c.ThrottleMaxRequests)
	}
	if c.ThrottleKey != ThrottleKeyGlobal && c.ThrottleKey != ThrottleKeyIP {
		return fmt.Errorf("throttle_key must be %q or %q (got %q)", ThrottleKeyGlobal, ThrottleKeyIP, c.ThrottleKey)
	}
	if c.CaptureQueueSize <= 0 {
		return fmt.Errorf("capture_queue_size must be > 0 (got %d)", c.CaptureQueueSize)
	}
	if c.CaptureWorkers <= 0 {
		return fmt.Errorf("capture_workers must be > 0 (got %d)", c.CaptureWorkers)
	}
	if c.CaptureWriteTimeoutMs <= 0 || c.QueryTimeoutMs <= 0 || c.WeatherTimeoutMs <= 0 {
		return fmt.Errorf("timeouts must be > 0")
	}
	return nil
}

// IsProduction reports whether the process runs with production settings
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ThrottleWindow returns the throttle window as a duration
func (c *Config) ThrottleWindow() time.Duration {
	return time.Duration(c.ThrottleWindowMs) * time.Millisecond
}

// CaptureWriteTimeout returns the per-write timeout of the capture recorder
func (c *Config) CaptureWriteTimeout() time.Duration {
	return time.Duration(c.CaptureWriteTimeoutMs) * time.Millisecond
}

// QueryTimeout returns the timeout applied to log queries
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMs) * time.Millisecond
}

// WeatherTimeout returns the upstream weather call timeout
func (c *Config) WeatherTimeout() time.Duration {
	return time.Duration(c.WeatherTimeoutMs) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown budget
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMs) * time.Millisecond
}
