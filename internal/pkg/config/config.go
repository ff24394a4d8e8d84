// Package config loads service configuration from an optional config.toml
// and PRICING_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// PRICING_SPANNER_DATABASE.
const EnvPrefix = "PRICING"

// Config holds all application configuration
type Config struct {
	App          AppConfig
	HTTP         HTTPConfig
	Spanner      SpannerConfig
	Redis        RedisConfig
	ExchangeRate ExchangeRateConfig
	Log          LogConfig
	Outbox       OutboxConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// SpannerConfig holds the database path and the per-transaction deadline.
type SpannerConfig struct {
	Database  string // projects/P/instances/I/databases/D
	TxTimeout time.Duration
}

// RedisConfig holds the exchange-rate cache connection.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	RateKey  string
	Timeout  time.Duration
}

// ExchangeRateConfig holds the static IDR-per-CNY rate used when the cache
// has none. Empty means no fallback.
type ExchangeRateConfig struct {
	Fallback string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// OutboxConfig holds retention of processed outbox events.
type OutboxConfig struct {
	CompletedRetention time.Duration
	FailedRetention    time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pricing-service")
	v.SetDefault("app.env", "development")

	v.SetDefault("http.port", "8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("spanner.database", "projects/test-project/instances/dev-instance/databases/pricing-db")
	v.SetDefault("spanner.tx_timeout", 10*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.rate_key", "fx:cny_idr")
	v.SetDefault("redis.timeout", 200*time.Millisecond)

	v.SetDefault("exchange_rate.fallback", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("outbox.completed_retention", 30*24*time.Hour)
	v.SetDefault("outbox.failed_retention", 90*24*time.Hour)
}

// Load loads configuration. Priority (highest to lowest):
//  1. Environment variables with PRICING_ prefix
//  2. config.toml in the first of paths that has one (default ".")
//  3. Built-in defaults
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		HTTP: HTTPConfig{
			Port:            v.GetString("http.port"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Spanner: SpannerConfig{
			Database:  v.GetString("spanner.database"),
			TxTimeout: v.GetDuration("spanner.tx_timeout"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			RateKey:  v.GetString("redis.rate_key"),
			Timeout:  v.GetDuration("redis.timeout"),
		},
		ExchangeRate: ExchangeRateConfig{
			Fallback: v.GetString("exchange_rate.fallback"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Outbox: OutboxConfig{
			CompletedRetention: v.GetDuration("outbox.completed_retention"),
			FailedRetention:    v.GetDuration("outbox.failed_retention"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	if c.HTTP.Port == "" {
		return errors.New("config: http.port is required")
	}
	parts := strings.Split(c.Spanner.Database, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "instances" || parts[4] != "databases" {
		return fmt.Errorf("config: spanner.database %q must look like projects/P/instances/I/databases/D", c.Spanner.Database)
	}
	if c.Spanner.TxTimeout <= 0 {
		return errors.New("config: spanner.tx_timeout must be positive")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("config: redis.addr is required when redis is enabled")
	}
	if _, err := c.FallbackRate(); err != nil {
		return err
	}
	return nil
}

// FallbackRate parses ExchangeRate.Fallback; nil when unset.
func (c *Config) FallbackRate() (*decimal.Decimal, error) {
	if strings.TrimSpace(c.ExchangeRate.Fallback) == "" {
		return nil, nil
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(c.ExchangeRate.Fallback))
	if err != nil {
		return nil, fmt.Errorf("config: exchange_rate.fallback: %w", err)
	}
	if !rate.IsPositive() {
		return nil, fmt.Errorf("config: exchange_rate.fallback must be positive, got %s", rate)
	}
	return &rate, nil
}

// SpannerIDs splits the database path into project, instance and database ids.
func (c *Config) SpannerIDs() (project, instance, database string) {
	parts := strings.Split(c.Spanner.Database, "/")
	if len(parts) != 6 {
		return "", "", ""
	}
	return parts[1], parts[3], parts[5]
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
