package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/utafrali/DeliveryConsole/pkg/config"
	"github.com/utafrali/DeliveryConsole/pkg/database"
	"github.com/utafrali/DeliveryConsole/pkg/validator"
)

// Session storage backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all configuration for the admin console.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=json text"`

	// Backend API. Both default to empty: requests then go to relative paths
	// with an empty key header.
	BaseURL string `env:"ADMIN_API_BASE_URL" validate:"omitempty,url"`
	APIKey  string `env:"ADMIN_API_KEY"`

	// Session persistence
	SessionBackend   string `env:"SESSION_BACKEND" envDefault:"file" validate:"oneof=file memory redis"`
	SessionFile      string `env:"SESSION_FILE"`
	SessionKeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"adminctl:"`
	RedisHost        string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort        int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	RedisDB          int    `env:"REDIS_DB" envDefault:"0"`

	// Transport
	HTTPTimeout           time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	CircuitBreakerEnabled bool          `env:"CIRCUIT_BREAKER_ENABLED" envDefault:"false"`
	RateLimitRPS          float64       `env:"RATE_LIMIT_RPS" envDefault:"0" validate:"gte=0"`
	RateLimitBurst        int           `env:"RATE_LIMIT_BURST" envDefault:"10" validate:"gte=0"`

	// Realtime
	RealtimeReconnectAttempts int           `env:"REALTIME_RECONNECT_ATTEMPTS" envDefault:"5" validate:"gte=0"`
	RealtimeReconnectDelay    time.Duration `env:"REALTIME_RECONNECT_DELAY" envDefault:"1s"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0" validate:"gte=0,lte=1"`

	// Watch mode ops endpoints
	WatchHTTPPort int `env:"WATCH_HTTP_PORT" envDefault:"9090"`
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("load admin console config: %w", err)
	}
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load admin console config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = DefaultSessionFile()
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := validator.Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Environment == "production" && c.APIKey == "" {
		return fmt.Errorf("ADMIN_API_KEY must be set in %s environment", c.Environment)
	}
	return nil
}

// Redis returns the connection settings for the redis session backend.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// DefaultSessionFile is the session file under the user's config directory,
// or the working directory when that cannot be determined.
func DefaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".adminctl", "session.json")
	}
	return filepath.Join(dir, "adminctl", "session.json")
}
