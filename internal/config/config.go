// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DotEnvFile is loaded before parsing when it exists.
const DotEnvFile = ".env"

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   int    `env:"PORT" envDefault:"8000"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Fact API
	FactAPIURL     string        `env:"FACT_API_URL" envDefault:"https://catfact.ninja/fact"`
	FactAPITimeout time.Duration `env:"FACT_API_TIMEOUT" envDefault:"5s"`
	// Outbound throttle, disabled when RPS is 0.
	FactAPIRPS   float64 `env:"FACT_API_RPS" envDefault:"0"`
	FactAPIBurst int     `env:"FACT_API_BURST" envDefault:"1"`

	// Rate limiting
	RateLimitEnabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRoot            int           `env:"RATE_LIMIT_ROOT" envDefault:"10"`
	RateLimitProfile         int           `env:"RATE_LIMIT_PROFILE" envDefault:"5"`
	RateLimitWindow          time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	RateLimitCleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"2m"`
	// Only enable behind a proxy that overwrites X-Forwarded-For.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Optional rate limit statistics sink (Redis)
	RedisURL     string        `env:"REDIS_URL" envDefault:""`
	RateStatsTTL time.Duration `env:"RATE_STATS_TTL" envDefault:"24h"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks value ranges that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	u, err := url.Parse(c.FactAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("FACT_API_URL must be an absolute http(s) URL, got %q", c.FactAPIURL))
	}
	if c.FactAPITimeout <= 0 {
		errs = append(errs, errors.New("FACT_API_TIMEOUT must be positive"))
	}
	if c.FactAPIRPS < 0 {
		errs = append(errs, errors.New("FACT_API_RPS must not be negative"))
	}

	if c.RateLimitRoot <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_ROOT must be positive"))
	}
	if c.RateLimitProfile <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PROFILE must be positive"))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.RateLimitCleanupInterval <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_CLEANUP_INTERVAL must be positive"))
	}

	switch c.AppEnv {
	case "development", "production":
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be development or production, got %q", c.AppEnv))
	}

	return errors.Join(errs...)
}

// Load reads the optional .env file, parses environment variables and
// validates the result. Variables already set in the environment win over
// the file.
func Load() (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
