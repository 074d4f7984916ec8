// Package main is the entrypoint for the profile API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/hngstage/profile-api/docs/api"
	"github.com/hngstage/profile-api/internal/analytics"
	"github.com/hngstage/profile-api/internal/cache"
	"github.com/hngstage/profile-api/internal/catfact"
	"github.com/hngstage/profile-api/internal/config"
	"github.com/hngstage/profile-api/internal/handler"
	"github.com/hngstage/profile-api/internal/metrics"
	"github.com/hngstage/profile-api/internal/middleware"
	"github.com/hngstage/profile-api/internal/ratelimit"
	"github.com/hngstage/profile-api/internal/server"
	"github.com/hngstage/profile-api/internal/service"
)

func main() {
	// Initialize context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	metricsRecorder := metrics.NewInMemory()

	// Optional rate limit statistics sink
	var (
		stats     ratelimit.EventRecorder
		health    handler.HealthChecker
		publisher *analytics.Publisher
	)
	cacheClient := connectStats(ctx, cfg, logger)
	if cacheClient != nil {
		publisher = analytics.NewPublisher(cacheClient, logger, metricsRecorder)
		go func() {
			if err := publisher.Run(ctx); err != nil {
				logger.Error("analytics publisher error", "error", err)
			}
		}()
		stats = publisher
		health = cacheClient
	}

	// Initialize services
	facts := catfact.New(catfact.Config{
		URL:     cfg.FactAPIURL,
		Timeout: cfg.FactAPITimeout,
		RPS:     cfg.FactAPIRPS,
		Burst:   cfg.FactAPIBurst,
		Logger:  logger,
		Metrics: metricsRecorder,
	})
	profileService := service.NewProfileService(facts, logger)

	limiter := ratelimit.New(ratelimit.WithCleanupEvery(cfg.RateLimitCleanupInterval))
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	limiter.StartJanitor(janitorCtx)

	// Setup router
	r := handler.NewRouter(handler.RouterConfig{
		Logger:  logger,
		Handler: handler.New(logger),
		Profile: handler.NewProfileHandler(profileService, logger),
		Health:  handler.NewHealthHandler(health, logger),
		Metrics: handler.NewMetricsHandler(metricsRecorder),
		OpenAPI: handler.NewOpenAPIHandler(api.OpenAPISpec),
		RateLimit: middleware.RateLimitConfig{
			Logger:            logger,
			Limiter:           limiter,
			Enabled:           cfg.RateLimitEnabled,
			TrustProxyHeaders: cfg.TrustProxyHeaders,
			Metrics:           metricsRecorder,
			Stats:             stats,
		},
		RootRule:           ratelimit.Rule{Limit: cfg.RateLimitRoot, Window: cfg.RateLimitWindow},
		ProfileRule:        ratelimit.Rule{Limit: cfg.RateLimitProfile, Window: cfg.RateLimitWindow},
		IsDevelopment:      cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
	})

	// Create and run server
	srv := server.New(r, server.Options{
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
		srv.OnShutdown("ratelimit-stats", publisher.Shutdown)
	}
	srv.OnShutdown("ratelimit-janitor", func(ctx context.Context) error {
		stopJanitor()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.Port,
		"env", cfg.AppEnv,
		"fact_api_url", cfg.FactAPIURL,
		"rate_limit_enabled", cfg.RateLimitEnabled,
		"rate_stats", cacheClient != nil,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// connectStats connects to Redis when REDIS_URL is set.
// The sink is optional, so connection failures are logged and the server
// runs without it.
func connectStats(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cache.Cache {
	if cfg.RedisURL == "" {
		return nil
	}

	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.WithStatsTTL(cfg.RateStatsTTL))
	if err != nil {
		logger.Error(
			"failed to connect to Redis, rate limit statistics disabled",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return nil
	}

	logger.Info("connected to Redis", slog.String("redis_url", redactURL(cfg.RedisURL)))
	return cacheClient
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
