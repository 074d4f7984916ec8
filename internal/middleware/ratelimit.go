package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hngstage/profile-api/internal/metrics"
	"github.com/hngstage/profile-api/internal/model"
	"github.com/hngstage/profile-api/internal/ratelimit"
)

// RateLimitConfig holds configuration shared by all rate-limited routes.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter *ratelimit.Limiter
	Enabled bool
	// TrustProxyHeaders keys clients on the address chi's RealIP derives from
	// True-Client-IP, X-Real-IP or X-Forwarded-For.
	// Only enable behind a proxy that overwrites these headers.
	TrustProxyHeaders bool

	Metrics metrics.Recorder
	// Stats is optional; recording failures never affect the response.
	Stats ratelimit.EventRecorder
}

// RateLimit returns middleware enforcing rule for route, per client address.
// Rejected requests get a 429 before next runs.
func RateLimit(cfg RateLimitConfig, route string, rule ratelimit.Rule) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cfg.Limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			client := ClientKey(r)
			result := cfg.Limiter.Allow(route, client, rule)
			annotateLog(r.Context(), route, client, !result.Allowed)

			recorder.IncRateLimitDecision(route, result.Allowed)
			if cfg.Stats != nil {
				ev := ratelimit.Event{Route: route, Client: client, Allowed: result.Allowed, At: result.DecidedAt}
				if err := cfg.Stats.Record(r.Context(), ev); err != nil {
					logger.Debug("rate limit stats not recorded",
						slog.String("error", err.Error()),
						slog.String("route", route),
					)
				}
			}

			setRateLimitHeaders(w, result)

			if !result.Allowed {
				retryAfter := retryAfterSeconds(result.RetryAfter)
				logger.Warn("rate limit exceeded",
					slog.String("route", route),
					slog.String("client", client),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int("retry_after_seconds", retryAfter),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeJSON(w, http.StatusTooManyRequests, model.ErrorResponse{
					Error:   "Rate limit exceeded: " + describeRule(rule),
					Message: model.ErrorMessageRetry,
				})
				return
			}

			next.ServeHTTP(w, r)
		})

		if cfg.TrustProxyHeaders {
			// RealIP yields the same address when the router already applied it.
			return chimiddleware.RealIP(h)
		}
		return h
	}
}

// ClientKey returns the host part of the caller's network address.
// Proxy headers are never read here; RealIP rewrites RemoteAddr first when
// they are trusted.
func ClientKey(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	if addr != "" {
		return addr
	}
	return "unknown"
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, result ratelimit.Result) {
	if result.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// retryAfterSeconds rounds up to whole seconds, never below 1.
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// describeRule renders a rule as e.g. "5 per 1 minute".
func describeRule(rule ratelimit.Rule) string {
	if rule.Window >= time.Minute && rule.Window%time.Minute == 0 {
		n := int(rule.Window / time.Minute)
		unit := "minute"
		if n != 1 {
			unit = "minutes"
		}
		return fmt.Sprintf("%d per %d %s", rule.Limit, n, unit)
	}
	return fmt.Sprintf("%d per %s", rule.Limit, rule.Window)
}
