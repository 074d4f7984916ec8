// Package catfact provides the client for the public cat fact API.
package catfact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/hngstage/profile-api/internal/metrics"
)

const (
	// DefaultURL is the fact endpoint used when none is configured.
	DefaultURL = "https://catfact.ninja/fact"
	// DefaultTimeout bounds a single fetch, including any throttle wait.
	DefaultTimeout = 5 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 3 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 3 * time.Second

	// maxBodyBytes caps how much of the upstream body is read.
	maxBodyBytes = 64 << 10
	userAgent    = "profile-api/1.0"
)

// Config configures a Client.
type Config struct {
	URL     string
	Timeout time.Duration
	// RPS throttles outbound calls when > 0. Burst defaults to 1.
	RPS   float64
	Burst int

	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    metrics.Recorder
}

// Client fetches facts. Each Fetch makes exactly one attempt.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	throttle   *rate.Limiter
	logger     *slog.Logger
	metrics    metrics.Recorder
}

// NewHTTPClient creates an HTTP client for the fact API.
// It has bounded timeouts and does not follow redirects.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// New creates a Client, filling unset fields with defaults.
func New(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = NewHTTPClient(cfg.Timeout)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}

	c := &Client{
		url:        cfg.URL,
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.throttle = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	return c
}

// URL returns the configured endpoint.
func (c *Client) URL() string {
	return c.url
}

// factBody holds the only field read from the upstream body. Other fields
// are ignored whatever their type.
type factBody struct {
	Fact *string `json:"fact"`
}

// Fetch retrieves one fact. Every failure is an *ExternalServiceError.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	start := time.Now()
	fact, err := c.fetch(ctx)
	c.metrics.ObserveFactFetchDuration(time.Since(start))
	if err != nil {
		c.metrics.IncFactFetch(metrics.FactOutcomeFailed)
		return "", err
	}
	c.metrics.IncFactFetch(metrics.FactOutcomeSuccess)
	return fact, nil
}

func (c *Client) fetch(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.throttle != nil {
		if err := c.throttle.Wait(ctx); err != nil {
			return "", c.fail("throttle", 0, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", c.fail("request", 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.InfoContext(ctx, "requesting fact from external API", slog.String("url", c.url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.fail("request", 0, err)
	}
	defer resp.Body.Close()

	c.logger.InfoContext(ctx, "external API responded",
		slog.String("url", c.url),
		slog.Int("status_code", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return "", c.fail("status", resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	var body factBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return "", c.fail("decode", resp.StatusCode, err)
	}
	if body.Fact == nil {
		return "", c.fail("decode", resp.StatusCode, errMissingFact)
	}

	return *body.Fact, nil
}

func (c *Client) fail(op string, status int, err error) error {
	return &ExternalServiceError{
		Op:         op,
		URL:        c.url,
		StatusCode: status,
		Err:        err,
	}
}
