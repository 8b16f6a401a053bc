// Package fetch implements curl: HTTP requests whose response bodies can be
// saved into the virtual filesystem.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/docfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/tracing"
)

// ErrTooManyRedirects is returned when a followed chain exceeds the limit.
var ErrTooManyRedirects = errors.New("too many redirects")

type followKey struct{}

// Client wraps resty with rate limiting and a circuit breaker.
type Client struct {
	resty        *resty.Client
	limiter      *rate.Limiter
	breaker      *resilience.Breaker
	maxRedirects int
	logger       *zap.Logger
	metrics      *monitoring.Metrics

	mu sync.RWMutex
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records every fetch in metrics.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *Client) {
		if b != nil {
			c.breaker = b
		}
	}
}

// NewClient creates an HTTP client from fetch settings.
func NewClient(cfg config.FetchConfig, opts ...Option) *Client {
	// Pooled transport from retryablehttp; retries are driven by resty
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	c := &Client{
		maxRedirects: cfg.MaxRedirects,
		logger:       zap.NewNop(),
	}

	restyClient := resty.New()
	restyClient.
		SetTimeout(cfg.Timeout.Std()).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetTransport(retryClient.HTTPClient.Transport).
		SetRedirectPolicy(resty.RedirectPolicyFunc(c.checkRedirect))
	c.resty = restyClient

	c.breaker = resilience.New("fetch", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			// Remote hosts vary in reliability; trip on a long failure streak
			// or a mostly failing window.
			return counts.ConsecutiveFailures >= 10 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			c.logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})

	c.SetRateLimit(cfg.RateLimit)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetRateLimit configures rate limiting (requests per second). Zero or
// negative disables it.
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	if follow, _ := req.Context().Value(followKey{}).(bool); !follow {
		return http.ErrUseLastResponse
	}
	if len(via) > c.maxRedirects {
		return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, c.maxRedirects)
	}
	return nil
}

func (c *Client) request(ctx context.Context, follow bool) (*resty.Request, error) {
	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	headers := map[string]string{}
	tracing.InjectTraceContext(ctx, headers)

	ctx = context.WithValue(ctx, followKey{}, follow)
	return c.resty.R().SetContext(ctx).SetHeaders(headers), nil
}
