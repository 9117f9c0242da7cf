package uscrn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/couchcryptid/uscrn-etl/internal/config"
	"github.com/couchcryptid/uscrn-etl/internal/domain"
	"github.com/couchcryptid/uscrn-etl/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"
)

// StatusError is returned for any response other than 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Unwrap lets callers match a StatusError with errors.Is(err, domain.ErrNetwork).
func (e *StatusError) Unwrap() error { return domain.ErrNetwork }

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Fetcher performs GET requests against the upstream archive. One Fetcher is
// shared by every year and station of a run: its connection pool, global
// connection cap, and circuit breaker apply across all of them.
type Fetcher struct {
	client    *http.Client
	transport *http.Transport
	sem       *semaphore.Weighted
	breaker   *gobreaker.CircuitBreaker

	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithClock sets the clock used for retry backoff.
func WithClock(c clockwork.Clock) FetcherOption {
	return func(f *Fetcher) { f.clock = c }
}

// NewFetcher builds a Fetcher from the connection limits and timeouts in cfg.
func NewFetcher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, opts ...FetcherOption) *Fetcher {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.MaxConns,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		ForceAttemptHTTP2:     true,
	}

	f := &Fetcher{
		client:     &http.Client{Transport: transport, Timeout: cfg.TotalTimeout},
		transport:  transport,
		sem:        semaphore.NewWeighted(int64(cfg.MaxConns)),
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		maxBackoff: cfg.MaxBackoff,
		clock:      clockwork.NewRealClock(),
		logger:     logger,
		metrics:    metrics,
	}
	if cfg.BreakerEnabled {
		f.breaker = newBreaker(cfg, logger)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func newBreaker(cfg *config.Config, logger *slog.Logger) *gobreaker.CircuitBreaker {
	minRequests := cfg.BreakerMinRequests
	ratio := cfg.BreakerFailureRatio
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "uscrn",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Get returns the body of url on 200 OK. Transport errors, 429 and 5xx are
// retried with exponential backoff. Every failure wraps domain.ErrNetwork.
func (f *Fetcher) Get(ctx context.Context, url string) (string, error) {
	backoff := f.backoff
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			f.metrics.HTTPRetries.Inc()
			f.logger.Debug("retrying request", "url", url, "attempt", attempt, "delay", backoff)
			if !f.sleep(ctx, backoff) {
				break
			}
			backoff = nextBackoff(backoff, f.maxBackoff)
		}

		body, err := f.guardedAttempt(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}
	if ctx.Err() != nil && !errors.Is(lastErr, ctx.Err()) {
		lastErr = fmt.Errorf("%w: GET %s: %w", domain.ErrNetwork, url, ctx.Err())
	}

	f.logger.Warn("request failed", "url", url, "error", lastErr)
	return "", lastErr
}

// Close releases idle pooled connections.
func (f *Fetcher) Close() {
	f.transport.CloseIdleConnections()
}

type attemptResult struct {
	body string
	err  error
}

// guardedAttempt runs one attempt through the circuit breaker. Only errors
// that indicate an unhealthy upstream count as breaker failures; other
// non-200 responses pass through as a successful execution carrying the error.
func (f *Fetcher) guardedAttempt(ctx context.Context, url string) (string, error) {
	if f.breaker == nil {
		return f.attempt(ctx, url)
	}

	res, err := f.breaker.Execute(func() (interface{}, error) {
		body, err := f.attempt(ctx, url)
		if err != nil && retryable(err) {
			return nil, err
		}
		return attemptResult{body: body, err: err}, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		f.metrics.HTTPRequests.WithLabelValues("breaker_open").Inc()
		return "", &breakerError{url: url, cause: err}
	}
	if err != nil {
		return "", err
	}
	r := res.(attemptResult)
	return r.body, r.err
}

// attempt performs a single GET while holding one slot of the global
// connection cap. The slot is released after the body has been read.
func (f *Fetcher) attempt(ctx context.Context, url string) (string, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: GET %s: %w", domain.ErrNetwork, url, err)
	}
	defer f.sem.Release(1)

	start := f.clock.Now()
	defer func() { f.metrics.HTTPRequestDuration.Observe(f.clock.Since(start).Seconds()) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request %s: %w", domain.ErrNetwork, url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.metrics.HTTPRequests.WithLabelValues("error").Inc()
		return "", &transportError{url: url, cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		f.metrics.HTTPRequests.WithLabelValues("status").Inc()
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.metrics.HTTPRequests.WithLabelValues("error").Inc()
		return "", &transportError{url: url, cause: err}
	}
	f.metrics.HTTPRequests.WithLabelValues("success").Inc()
	return string(body), nil
}

func (f *Fetcher) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-f.clock.After(d):
		return true
	}
}

// transportError is a dial, TLS, timeout, or body read failure.
type transportError struct {
	url   string
	cause error
}

func (e *transportError) Error() string { return fmt.Sprintf("GET %s: %v", e.url, e.cause) }

func (e *transportError) Unwrap() []error { return []error{domain.ErrNetwork, e.cause} }

// breakerError is returned without contacting upstream while the breaker is open.
type breakerError struct {
	url   string
	cause error
}

func (e *breakerError) Error() string { return fmt.Sprintf("GET %s: %v", e.url, e.cause) }

func (e *breakerError) Unwrap() []error { return []error{domain.ErrNetwork, e.cause} }

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	var te *transportError
	if errors.As(err, &te) {
		return !errors.Is(te.cause, context.Canceled)
	}
	return false
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
