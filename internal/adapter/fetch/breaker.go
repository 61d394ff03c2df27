package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"googlebot/internal/domain"
)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32        = 5
	defaultBreakerTimeout     time.Duration = 30 * time.Second
	defaultBreakerInterval    time.Duration = 60 * time.Second
)

// BreakerConfig configures BreakerFetcher. Zero fields use the defaults.
type BreakerConfig struct {
	MaxFailures uint32
	Timeout     time.Duration
	Interval    time.Duration
}

// BreakerFetcher stops calling a failing search engine for a while.
// It never retries; an open circuit fails the request immediately.
type BreakerFetcher struct {
	inner   domain.Fetcher
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

// NewBreakerFetcher wraps inner with a circuit breaker.
func NewBreakerFetcher(inner domain.Fetcher, cfg BreakerConfig, logger *slog.Logger) *BreakerFetcher {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultBreakerInterval
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "fetch:" + inner.Name(),
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		// A caller giving up is not the search engine's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerFetcher{inner: inner, breaker: cb, logger: logger}
}

func (f *BreakerFetcher) Name() string { return f.inner.Name() }

// Fetch calls the wrapped fetcher unless the circuit is open. An open
// circuit error wraps both domain.ErrFetch and domain.ErrCircuitOpen.
func (f *BreakerFetcher) Fetch(ctx context.Context, url string, header http.Header) ([]byte, error) {
	body, err := f.breaker.Execute(func() ([]byte, error) {
		return f.inner.Fetch(ctx, url, header)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("fetcher %q: %w: %w: %v", f.inner.Name(), domain.ErrFetch, domain.ErrCircuitOpen, err)
		}
		return nil, err
	}
	return body, nil
}

// State returns the current breaker state.
func (f *BreakerFetcher) State() gobreaker.State {
	return f.breaker.State()
}

var _ domain.Fetcher = (*BreakerFetcher)(nil)
