// Package breaker builds gobreaker circuit breakers with shared defaults and
// state-change logging for outbound calls (Stripe API, Supabase REST).
package breaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/nextweekend/nextweekend/pkg/logger"
)

// ErrOpen is returned instead of gobreaker's own errors while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker open")

// Config tunes a breaker. Zero values fall back to defaults.
type Config struct {
	Name             string
	MaxRequests      uint32        // half-open probes
	Interval         time.Duration // closed-state count reset
	Timeout          time.Duration // open-state duration
	FailureThreshold uint32        // consecutive failures before tripping
}

type Option func(*gobreaker.Settings)

// WithIsSuccessful decides which errors count as failures.
// Client errors (4xx) usually should not trip the breaker.
func WithIsSuccessful(fn func(err error) bool) Option {
	return func(s *gobreaker.Settings) { s.IsSuccessful = fn }
}

func New[T any](cfg Config, log *slog.Logger, opts ...Option) *gobreaker.CircuitBreaker[T] {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	threshold := cfg.FailureThreshold
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.Component(name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}
	return gobreaker.NewCircuitBreaker[T](settings)
}

// Execute runs fn through cb and maps rejection errors to ErrOpen.
func Execute[T any](cb *gobreaker.CircuitBreaker[T], fn func() (T, error)) (T, error) {
	res, err := cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return res, errors.Join(ErrOpen, err)
	}
	return res, err
}
