package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig holds the circuit breaker settings for a backend.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that trips the circuit.
	MaxFailures uint32

	// Timeout is how long the circuit stays open before allowing a probe.
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of probes allowed while half-open.
	HalfOpenMaxSuccesses uint32
}

// DefaultBreakerConfig returns MaxFailures 3, Timeout 30s, HalfOpenMaxSuccesses 1.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:          3,
		Timeout:              30 * time.Second,
		HalfOpenMaxSuccesses: 1,
	}
}

// BreakerBackend wraps a Backend so that a failing store is skipped quickly
// instead of being hit on every tracked visit. While the circuit is open,
// Get and Set return ErrUnavailable without touching the wrapped backend.
type BreakerBackend struct {
	next    Backend
	breaker *gobreaker.CircuitBreaker
}

type getResult struct {
	value string
	ok    bool
}

// NewBreakerBackend wraps next. Zero fields in cfg fall back to DefaultBreakerConfig.
func NewBreakerBackend(next Backend, cfg BreakerConfig, logger *slog.Logger) *BreakerBackend {
	def := DefaultBreakerConfig()
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.HalfOpenMaxSuccesses == 0 {
		cfg.HalfOpenMaxSuccesses = def.HalfOpenMaxSuccesses
	}
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "storage",
		MaxRequests: cfg.HalfOpenMaxSuccesses,
		Interval:    0,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("storage circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		// A missing slot is a successful read; only real errors count.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &BreakerBackend{next: next, breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (b *BreakerBackend) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := b.breaker.Execute(func() (interface{}, error) {
		v, ok, err := b.next.Get(ctx, key)
		return getResult{value: v, ok: ok}, err
	})
	if err != nil {
		return "", false, translateBreakerErr(err)
	}
	r := res.(getResult)
	return r.value, r.ok, nil
}

func (b *BreakerBackend) Set(ctx context.Context, key, value string) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.next.Set(ctx, key, value)
	})
	return translateBreakerErr(err)
}

// Slots delegates to the wrapped backend when it can list slots.
func (b *BreakerBackend) Slots(ctx context.Context) ([]Slot, error) {
	if l, ok := b.next.(SlotLister); ok {
		return l.Slots(ctx)
	}
	return nil, nil
}

// State reports the breaker state: "closed", "half-open" or "open".
func (b *BreakerBackend) State() string {
	return b.breaker.State().String()
}

func (b *BreakerBackend) Close() error {
	return b.next.Close()
}

func translateBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	return err
}
