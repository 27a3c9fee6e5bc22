package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/fortify/retry"
)

// Resilient wraps a Generator with resilience patterns from fortify. The
// learning service never awaits feedback inside a state transition, but the
// generator still talks to an external model service and needs protection
// from its failure modes.
type Resilient struct {
	generator      Generator
	circuitBreaker circuitbreaker.CircuitBreaker[json.RawMessage]
	retrier        retry.Retry[json.RawMessage]
	bulkhead       bulkhead.Bulkhead[json.RawMessage]
	rateLimit      ratelimit.RateLimiter
	logger         *slog.Logger
}

// ResilientConfig holds configuration for the resilient wrapper.
type ResilientConfig struct {
	// EnableCircuitBreaker enables circuit breaker pattern
	EnableCircuitBreaker bool

	// EnableRetry enables retry with backoff
	EnableRetry bool

	// EnableBulkhead enables concurrency limiting
	EnableBulkhead bool

	// EnableRateLimit enables rate limiting
	EnableRateLimit bool

	// MaxConcurrent for bulkhead (default: 5)
	MaxConcurrent int

	// RatePerSecond for rate limiting (default: 2)
	RatePerSecond int

	// Logger for resilience events
	Logger *slog.Logger
}

// DefaultResilientConfig returns sensible defaults for feedback generation.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		EnableCircuitBreaker: true,
		EnableRetry:          true,
		EnableBulkhead:       true,
		EnableRateLimit:      true,
		MaxConcurrent:        5,
		RatePerSecond:        2,
	}
}

// NewResilient wraps a generator with resilience patterns using fortify.
func NewResilient(generator Generator, cfg ResilientConfig) *Resilient {
	r := &Resilient{
		generator: generator,
		logger:    cfg.Logger,
	}

	if cfg.EnableCircuitBreaker {
		r.circuitBreaker = circuitbreaker.New[json.RawMessage](circuitbreaker.Config{
			MaxRequests: 2,
			Interval:    10 * time.Second,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				if r.logger != nil {
					r.logger.Warn("feedback circuit breaker state change",
						"from", from.String(),
						"to", to.String())
				}
			},
		})
	}

	if cfg.EnableRetry {
		r.retrier = retry.New[json.RawMessage](retry.Config{
			MaxAttempts:   3,
			InitialDelay:  2 * time.Second,
			MaxDelay:      60 * time.Second,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
		})
	}

	if cfg.EnableBulkhead {
		maxConcurrent := cfg.MaxConcurrent
		if maxConcurrent <= 0 {
			maxConcurrent = 5
		}
		r.bulkhead = bulkhead.New[json.RawMessage](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
			MaxQueue:      maxConcurrent * 2,
			QueueTimeout:  30 * time.Second,
		})
	}

	if cfg.EnableRateLimit {
		rate := cfg.RatePerSecond
		if rate <= 0 {
			rate = 2
		}
		r.rateLimit = ratelimit.New(&ratelimit.Config{
			Rate:     rate,
			Burst:    rate * 3,
			Interval: time.Second,
		})
	}

	return r
}

// Generate runs the wrapped generator behind rate limiting, bulkhead,
// circuit breaker, and retry.
func (r *Resilient) Generate(ctx context.Context, evalCtx EvaluationContext, language string) (json.RawMessage, error) {
	if r.rateLimit != nil {
		if !r.rateLimit.Allow(ctx, "feedback") {
			return nil, fmt.Errorf("feedback generation rate limit exceeded")
		}
	}

	operation := func(ctx context.Context) (json.RawMessage, error) {
		return r.generator.Generate(ctx, evalCtx, language)
	}

	if r.bulkhead != nil {
		inner := operation
		operation = func(ctx context.Context) (json.RawMessage, error) {
			return r.bulkhead.Execute(ctx, inner)
		}
	}

	if r.circuitBreaker != nil && r.retrier != nil {
		return r.circuitBreaker.Execute(ctx, func(ctx context.Context) (json.RawMessage, error) {
			return r.retrier.Do(ctx, operation)
		})
	}
	if r.circuitBreaker != nil {
		return r.circuitBreaker.Execute(ctx, operation)
	}
	if r.retrier != nil {
		return r.retrier.Do(ctx, operation)
	}
	return operation(ctx)
}

// Close releases resources held by the resilient wrapper.
func (r *Resilient) Close() error {
	if r.rateLimit != nil {
		return r.rateLimit.Close()
	}
	return nil
}

var _ Generator = (*Resilient)(nil)
