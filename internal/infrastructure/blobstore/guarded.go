package blobstore

import (
	"context"
	"errors"
	"time"

	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/resilience"
)

// GuardOptions configures a Guarded store.
type GuardOptions struct {
	// Backend labels metrics, e.g. "s3".
	Backend string
	// Timeout bounds every call. Zero disables the bound.
	Timeout time.Duration
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
	// Cooldown is how long the breaker stays open.
	Cooldown time.Duration
	Metrics  *monitoring.Metrics
	// Now overrides the breaker clock.
	Now func() time.Time
}

// Guarded puts a circuit breaker, a per-call timeout and metrics in front of a store.
type Guarded struct {
	inner   Store
	breaker *resilience.Breaker
	opts    GuardOptions
}

// NewGuarded wraps inner.
func NewGuarded(inner Store, opts GuardOptions) *Guarded {
	if opts.Backend == "" {
		opts.Backend = "unknown"
	}
	failures := opts.Failures
	if failures == 0 {
		failures = 5
	}
	metrics := opts.Metrics
	breaker := resilience.New("blobstore-"+opts.Backend, resilience.Settings{
		Timeout: opts.Cooldown,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidKey)
		},
		OnStateChange: func(name string, _ resilience.State, to resilience.State) {
			metrics.SetBreakerState(name, int(to))
		},
		Now: opts.Now,
	})
	metrics.SetBreakerState(breaker.Name(), int(resilience.StateClosed))
	return &Guarded{inner: inner, breaker: breaker, opts: opts}
}

// Breaker exposes the breaker for health reporting.
func (g *Guarded) Breaker() *resilience.Breaker {
	return g.breaker
}

// Load reads key through the breaker.
func (g *Guarded) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := g.call(ctx, "load", func(ctx context.Context) error {
		var err error
		data, err = g.inner.Load(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save writes key through the breaker.
func (g *Guarded) Save(ctx context.Context, key string, data []byte) error {
	err := g.call(ctx, "save", func(ctx context.Context) error {
		return g.inner.Save(ctx, key, data)
	})
	if err == nil {
		g.opts.Metrics.ObservePersistedBytes(len(data))
	}
	return err
}

// Delete removes key through the breaker.
func (g *Guarded) Delete(ctx context.Context, key string) error {
	return g.call(ctx, "delete", func(ctx context.Context) error {
		return g.inner.Delete(ctx, key)
	})
}

// Close closes the inner store.
func (g *Guarded) Close() error {
	return Close(g.inner)
}

func (g *Guarded) call(ctx context.Context, op string, fn func(context.Context) error) error {
	timer := monitoring.NewTimer(g.opts.Metrics, g.opts.Backend, op)
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	err := g.breaker.Do(func() error { return fn(ctx) })
	timer.Stop(status(err))
	return err
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return "rejected"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
