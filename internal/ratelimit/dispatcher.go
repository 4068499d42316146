package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Dispatcher runs calls one at a time with a fixed minimum delay between
// dispatches. Concurrent callers share the same pacing budget.
type Dispatcher struct {
	limiter *rate.Limiter
	slot    chan struct{}
}

// NewDispatcher paces calls to requestsPerMinute. A non-positive value
// disables pacing but keeps calls serialized.
func NewDispatcher(requestsPerMinute int) *Dispatcher {
	if requestsPerMinute <= 0 {
		return NewDispatcherWithInterval(0)
	}
	return NewDispatcherWithInterval(time.Minute / time.Duration(requestsPerMinute))
}

// NewDispatcherWithInterval spaces dispatches at least interval apart.
func NewDispatcherWithInterval(interval time.Duration) *Dispatcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Dispatcher{
		limiter: rate.NewLimiter(limit, 1),
		slot:    make(chan struct{}, 1),
	}
}

// Interval returns the minimum spacing between dispatches.
func (d *Dispatcher) Interval() time.Duration {
	if d.limiter.Limit() == rate.Inf {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(d.limiter.Limit()))
}

// Do waits for the caller's turn, then runs fn. It returns ctx's error if
// the context ends while waiting; fn is then not called.
func (d *Dispatcher) Do(ctx context.Context, fn func(context.Context) error) error {
	select {
	case d.slot <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("dispatch canceled: %w", ctx.Err())
	}
	defer func() { <-d.slot }()

	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("dispatch canceled: %w", err)
	}
	return fn(ctx)
}
