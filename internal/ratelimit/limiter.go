// Package ratelimit provides the request limiters used by the HTTP surface
// and the paced dispatcher used for external AI calls. All state lives in
// explicitly constructed values; there are no package-level counters.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// FixedWindow counts requests per identifier in fixed windows. The first
// request of an identifier opens a window; once Limit requests were allowed,
// further requests are refused until the window ends. Counters live in an
// in-memory store whose cleaner sweeps expired windows once per period.
type FixedWindow struct {
	limiter *limiter.Limiter
}

// NewFixedWindow allows limit requests per identifier every period.
func NewFixedWindow(limit int, period time.Duration) *FixedWindow {
	if limit < 1 {
		limit = 1
	}
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "stmtcat",
		CleanUpInterval: period,
	})
	return &FixedWindow{
		limiter: limiter.New(store, limiter.Rate{Period: period, Limit: int64(limit)}),
	}
}

// NewAPILimiter allows 10 API requests per minute per client.
func NewAPILimiter() *FixedWindow {
	return NewFixedWindow(10, time.Minute)
}

// NewUploadLimiter allows 5 uploads per minute per client.
func NewUploadLimiter() *FixedWindow {
	return NewFixedWindow(5, time.Minute)
}

// Allow records a request from id and reports whether it may proceed.
func (l *FixedWindow) Allow(ctx context.Context, id string) (Decision, error) {
	state, err := l.limiter.Get(ctx, id)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit lookup for %s: %w", id, err)
	}
	return Decision{
		Allowed:   !state.Reached,
		Limit:     int(state.Limit),
		Remaining: int(state.Remaining),
		ResetAt:   time.Unix(state.Reset, 0),
	}, nil
}
