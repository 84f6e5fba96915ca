// api/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	logger "github.com/fintrack-app/api/logging"
)

// Store counts requests per key in fixed windows. Incr starts a new window
// at count=1 when none exists or the previous one has lapsed; otherwise it
// increments the current window, leaving resetAt unchanged.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Result is the outcome of one budget check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter applies fixed-window budgets against a Store.
//
// Fixed windows admit a known burst: a client straddling a window boundary
// can fit up to ~2x the nominal rate into a short interval. That is accepted
// for this layer, not worked around.
type Limiter struct {
	store Store
}

func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// Check records one request against the class budget for the given subject
// (user ID or client IP) and reports whether it is within bounds. A store
// failure fails open: the request is allowed and the incident logged.
func (l *Limiter) Check(ctx context.Context, subject string, class Class) Result {
	key := fmt.Sprintf("ratelimit:%s:%s", class.Name, subject)
	count, resetAt, err := l.store.Incr(ctx, key, class.Window)
	if err != nil {
		logger.Warn("Rate limit store unavailable, failing open",
			zap.String("key", key), zap.Error(err))
		return Result{Allowed: true, Limit: class.Limit, Remaining: class.Limit, ResetAt: time.Now().Add(class.Window)}
	}

	remaining := class.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	result := Result{
		Allowed:   count <= int64(class.Limit),
		Limit:     class.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		logger.Warn("Rate limit exceeded",
			zap.String("class", class.Name),
			zap.String("subject", subject),
			zap.Int64("count", count),
			zap.Int("limit", class.Limit))
	}
	return result
}
