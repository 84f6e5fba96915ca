// api/cache/backend.go
package cache

import (
	"context"
	"time"
)

// Backend is the key-value surface the gateway consumes. Two implementations
// exist: an in-process map valid only for single-instance deployments, and a
// shared Redis store required once more than one process serves traffic.
type Backend interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetEx stores value under key with the given TTL.
	SetEx(ctx context.Context, key string, ttl time.Duration, value string) error
	// Keys returns every live key matching a redis-style glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Del removes the given keys. Missing keys are not an error.
	Del(ctx context.Context, keys ...string) error
}
