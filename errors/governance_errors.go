// api/errors/governance_errors.go
package errors

import "errors"

var (
	ErrMissingToken  = errors.New("authorization token missing")
	ErrInvalidToken  = errors.New("authorization token invalid")
	ErrExpiredToken  = errors.New("authorization token expired")
	ErrIdentityLoad  = errors.New("failed to load identity")
	ErrUserNotFound  = errors.New("user not found")
	ErrPermission    = errors.New("permission denied")
	ErrNotOwner      = errors.New("resource owned by another user")
	ErrQuotaExceeded = errors.New("plan quota exceeded")
	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrCacheBackend  = errors.New("cache backend unavailable")
)
