package repository

import "context"

// LoginLimiter counts failed logins per key inside a fixed window.
type LoginLimiter interface {
	// Allow reports whether another attempt for key may proceed.
	Allow(ctx context.Context, key string) (bool, error)
	Failure(ctx context.Context, key string) error
	Success(ctx context.Context, key string) error
}
