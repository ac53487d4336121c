package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/tasktracker/repository"
)

type loginLimiter struct {
	client   redislib.Cmdable
	prefix   string
	window   time.Duration
	maxFails int
}

// NewLoginLimiter creates a Redis-backed fixed-window counter of failed logins.
func NewLoginLimiter(client redislib.Cmdable, maxFails int, window time.Duration) repository.LoginLimiter {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &loginLimiter{
		client:   client,
		prefix:   "login:failures:",
		window:   window,
		maxFails: maxFails,
	}
}

func (l *loginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.maxFails <= 0 {
		return true, nil
	}
	result, err := l.client.Get(ctx, l.key(key)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return true, nil
		}
		return false, err
	}
	fails, err := strconv.Atoi(result)
	if err != nil {
		return true, nil
	}
	return fails < l.maxFails, nil
}

func (l *loginLimiter) Failure(ctx context.Context, key string) error {
	if l.maxFails <= 0 {
		return nil
	}
	k := l.key(key)
	fails, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return err
	}
	// The window starts at the first failure and is not extended by later
	// ones. A counter left without a TTL gets one on its next failure.
	if fails == 1 || l.client.TTL(ctx, k).Val() < 0 {
		return l.client.Expire(ctx, k, l.window).Err()
	}
	return nil
}

func (l *loginLimiter) Success(ctx context.Context, key string) error {
	if l.maxFails <= 0 {
		return nil
	}
	return l.client.Del(ctx, l.key(key)).Err()
}

func (l *loginLimiter) key(id string) string {
	return fmt.Sprintf("%s%s", l.prefix, id)
}
