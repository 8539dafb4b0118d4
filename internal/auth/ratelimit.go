package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrLoginLocked is returned while a login is locked out.
	ErrLoginLocked = errors.New("too many failed login attempts")
	// ErrRateLimited is returned when a principal exceeds its publish quota.
	ErrRateLimited = errors.New("publish rate limit exceeded")
)

// RateLimitConfig holds rate limiting configuration. A zero limit disables
// the corresponding check.
type RateLimitConfig struct {
	LoginAttemptsLimit   int
	LoginLockoutDuration time.Duration
	PublishLimit         int
	PublishWindow        time.Duration
}

// RateLimiter implements fixed-window counters in Redis. A nil client, or a
// nil *RateLimiter, disables every check.
type RateLimiter struct {
	client *redis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a new RateLimiter with the given Redis client and configuration.
func NewRateLimiter(client *redis.Client, config RateLimitConfig) *RateLimiter {
	if config.LoginLockoutDuration <= 0 {
		config.LoginLockoutDuration = 15 * time.Minute
	}
	if config.PublishWindow <= 0 {
		config.PublishWindow = time.Hour
	}
	return &RateLimiter{client: client, config: config}
}

// PublishWindow is the length of the publish throttling window.
func (rl *RateLimiter) PublishWindow() time.Duration {
	if rl == nil {
		return 0
	}
	return rl.config.PublishWindow
}

// CheckLogin returns ErrLoginLocked once login has accumulated the
// configured number of failures.
func (rl *RateLimiter) CheckLogin(ctx context.Context, login string) error {
	if rl == nil || rl.client == nil || rl.config.LoginAttemptsLimit <= 0 {
		return nil
	}

	count, err := rl.client.Get(ctx, loginKey(login)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("check login rate limit: %w", err)
	}
	if int(count) >= rl.config.LoginAttemptsLimit {
		return ErrLoginLocked
	}
	return nil
}

// RecordFailedLogin increments the failure counter for login.
func (rl *RateLimiter) RecordFailedLogin(ctx context.Context, login string) error {
	if rl == nil || rl.client == nil {
		return nil
	}

	key := loginKey(login)
	pipe := rl.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.LoginLockoutDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record failed login: %w", err)
	}
	return nil
}

// ClearFailedLogins resets the failure counter for login.
func (rl *RateLimiter) ClearFailedLogins(ctx context.Context, login string) error {
	if rl == nil || rl.client == nil {
		return nil
	}
	return rl.client.Del(ctx, loginKey(login)).Err()
}

// AllowPublish counts one publish for principal and returns ErrRateLimited
// when the window's quota is already used up.
func (rl *RateLimiter) AllowPublish(ctx context.Context, principal string) error {
	if rl == nil || rl.client == nil || rl.config.PublishLimit <= 0 {
		return nil
	}

	key := "ratelimit:publish:" + principal
	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check publish rate limit: %w", err)
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, key, rl.config.PublishWindow).Err(); err != nil {
			return fmt.Errorf("check publish rate limit: %w", err)
		}
	}
	if count > int64(rl.config.PublishLimit) {
		return ErrRateLimited
	}
	return nil
}

func loginKey(login string) string {
	return "ratelimit:login:" + login
}
