// Package limiter implements the optional Redis-backed login throttle. It
// keeps one fixed-window counter per identifier: the first attempt of a
// window starts the cooldown TTL, and attempts beyond the configured budget
// are rejected until the window expires.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avetrov/go-idm-core/internal/config"
	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/redis/go-redis/v9"
)

var (
	ErrRateLimited      = errors.New("too many attempts")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const (
	defaultMaxLoginAttempts = 10
	defaultLoginCooldown    = 15 * time.Minute
)

// LoginLimiter throttles login attempts per identifier using Redis counters.
type LoginLimiter struct {
	redis redis.UniversalClient

	maxAttempts int
	cooldown    time.Duration

	logger *logger.Logger
}

// New creates a [LoginLimiter] backed by the given Redis client. Zero
// configuration values select the built-in defaults.
func New(redisClient redis.UniversalClient, cfg config.Limiter, log *logger.Logger) *LoginLimiter {
	maxAttempts := cfg.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxLoginAttempts
	}
	cooldown := cfg.LoginCooldown
	if cooldown <= 0 {
		cooldown = defaultLoginCooldown
	}

	return &LoginLimiter{
		redis:       redisClient,
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
		logger:      log,
	}
}

// Connect opens a Redis client for cfg.RedisAddress and verifies the
// connection with a ping.
func Connect(ctx context.Context, cfg config.Limiter) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return client, nil
}

// Allow records one login attempt for the identifier and reports whether it
// is within the window's budget. Counting before the credential check means
// a flooded identifier is rejected without touching the database.
//
// A Redis outage fails open: attempts are allowed so an unreachable throttle
// never locks every account out.
func (l *LoginLimiter) Allow(ctx context.Context, identifier string) error {
	count, err := l.incrementWithTTL(ctx, loginKey(identifier))
	if err != nil {
		l.logger.Warn().Err(err).Msg("login throttle unavailable, allowing attempt")
		return nil
	}

	if count > int64(l.maxAttempts) {
		return ErrRateLimited
	}

	return nil
}

// Reset clears the attempt counter for the identifier. Called after a
// successful password change so the owner is not locked out by an attacker's
// failed attempts.
func (l *LoginLimiter) Reset(ctx context.Context, identifier string) error {
	if err := l.redis.Del(ctx, loginKey(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

func (l *LoginLimiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// fixed-window semantics: only the first hit of a window starts the TTL
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.cooldown).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func loginKey(identifier string) string {
	return "idm:login:" + identifier
}
