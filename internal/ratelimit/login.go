package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/johnwalle/pharma-stock-api/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyLoginAttempt = "login:attempt:%s"

const defaultLoginWindow = 15 * time.Minute

const defaultLoginLimit = 10

// LoginLimiter throttles credential checks per email within a fixed window.
// A nil limiter (redis not configured) allows everything.
type LoginLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLoginLimiter(cfg config.Config) *LoginLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})
	return &LoginLimiter{
		client: client,
		limit:  defaultLoginLimit,
		window: defaultLoginWindow,
	}
}

func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}

	key := fmt.Sprintf(keyLoginAttempt, strings.ToLower(strings.TrimSpace(email)))
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		// Redis being down must not lock operators out.
		return true, err
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}
	return count <= int64(l.limit), nil
}

// Reset clears the attempt counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) {
	if l == nil || l.client == nil {
		return
	}
	key := fmt.Sprintf(keyLoginAttempt, strings.ToLower(strings.TrimSpace(email)))
	l.client.Del(ctx, key)
}
