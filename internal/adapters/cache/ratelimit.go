package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindow increments the counter and starts its expiry on the first hit of a window.
var fixedWindow = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return current
`)

// KeyPrefix namespaces rate-limit counters.
const KeyPrefix = "moodadmin:ratelimit:"

// RedisLimiter is a fixed-window limiter whose counters live in Redis,
// so every instance behind a load balancer shares them.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewClient connects to the Redis instance at url (redis://[:password@]host:port/db).
// POST: the server answered PING
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisLimiter allows limit requests per window per key.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow counts a request against key.
// POST: the limit+1th request in a window is refused; Redis errors allow the request
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	n, err := fixedWindow.Run(ctx, l.client, []string{KeyPrefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		slog.Warn("rate_limit_backend_error", "backend", "redis", "error", err)
		return true
	}
	return n <= int64(l.limit)
}
