package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrExpireScript increments the window counter and starts the window on
// the first hit, atomically.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimiter is a fixed-window request counter.
// Key format: rl:<key>
type RateLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, max int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, max: max, window: window}
}

// Allow counts one hit for key and reports whether it is within the limit,
// along with the time until the window resets.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := "rl:" + key
	count, err := incrExpireScript.Run(ctx, l.client, []string{k}, l.window.Milliseconds()).Int64()
	if err != nil {
		return true, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return count <= int64(l.max), ttl, nil
}
