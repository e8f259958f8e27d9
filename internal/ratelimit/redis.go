package ratelimit

import (
	"context"
	"time"

	"voicerly_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript denies without incrementing once the ceiling is reached;
// otherwise it increments and starts the window expiry on the first hit.
// Returns {allowed, pttl}.
var fixedWindowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
  return {0, redis.call('PTTL', KEYS[1])}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {1, redis.call('PTTL', KEYS[1])}
`)

// RedisLimiter keeps counters in Redis so every instance shares them.
type RedisLimiter struct {
	rdb    redis.Scripter
	prefix string
	policy Policy
	log    *logger.Logger
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(rdb redis.Scripter, policy Policy, log *logger.Logger) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		prefix: "ratelimit:upload",
		policy: policy,
		log:    log,
	}
}

// CheckAndConsume implements Limiter. Redis failures fail open and are logged.
func (r *RedisLimiter) CheckAndConsume(ctx context.Context, clientKey string) Decision {
	key := r.prefix + ":" + clientKey

	res, err := fixedWindowScript.Run(ctx, r.rdb, []string{key}, r.policy.Limit, r.policy.Window.Milliseconds()).Int64Slice()
	if err != nil || len(res) != 2 {
		if err != nil {
			r.log.WithContext(ctx).Error("rate limit store unavailable", "error", err, "key", key)
		}
		return Decision{Allowed: true}
	}

	if res[0] == 1 {
		return Decision{Allowed: true}
	}

	retry := time.Duration(res[1]) * time.Millisecond
	if retry < 0 {
		retry = 0
	}
	return Decision{Allowed: false, RetryAfter: retry}
}

var _ Limiter = (*RedisLimiter)(nil)
