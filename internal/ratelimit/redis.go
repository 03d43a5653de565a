package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript mirrors MemoryStore: a rejected hit does not increment, and the
// window starts on the first admitted hit. Returns {allowed, count, pttl}.
var hitScript = redis.NewScript(`
local limit = tonumber(ARGV[2])
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= limit and current > 0 then
  return {0, current, redis.call('PTTL', KEYS[1])}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {1, current, ttl}
`)

// RedisStore shares buckets between processes through redis. Window expiry is
// delegated to key TTLs.
type RedisStore struct {
	client redis.Scripter
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a store using keys under "ratelimit:".
func NewRedisStore(client redis.Scripter) *RedisStore {
	if client == nil {
		panic("ratelimit: redis client required")
	}
	return &RedisStore{client: client, prefix: "ratelimit:", now: time.Now}
}

// Hit implements Store.
func (s *RedisStore) Hit(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	windowMs := window.Milliseconds()
	if windowMs <= 0 {
		windowMs = 1
	}
	res, err := hitScript.Run(ctx, s.client, []string{s.prefix + key}, windowMs, limit).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis hit: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script reply %v", res)
	}

	allowed, count, ttl := res[0] == 1, int(res[1]), res[2]
	resetAt := s.now().Add(time.Duration(ttl) * time.Millisecond)
	if !allowed {
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	return Decision{Allowed: true, Remaining: remaining(limit, count), ResetAt: resetAt}, nil
}
