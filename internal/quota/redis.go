package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "promptforge:quota:"

// authorizeScript compares and increments in one server-side step. The first
// increment of a window sets its expiry, which anchors the window at first
// use. Returns {allowed, used, pttl}.
var authorizeScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if used >= limit then
  return {0, used, redis.call('PTTL', KEYS[1])}
end
used = redis.call('INCR', KEYS[1])
if used == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {1, used, redis.call('PTTL', KEYS[1])}
`)

// RedisGuard shares quota state between replicas through Redis. Each
// identity is one counter key whose TTL is the remainder of its window.
type RedisGuard struct {
	rdb    redis.Cmdable
	window time.Duration
	now    func() time.Time
}

// NewRedisGuard returns a Redis-backed guard (DefaultWindow when d <= 0).
func NewRedisGuard(rdb redis.Cmdable, d time.Duration) *RedisGuard {
	if d <= 0 {
		d = DefaultWindow
	}
	return &RedisGuard{rdb: rdb, window: d, now: time.Now}
}

func (g *RedisGuard) key(identity string) string { return redisKeyPrefix + identity }

// ttl converts a PTTL reply into a duration, treating a missing or
// persistent key as a full window.
func (g *RedisGuard) ttl(ms int64) time.Duration {
	if ms < 0 {
		return g.window
	}
	return time.Duration(ms) * time.Millisecond
}

// Authorize implements Guard.
func (g *RedisGuard) Authorize(ctx context.Context, identity string, limit int) (Decision, error) {
	if limit <= 0 {
		return denyAll(limit, g.window), nil
	}
	res, err := authorizeScript.Run(ctx, g.rdb,
		[]string{g.key(identity)},
		limit, g.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("quota authorize: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("quota authorize: unexpected reply %v", res)
	}

	left := g.ttl(res[2])
	d := Decision{
		Allowed: res[0] == 1,
		Used:    int(res[1]),
		Limit:   limit,
		ResetAt: g.now().Add(left),
	}
	if !d.Allowed {
		d.RetryAfter = left
	}
	return d, nil
}

// Peek implements Guard.
func (g *RedisGuard) Peek(ctx context.Context, identity string, limit int) (Decision, error) {
	key := g.key(identity)
	pipe := g.rdb.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return Decision{}, fmt.Errorf("quota peek: %w", err)
	}

	used, err := getCmd.Int()
	if err == redis.Nil {
		return Decision{Allowed: limit > 0, Limit: limit}, nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("quota peek: %w", err)
	}

	left := g.window
	if ttl := ttlCmd.Val(); ttl > 0 {
		left = ttl
	}
	d := Decision{
		Allowed: used < limit,
		Used:    used,
		Limit:   limit,
		ResetAt: g.now().Add(left),
	}
	if !d.Allowed {
		d.RetryAfter = left
	}
	return d, nil
}
