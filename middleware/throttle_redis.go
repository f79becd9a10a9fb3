package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript keeps one sorted-set member per admitted request, scored
// by its admission time in milliseconds. Returns {allowed, remaining, retry_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	redis.call('PEXPIRE', key, window)
	return {1, limit - count - 1, 0}
end

local retry = window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
	retry = tonumber(oldest[2]) + window - now
end
return {0, 0, retry}
`)

// RedisThrottleStore shares sliding windows between processes through Redis
type RedisThrottleStore struct {
	client redis.Scripter
	clock  clockwork.Clock
	prefix string
}

// NewRedisThrottleStore creates a Redis backed store
func NewRedisThrottleStore(client redis.Scripter, clock clockwork.Clock) *RedisThrottleStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RedisThrottleStore{client: client, clock: clock, prefix: "weather-api:throttle:"}
}

// Allow implements ThrottleStore. Redis errors fail open.
func (s *RedisThrottleStore) Allow(ctx context.Context, key string, config ThrottleConfig) (Decision, error) {
	now := s.clock.Now().UnixMilli()

	res, err := slidingWindowScript.Run(ctx, s.client, []string{s.prefix + key},
		now, config.Window.Milliseconds(), config.MaxRequests, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Decision{Allowed: true, Remaining: config.MaxRequests}, err
	}

	return Decision{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}
