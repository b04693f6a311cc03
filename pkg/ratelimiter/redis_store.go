package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript increments the window counter and sets its expiry on first hit.
// Returns {count, pttl}.
var takeScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore counts hits per fixed window in Redis.
type RedisStore struct {
	client redis.Scripter
	prefix string
	now    func() time.Time
}

// NewRedisStore stores counters under prefix+"ratelimit:"+key.
func NewRedisStore(client redis.Scripter, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix + "ratelimit:", now: time.Now}
}

func (rs *RedisStore) Take(ctx context.Context, key string, cfg Config) (Result, error) {
	vals, err := takeScript.Run(ctx, rs.client, []string{rs.prefix + key}, cfg.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(vals) != 2 {
		return Result{}, errors.Join(ErrStoreUnavailable, errors.New("unexpected script reply"))
	}

	count, ttl := int(vals[0]), time.Duration(vals[1])*time.Millisecond
	return Result{
		Allowed:   count <= cfg.Limit,
		Limit:     cfg.Limit,
		Remaining: max(0, cfg.Limit-count),
		ResetAt:   rs.now().Add(ttl),
	}, nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	client, ok := rs.client.(redis.Cmdable)
	if !ok {
		return errors.Join(ErrStoreUnavailable, errors.New("client cannot delete keys"))
	}
	if err := client.Del(ctx, rs.prefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
