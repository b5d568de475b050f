package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var delScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

const defaultRetryInterval = 50 * time.Millisecond

// RedisOptions configures a Redis locker.
type RedisOptions struct {
	// Prefix is prepended to every lock key.
	Prefix string
	// RetryInterval is the polling interval used by Acquire.
	RetryInterval time.Duration
}

// Redis implements Locker using a Redis backend. The owner token is stored as
// the key value, so ownership survives across processes sharing the server.
type Redis struct {
	client *redis.Client
	opts   RedisOptions
}

// NewRedis returns a new Redis locker using the provided client. opts may be nil.
func NewRedis(client *redis.Client, opts *RedisOptions) *Redis {
	r := &Redis{client: client}
	if opts != nil {
		r.opts = *opts
	}
	if r.opts.RetryInterval <= 0 {
		r.opts.RetryInterval = defaultRetryInterval
	}
	return r
}

func (r *Redis) redisKey(key string) string {
	return r.opts.Prefix + key
}

// TryLock attempts to obtain the lock without waiting.
func (r *Redis) TryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.redisKey(key), owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lock: setnx %s: %w", key, err)
	}
	return ok, nil
}

// Acquire blocks until the lock is obtained or the context is cancelled.
func (r *Redis) Acquire(ctx context.Context, key, owner string, ttl time.Duration) error {
	ticker := time.NewTicker(r.opts.RetryInterval)
	defer ticker.Stop()
	for {
		ok, err := r.TryLock(ctx, key, owner, ttl)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Release frees the lock for key if owner holds it.
func (r *Redis) Release(ctx context.Context, key, owner string) error {
	_, err := delScript.Run(ctx, r.client, []string{r.redisKey(key)}, owner).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("lock: release %s: %w", key, err)
	}
	return nil
}

// Held reports whether owner still holds the lock for key. A lock that expired
// or was taken over by another owner is not held.
func (r *Redis) Held(ctx context.Context, key, owner string) (bool, error) {
	cur, err := r.client.Get(ctx, r.redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock: get %s: %w", key, err)
	}
	return cur == owner, nil
}
