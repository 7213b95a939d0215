// Package lock provides a Redis-backed mutex scoped by key.
package lock

import (
	"context"
	"time"

	"parknet-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Release deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

// RedisLocker acquires a key with SET NX and a TTL, retrying until Wait elapses.
type RedisLocker struct {
	Client *redis.Client
	TTL    time.Duration
	Wait   time.Duration
	Retry  time.Duration
}

func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{Client: client, TTL: ttl, Wait: wait, Retry: 50 * time.Millisecond}
}

// Acquire blocks until the lock is held, ctx is done, or Wait elapses. A timeout
// returns domain.ErrLockTimeout. The returned unlock func is safe to call once.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.Wait)
	backoff := l.Retry
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}
	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if !time.Now().Before(deadline) {
			return nil, domain.ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < time.Second {
			backoff *= 2
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.Client, []string{key}, token).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("lock release failed")
	}
}
