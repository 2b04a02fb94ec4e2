package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the lock key only if it still holds our token, so
// a lock that expired and was re-acquired by another holder is not released
// by mistake.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker implements ItemLocker using Redis SET NX with a TTL.
// This is suitable for distributed deployments where multiple instances
// must agree on who holds an item's reconciliation lock.
type RedisLocker struct {
	client         *redis.Client
	ttl            time.Duration
	retryInterval  time.Duration
	acquireTimeout time.Duration
	logger         *zap.Logger
}

// NewRedisLocker creates a new Redis-backed locker
func NewRedisLocker(client *redis.Client, ttl, retryInterval, acquireTimeout time.Duration, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		client:         client,
		ttl:            ttl,
		retryInterval:  retryInterval,
		acquireTimeout: acquireTimeout,
		logger:         logger,
	}
}

// Acquire polls SET NX until the lock is held, the acquire timeout elapses,
// or the context is done. The returned function releases the lock.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.acquireTimeout)
	defer cancel()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out acquiring lock %s: %w", key, ctx.Err())
		case <-time.After(l.retryInterval):
		}
	}
}

// release is best-effort: an expired lock is already gone and a failed
// delete only delays other waiters until the TTL fires.
func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
		l.logger.Warn("Failed to release lock",
			zap.String("key", key),
			zap.Error(err))
	}
}
