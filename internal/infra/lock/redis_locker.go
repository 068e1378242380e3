// Package lock keeps two runs of the same scan from overlapping.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// UnlockFunc releases a held lock.
type UnlockFunc func(ctx context.Context) error

// releaseScript deletes the key only while it still carries our token, so a run
// that outlived its TTL cannot free a lock taken by the next run.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements SET NX PX locks shared by every replica.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker connects to redisURL and verifies the connection.
func NewRedisLocker(ctx context.Context, redisURL string) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisLockerWithClient(client), nil
}

// NewRedisLockerWithClient creates a locker from an existing Redis client
func NewRedisLockerWithClient(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, prefix: "scan-lock:"}
}

// TryLock attempts to take key for ttl. It never blocks waiting for the holder.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, bool, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", fullKey, err)
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", fullKey, err)
		}
		return nil
	}
	return unlock, true, nil
}

// Close closes the underlying client.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
