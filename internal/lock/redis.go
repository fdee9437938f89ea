package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker grants exclusive, expiring ownership of a key. A zero ttl means the
// lock is held until Unlock.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Refresh extends a held lock to ttl from now. It reports false when the
	// key has already expired or was never taken.
	Refresh(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Close() error
}

type RedisLock struct {
	client *redis.Client
	prefix string
}

func NewRedisLock(ctx context.Context, redisAddr string) (*RedisLock, error) {
	const op = "lock.NewRedisLock"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisLock{client: client, prefix: "class-panel:lock:"}, nil
}

func (r *RedisLock) key(key string) string {
	return r.prefix + key
}

func (r *RedisLock) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	const op = "lock.RedisLock.Lock"

	ok, err := r.client.SetNX(ctx, r.key(key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

func (r *RedisLock) Refresh(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	const op = "lock.RedisLock.Refresh"

	ok, err := r.client.SetXX(ctx, r.key(key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

func (r *RedisLock) Unlock(ctx context.Context, key string) error {
	const op = "lock.RedisLock.Unlock"

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisLock) Close() error {
	return r.client.Close()
}
