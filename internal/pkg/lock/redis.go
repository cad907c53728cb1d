package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "lock:"

// compare-and-delete so an owner never releases a lease it no longer holds
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares locks between every replica pointed at the same Redis.
type RedisLocker struct {
	rdb *goredis.Client
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("Redis connected", "addr", addr)
	return rdb, nil
}

func NewRedisLocker(rdb *goredis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error) {
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %q: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.rdb, []string{keyPrefix + key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %q: %w", key, err)
		}
		return nil
	}, nil
}
