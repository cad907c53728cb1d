package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned by TryLock when another owner holds the key.
var ErrLockHeld = errors.New("lock is held by another owner")

// UnlockFunc releases a lock obtained from TryLock.
type UnlockFunc func(ctx context.Context) error

// Locker hands out non-blocking, expiring mutual exclusion on named keys.
type Locker interface {
	// TryLock acquires key for at most ttl. It returns ErrLockHeld without
	// waiting when the key is taken.
	TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
