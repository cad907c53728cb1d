package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker serializes owners inside one process.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held:  make(map[string]time.Time),
		clock: time.Now,
	}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if expiresAt, ok := l.held[key]; ok && now.Before(expiresAt) {
		return nil, ErrLockHeld
	}

	expiresAt := now.Add(ttl)
	l.held[key] = expiresAt

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			// an expired lease may already belong to someone else
			if l.held[key].Equal(expiresAt) {
				delete(l.held, key)
			}
		})
		return nil
	}, nil
}
