// Package lock provides try-locks keyed by string. A failed acquisition returns
// ErrLocked immediately; callers never wait.
package lock

import (
	"context"
	"errors"
	"sync"
)

var ErrLocked = errors.New("lock is held")

// Release gives the lock back. It is safe to call more than once.
type Release func(ctx context.Context) error

type Locker interface {
	TryLock(ctx context.Context, key string) (Release, error)
}

// KeyedLocker is an in-process Locker for single-instance deployments and tests.
type KeyedLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{held: make(map[string]struct{})}
}

func (l *KeyedLocker) TryLock(_ context.Context, key string) (Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, ErrLocked
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
