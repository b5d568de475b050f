package lock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/econnect/go-elmo/v1/metrics"
)

type lockState struct {
	owner  string
	timer  *time.Timer
	notify chan struct{}
}

// InMemory implements Locker using local memory.
type InMemory struct {
	mu    sync.Mutex
	locks map[string]*lockState
}

// NewInMemory returns a new in-memory locker.
func NewInMemory() *InMemory {
	return &InMemory{locks: make(map[string]*lockState)}
}

// TryLock attempts to obtain the lock without waiting. It returns true on success.
func (l *InMemory) TryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.locks[key]; ok {
		return false, nil
	}
	st := &lockState{owner: owner, notify: make(chan struct{})}
	if ttl > 0 {
		st.timer = time.AfterFunc(ttl, func() {
			l.expire(key, st)
		})
	}
	l.locks[key] = st
	metrics.LocksHeld.Inc()
	return true, nil
}

// Acquire blocks until the lock is obtained or the context is cancelled.
func (l *InMemory) Acquire(ctx context.Context, key, owner string, ttl time.Duration) error {
	for {
		ok, err := l.TryLock(ctx, key, owner, ttl)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		l.mu.Lock()
		st, held := l.locks[key]
		l.mu.Unlock()
		if !held {
			continue
		}
		select {
		case <-st.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Release frees the lock for key if owner holds it. Releasing a free key or a
// key held by someone else is a no-op.
func (l *InMemory) Release(_ context.Context, key, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.locks[key]; ok && st.owner == owner {
		l.drop(key, st)
	}
	return nil
}

// Held reports whether owner currently holds key.
func (l *InMemory) Held(ctx context.Context, key, owner string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.Lock()
	st, ok := l.locks[key]
	l.mu.Unlock()
	return ok && st.owner == owner, nil
}

func (l *InMemory) expire(key string, st *lockState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	// the key may have been released and locked again since the timer fired
	if cur, ok := l.locks[key]; ok && cur == st {
		slog.Debug("elmo: lock expired", "key", key)
		l.drop(key, st)
	}
}

// drop must be called with l.mu held.
func (l *InMemory) drop(key string, st *lockState) {
	if st.timer != nil {
		st.timer.Stop()
	}
	close(st.notify)
	delete(l.locks, key)
	metrics.LocksHeld.Dec()
}
