package lock

import (
	"context"
	"sync"

	"github.com/econnect/go-elmo/v1/guard"
)

// Mutex is an in-process lock whose hold status can be queried without
// blocking.
type Mutex struct {
	mu sync.Mutex
}

func (m *Mutex) Lock()         { m.mu.Lock() }
func (m *Mutex) Unlock()       { m.mu.Unlock() }
func (m *Mutex) TryLock() bool { return m.mu.TryLock() }

// Locked reports whether the mutex is held. When the probe succeeds the mutex
// was free and is released again, so Locked never waits.
func (m *Mutex) Locked(context.Context) (bool, error) {
	return guard.MutexLocked(&m.mu), nil
}
