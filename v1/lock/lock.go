package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Locker is a keyed lock backend. Every lock is taken on behalf of an owner
// token; only that owner sees the lock as held and only that owner can
// release it.
type Locker interface {
	// TryLock attempts to obtain the lock for owner without waiting.
	TryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	// Acquire blocks until the lock is obtained or the context is cancelled.
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) error
	// Release frees the lock for key if owner holds it.
	Release(ctx context.Context, key, owner string) error
	// Held reports whether owner currently holds the lock for key.
	Held(ctx context.Context, key, owner string) (bool, error)
}

// Handle binds a Locker to a single key and a private owner token.
type Handle struct {
	locker Locker
	key    string
	owner  string
	ttl    time.Duration
}

// Bind returns a Handle for key on locker. Each Handle owns its locks, so two
// handles bound to the same key exclude each other. A positive ttl is applied
// on every acquisition.
func Bind(locker Locker, key string, ttl time.Duration) *Handle {
	return &Handle{locker: locker, key: key, owner: uuid.NewString(), ttl: ttl}
}

// Key returns the bound key.
func (h *Handle) Key() string { return h.key }

// Acquire blocks until the bound lock is obtained or ctx is done.
func (h *Handle) Acquire(ctx context.Context) error {
	return h.locker.Acquire(ctx, h.key, h.owner, h.ttl)
}

// TryAcquire attempts to obtain the bound lock without waiting.
func (h *Handle) TryAcquire(ctx context.Context) (bool, error) {
	return h.locker.TryLock(ctx, h.key, h.owner, h.ttl)
}

// Release frees the bound lock. It is a no-op when the handle does not hold it.
func (h *Handle) Release(ctx context.Context) error {
	return h.locker.Release(ctx, h.key, h.owner)
}

// Locked reports whether this handle holds the bound lock. It never waits for
// the lock.
func (h *Handle) Locked(ctx context.Context) (bool, error) {
	return h.locker.Held(ctx, h.key, h.owner)
}
