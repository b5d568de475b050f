// Package client ties a session holder and a lock handle together into the
// client that guarded actions run against. Network access is delegated to a
// Transport supplied by the caller.
package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/econnect/go-elmo/v1/guard"
	"github.com/econnect/go-elmo/v1/lock"
	"github.com/econnect/go-elmo/v1/session"
)

const defaultLockKey = "elmo:client"

// Transport performs the remote calls of a client.
type Transport interface {
	Arm(ctx context.Context, sessionID string, sectors []int) error
	Disarm(ctx context.Context, sessionID string, sectors []int) error
	Query(ctx context.Context, sessionID string, kind string) ([]byte, error)
}

// Option configures a Client.
type Option func(*Client)

// WithLocker makes the client lock live on locker under key. A positive ttl
// bounds how long the lock is held without being released.
func WithLocker(locker lock.Locker, key string, ttl time.Duration) Option {
	return func(c *Client) {
		c.lock = lock.Bind(locker, key, ttl)
	}
}

// WithSession starts the client with an active session.
func WithSession(id string) Option {
	return func(c *Client) {
		c.session.Set(id)
	}
}

// Client is a session-scoped client whose state-changing calls require the
// client lock.
type Client struct {
	session   session.Holder
	lock      *lock.Handle
	transport Transport
}

// New returns a Client using transport. Without WithLocker the lock is a
// process-local in-memory lock.
func New(transport Transport, opts ...Option) *Client {
	c := &Client{transport: transport}
	for _, opt := range opts {
		opt(c)
	}
	if c.lock == nil {
		c.lock = lock.Bind(lock.NewInMemory(), defaultLockKey, 0)
	}
	return c
}

// SessionID returns the active session identifier.
func (c *Client) SessionID() string { return c.session.SessionID() }

// Locked reports whether the client lock is held.
func (c *Client) Locked(ctx context.Context) (bool, error) { return c.lock.Locked(ctx) }

// Authenticate sets the active session identifier.
func (c *Client) Authenticate(id string) { c.session.Set(id) }

// Logout drops the active session. The client lock is left untouched.
func (c *Client) Logout() { c.session.Clear() }

// Restore loads the session stored under name and makes it active.
func (c *Client) Restore(ctx context.Context, store session.Store, name string) error {
	id, err := store.Load(ctx, name)
	if err != nil {
		return err
	}
	c.session.Set(id)
	slog.Debug("elmo: session restored", "name", name)
	return nil
}

// Persist saves the active session under name.
func (c *Client) Persist(ctx context.Context, store session.Store, name string, ttl time.Duration) error {
	id := c.session.SessionID()
	if id == "" {
		return session.ErrNotFound
	}
	return store.Save(ctx, name, id, ttl)
}

// Lock acquires the client lock, waiting until ctx is done. It needs an
// active session.
func (c *Client) Lock(ctx context.Context) error {
	_, err := guard.RequireSession(func(ctx context.Context, c *Client) (struct{}, error) {
		return struct{}{}, c.lock.Acquire(ctx)
	})(ctx, c)
	return err
}

// Unlock releases the client lock.
func (c *Client) Unlock(ctx context.Context) error {
	return c.lock.Release(ctx)
}

// WithLock runs fn while holding the client lock and releases it afterwards.
func (c *Client) WithLock(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := c.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, c.Unlock(context.WithoutCancel(ctx)))
	}()
	return fn(ctx)
}

// Arm arms the given sectors. It needs an active session and the client lock.
func (c *Client) Arm(ctx context.Context, sectors ...int) error {
	return c.exclusive(ctx, func(ctx context.Context) error {
		return c.transport.Arm(ctx, c.SessionID(), sectors)
	})
}

// Disarm disarms the given sectors. It needs an active session and the client lock.
func (c *Client) Disarm(ctx context.Context, sectors ...int) error {
	return c.exclusive(ctx, func(ctx context.Context) error {
		return c.transport.Disarm(ctx, c.SessionID(), sectors)
	})
}

// Query fetches a read-only view of kind. It needs an active session only.
func (c *Client) Query(ctx context.Context, kind string) ([]byte, error) {
	return guard.RequireSession(func(ctx context.Context, c *Client) ([]byte, error) {
		return c.transport.Query(ctx, c.SessionID(), kind)
	})(ctx, c)
}

func (c *Client) exclusive(ctx context.Context, fn func(context.Context) error) error {
	_, err := guard.RequireSession(guard.RequireLock(func(ctx context.Context, _ *Client) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}))(ctx, c)
	return err
}
