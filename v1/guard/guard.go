package guard

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	elmoerrors "github.com/econnect/go-elmo/v1/errors"
	"github.com/econnect/go-elmo/v1/metrics"
)

const (
	sessionGuard = "session"
	lockGuard    = "lock"
)

// SessionHolder exposes the session identifier of a client. An empty string
// means no session is active.
type SessionHolder interface {
	SessionID() string
}

// LockHolder reports whether the client lock is currently held. Locked must
// not block waiting for the lock.
type LockHolder interface {
	Locked(ctx context.Context) (bool, error)
}

// RequireSession wraps fn so that it only runs when c has an active session.
func RequireSession[C SessionHolder, R any](fn func(context.Context, C) (R, error)) func(context.Context, C) (R, error) {
	return func(ctx context.Context, c C) (R, error) {
		if c.SessionID() == "" {
			var zero R
			return zero, deny(ctx, sessionGuard, elmoerrors.ErrPermissionDenied)
		}
		metrics.GuardChecks.WithLabelValues(sessionGuard, metrics.ResultAllowed).Inc()
		return fn(ctx, c)
	}
}

// RequireLock wraps fn so that it only runs while the lock of c is held.
// Errors reported by the lock query are returned unchanged.
func RequireLock[C LockHolder, R any](fn func(context.Context, C) (R, error)) func(context.Context, C) (R, error) {
	return func(ctx context.Context, c C) (R, error) {
		var zero R
		held, err := c.Locked(ctx)
		if err != nil {
			metrics.GuardChecks.WithLabelValues(lockGuard, metrics.ResultError).Inc()
			slog.Warn("elmo: lock state query failed", "error", err)
			return zero, err
		}
		if !held {
			return zero, deny(ctx, lockGuard, elmoerrors.ErrLockNotAcquired)
		}
		metrics.GuardChecks.WithLabelValues(lockGuard, metrics.ResultAllowed).Inc()
		return fn(ctx, c)
	}
}

// MutexLocked reports whether mu is held by someone. A successful probe means
// the mutex was free, so it is released before returning.
func MutexLocked(mu *sync.Mutex) bool {
	if mu.TryLock() {
		mu.Unlock()
		return false
	}
	return true
}

func deny(ctx context.Context, name string, err error) error {
	metrics.GuardChecks.WithLabelValues(name, metrics.ResultDenied).Inc()
	trace.SpanFromContext(ctx).AddEvent("elmo.guard.denied", trace.WithAttributes(
		attribute.String("elmo.guard", name),
		attribute.String("elmo.guard.error", err.Error()),
	))
	slog.Debug("elmo: guard rejected action", "guard", name, "error", err)
	return err
}
