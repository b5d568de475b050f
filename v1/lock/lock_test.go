package lock

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/econnect/go-elmo/v1/guard"
	"github.com/econnect/go-elmo/v1/metrics"
)

var (
	_ Locker           = (*InMemory)(nil)
	_ Locker           = (*Redis)(nil)
	_ guard.LockHolder = (*Handle)(nil)
	_ guard.LockHolder = (*Mutex)(nil)
)

func TestInMemoryTryLockAcquireRelease(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	ok, err := l.TryLock(ctx, "k", "a", time.Second)
	if err != nil || !ok {
		t.Fatalf("trylock: %v ok %v", err, ok)
	}
	if ok, err := l.TryLock(ctx, "k", "a", time.Second); err != nil || ok {
		t.Fatalf("expected lock held, got ok %v err %v", ok, err)
	}
	if held, err := l.Held(ctx, "k", "a"); err != nil || !held {
		t.Fatalf("expected held, got %v err %v", held, err)
	}
	if err := l.Release(ctx, "k", "a"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if held, _ := l.Held(ctx, "k", "a"); held {
		t.Fatal("expected lock free after release")
	}
	if ok, err := l.TryLock(ctx, "k", "a", time.Second); err != nil || !ok {
		t.Fatalf("expected lock re-acquired, ok %v err %v", ok, err)
	}
}

func TestInMemoryOwnership(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	if ok, err := l.TryLock(ctx, "k", "a", 0); err != nil || !ok {
		t.Fatalf("trylock: %v ok %v", err, ok)
	}
	if held, err := l.Held(ctx, "k", "b"); err != nil || held {
		t.Fatalf("lock owned by a must not be held by b, got %v err %v", held, err)
	}
	if err := l.Release(ctx, "k", "b"); err != nil {
		t.Fatalf("release by non owner: %v", err)
	}
	if held, _ := l.Held(ctx, "k", "a"); !held {
		t.Fatal("release by non owner must not free the lock")
	}
	if ok, _ := l.TryLock(ctx, "k", "b", 0); ok {
		t.Fatal("b must not acquire a lock held by a")
	}
}

func TestInMemoryReleaseFreeKey(t *testing.T) {
	l := NewInMemory()
	if err := l.Release(context.Background(), "missing", "a"); err != nil {
		t.Fatalf("release of free key: %v", err)
	}
}

func TestInMemoryLocksHeldGauge(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	before := testutil.ToFloat64(metrics.LocksHeld)
	if ok, _ := l.TryLock(ctx, "gauge", "a", 0); !ok {
		t.Fatal("trylock failed")
	}
	if got := testutil.ToFloat64(metrics.LocksHeld); got != before+1 {
		t.Fatalf("expected gauge %v, got %v", before+1, got)
	}
	_ = l.Release(ctx, "gauge", "b")
	if got := testutil.ToFloat64(metrics.LocksHeld); got != before+1 {
		t.Fatalf("foreign release changed gauge to %v", got)
	}
	_ = l.Release(ctx, "gauge", "a")
	if got := testutil.ToFloat64(metrics.LocksHeld); got != before {
		t.Fatalf("expected gauge %v after release, got %v", before, got)
	}
}

func TestInMemoryAcquireTimeout(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	_, _ = l.TryLock(ctx, "k", "a", 0)

	cctx, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := l.Acquire(cctx, "k", "b", 0)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Fatal("acquire did not respect context timeout")
	}
}

func TestInMemoryAcquireWaitsForRelease(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	if ok, _ := l.TryLock(ctx, "k", "a", 0); !ok {
		t.Fatal("initial trylock failed")
	}
	done := make(chan error, 1)
	go func() { done <- l.Acquire(ctx, "k", "b", 0) }()

	time.Sleep(10 * time.Millisecond)
	if err := l.Release(ctx, "k", "a"); err != nil {
		t.Fatalf("release: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("acquire: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("acquire did not wake up on release")
	}
	if held, _ := l.Held(ctx, "k", "b"); !held {
		t.Fatal("expected b to hold the lock after acquire")
	}
}

func TestInMemoryLockTTLExpires(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	if ok, err := l.TryLock(ctx, "k", "a", 10*time.Millisecond); err != nil || !ok {
		t.Fatalf("trylock: %v ok %v", err, ok)
	}
	time.Sleep(30 * time.Millisecond)
	if held, _ := l.Held(ctx, "k", "a"); held {
		t.Fatal("lock should have expired")
	}
	if ok, err := l.TryLock(ctx, "k", "b", 0); err != nil || !ok {
		t.Fatalf("lock should expire, ok %v err %v", ok, err)
	}
}

func TestHandleLocked(t *testing.T) {
	ctx := context.Background()
	h := Bind(NewInMemory(), "alarm", 0)
	if h.Key() != "alarm" {
		t.Fatalf("unexpected key %q", h.Key())
	}
	if locked, err := h.Locked(ctx); err != nil || locked {
		t.Fatalf("expected free handle, got %v err %v", locked, err)
	}
	if err := h.Acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if locked, err := h.Locked(ctx); err != nil || !locked {
		t.Fatalf("expected held handle, got %v err %v", locked, err)
	}
	if ok, _ := h.TryAcquire(ctx); ok {
		t.Fatal("expected second acquisition to fail")
	}
	if err := h.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if locked, _ := h.Locked(ctx); locked {
		t.Fatal("expected free handle after release")
	}
}

func TestHandlesOnSharedLockerExcludeEachOther(t *testing.T) {
	ctx := context.Background()
	shared := NewInMemory()
	a := Bind(shared, "panel", 0)
	b := Bind(shared, "panel", 0)

	if err := a.Acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if locked, _ := b.Locked(ctx); locked {
		t.Fatal("b must not see a's lock as its own")
	}
	if err := b.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if locked, _ := a.Locked(ctx); !locked {
		t.Fatal("b released a's lock")
	}
	if ok, _ := b.TryAcquire(ctx); ok {
		t.Fatal("b acquired a lock held by a")
	}
}

func TestMutexLocked(t *testing.T) {
	var m Mutex
	ctx := context.Background()
	if locked, _ := m.Locked(ctx); locked {
		t.Fatal("new mutex should be free")
	}
	m.Lock()
	if locked, _ := m.Locked(ctx); !locked {
		t.Fatal("expected mutex held")
	}
	if m.TryLock() {
		t.Fatal("trylock on held mutex should fail")
	}
	m.Unlock()
	if locked, _ := m.Locked(ctx); locked {
		t.Fatal("probe must not leave the mutex held")
	}
}
