// Package lock provides the locks a client holds while it performs guarded
// actions. Keyed lockers come with in-memory and Redis implementations and can
// be bound to a single key with Bind; Mutex covers the single-process case.
// Locks can have an optional TTL to avoid deadlocks.
package lock
