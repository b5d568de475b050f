package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when no session is stored under a name.
var ErrNotFound = errors.New("elmo: session not found")

// Store persists session identifiers by name.
type Store interface {
	Save(ctx context.Context, name, id string, ttl time.Duration) error
	Load(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, name string) error
}

type memoryEntry struct {
	id        string
	expiresAt time.Time
}

// MemoryStore is a Store kept in local memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Save stores id under name. A non-positive ttl never expires.
func (s *MemoryStore) Save(_ context.Context, name, id string, ttl time.Duration) error {
	e := memoryEntry{id: id}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[name] = e
	s.mu.Unlock()
	return nil
}

// Load returns the identifier stored under name.
func (s *MemoryStore) Load(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok {
		return "", ErrNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, name)
		return "", ErrNotFound
	}
	return e.id, nil
}

// Delete removes name from the store.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	delete(s.entries, name)
	s.mu.Unlock()
	return nil
}
