package session

import (
	"sync"

	uuid "github.com/hashicorp/go-uuid"
)

// Holder stores the active session identifier of a client. The zero value has
// no active session.
type Holder struct {
	mu sync.RWMutex
	id string
}

// SessionID returns the active session identifier or "" when there is none.
func (h *Holder) SessionID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id
}

// Set replaces the active session identifier.
func (h *Holder) Set(id string) {
	h.mu.Lock()
	h.id = id
	h.mu.Unlock()
}

// Clear drops the active session.
func (h *Holder) Clear() {
	h.Set("")
}

// NewID returns a random opaque session identifier.
func NewID() (string, error) {
	return uuid.GenerateUUID()
}
