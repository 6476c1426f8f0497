package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks one State per open kiosk terminal. Nothing is persisted, so a
// restart forgets every terminal.
type Registry struct {
	mu        sync.RWMutex
	terminals map[string]*State
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{terminals: make(map[string]*State)}
}

// Open registers a new empty terminal session.
func (r *Registry) Open() (string, *State) {
	id := uuid.NewString()
	st := NewState()
	r.mu.Lock()
	r.terminals[id] = st
	r.mu.Unlock()
	return id, st
}

// Get looks up a terminal session.
func (r *Registry) Get(id string) (*State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.terminals[id]
	return st, ok
}

// Close forgets a terminal session.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	delete(r.terminals, id)
	r.mu.Unlock()
}

// Len returns the number of open terminals.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.terminals)
}
