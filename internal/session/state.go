package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
)

// ErrEmptyName is returned when an identity is set without a display name.
var ErrEmptyName = errors.New("session: display name required")

// State is the identity and role of one kiosk terminal. It is created empty and
// lives only as long as the process; every operation is a synchronous in-memory write.
type State struct {
	mu         sync.RWMutex
	current    models.Session
	generation uint64
}

// NewState returns an empty citizen session.
func NewState() *State {
	return &State{current: models.Session{Role: models.RoleCitizen}}
}

// SetIdentity establishes a citizen session and drops any administrator role.
func (s *State) SetIdentity(name, contactNumber string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = models.Session{DisplayName: name, ContactNumber: contactNumber, Role: models.RoleCitizen}
	s.generation++
	return nil
}

// Elevate grants the administrator role without touching name or contact.
func (s *State) Elevate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Role == models.RoleAdministrator {
		return
	}
	s.current.Role = models.RoleAdministrator
	s.generation++
}

// Clear resets the terminal to the empty citizen state.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = models.Session{Role: models.RoleCitizen}
	s.generation++
}

// Snapshot returns a copy of the current session.
func (s *State) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Generation changes whenever identity or role changes. Views bound to a session
// compare it to detect that they were mounted for a different caller.
func (s *State) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}
