package access

import (
	"sync"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
)

// Navigation targets used by denials.
const (
	TargetLogin = "login"
	TargetKiosk = "kiosk"
)

// AdminRequiredMessage is shown once when a non-administrator opens the console.
const AdminRequiredMessage = "관리자 권한이 필요합니다."

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed bool
	// Redirect is the navigation target when denied.
	Redirect string
	// Warning is set only when the caller should see a blocking alert.
	Warning string
}

// Allow is the permitting decision.
var Allow = Decision{Allowed: true}

// Evaluate gates identity-requiring views. Role is irrelevant here.
func Evaluate(s models.Session) Decision {
	if s.DisplayName != "" {
		return Allow
	}
	return Decision{Redirect: TargetLogin}
}

// ConsoleGate is the admin console's own role check. It does not consult Evaluate:
// the console is reachable without a signed-in identity but stays empty unless the
// session holds the administrator role. A gate belongs to one mount of the console;
// only its first denial carries the warning.
type ConsoleGate struct {
	once sync.Once
}

// NewConsoleGate returns a gate for a freshly mounted console.
func NewConsoleGate() *ConsoleGate {
	return &ConsoleGate{}
}

// Check decides whether the console may render for s.
func (g *ConsoleGate) Check(s models.Session) Decision {
	if s.IsAdministrator() {
		return Allow
	}
	d := Decision{Redirect: TargetKiosk}
	g.once.Do(func() {
		d.Warning = AdminRequiredMessage
	})
	return d
}

type gateMount struct {
	generation uint64
	gate       *ConsoleGate
}

// Gates holds one ConsoleGate per kiosk session. A gate lives as long as the identity
// it was mounted for: once the session's generation moves on, the next lookup mounts
// a fresh gate.
type Gates struct {
	mu     sync.Mutex
	mounts map[string]gateMount
}

// NewGates returns an empty gate registry.
func NewGates() *Gates {
	return &Gates{mounts: make(map[string]gateMount)}
}

// For returns the gate mounted for sessionID at generation.
func (g *Gates) For(sessionID string, generation uint64) *ConsoleGate {
	g.mu.Lock()
	defer g.mu.Unlock()
	mount, ok := g.mounts[sessionID]
	if ok && mount.generation == generation {
		return mount.gate
	}
	mount = gateMount{generation: generation, gate: NewConsoleGate()}
	g.mounts[sessionID] = mount
	return mount.gate
}

// Forget drops the gate of a closed session.
func (g *Gates) Forget(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.mounts, sessionID)
}
