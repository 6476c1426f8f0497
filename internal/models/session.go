package models

// Role represents the privilege level of a kiosk session.
type Role string

const (
	RoleCitizen       Role = "CITIZEN"
	RoleAdministrator Role = "ADMINISTRATOR"
)

// Session is the identity and role of the caller at one kiosk terminal.
// An empty DisplayName means no one is signed in.
type Session struct {
	DisplayName   string `json:"display_name"`
	ContactNumber string `json:"contact_number"`
	Role          Role   `json:"role"`
}

// Authenticated reports whether an identity has been established.
func (s Session) Authenticated() bool {
	return s.DisplayName != ""
}

// IsAdministrator reports whether the session holds the administrator role.
func (s Session) IsAdministrator() bool {
	return s.Role == RoleAdministrator
}
