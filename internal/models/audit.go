package models

import "time"

// AuditAction constants represent administrator actions recorded in the audit trail.
const (
	AuditActionStatusChange  = "COMPLAINT_STATUS_CHANGE"
	AuditActionReplySave     = "COMPLAINT_REPLY_SAVE"
	AuditActionElevate       = "ADMIN_ELEVATE"
	AuditActionElevateDenied = "ADMIN_ELEVATE_DENIED"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID          string    `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	Action      string    `db:"action" json:"action"`
	ComplaintID *string   `db:"complaint_id" json:"complaint_id,omitempty"`
	NewValues   *string   `db:"new_values" json:"new_values,omitempty"`
	IPAddress   string    `db:"ip_address" json:"ip_address"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
