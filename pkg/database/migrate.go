package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema mirrors the document layout of the complaints collection: name, phone, title,
// type, content, status, reply, timestamp. type and status stay free-form TEXT.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS complaints (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		title TEXT NOT NULL,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		status TEXT NOT NULL,
		reply TEXT NULL,
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_timestamp ON complaints (timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS complaint_audit_logs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		action TEXT NOT NULL,
		complaint_id TEXT NULL,
		new_values JSONB NULL,
		ip_address TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_complaint_audit_logs_complaint ON complaint_audit_logs (complaint_id)`,
}

// Migrate applies the minimal schema idempotently.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
