package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
)

// AuditRepository writes the administrator audit trail to PostgreSQL.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateAuditLog inserts an audit record.
func (r *AuditRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	prepareAudit(log)
	query := `INSERT INTO complaint_audit_logs (id, session_id, action, complaint_id, new_values, ip_address, created_at)
VALUES (:id, :session_id, :action, :complaint_id, :new_values, :ip_address, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// MemoryAuditRepository keeps audit records in memory.
type MemoryAuditRepository struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

// NewMemoryAuditRepository creates the repository.
func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

// CreateAuditLog appends an audit record.
func (r *MemoryAuditRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	prepareAudit(log)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

// Logs returns a copy of the recorded entries.
func (r *MemoryAuditRepository) Logs() []models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditLog, len(r.logs))
	copy(out, r.logs)
	return out
}

func prepareAudit(log *models.AuditLog) {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
}
