package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
)

const complaintColumns = "id, name, phone, title, type, content, status, reply, timestamp"

// ComplaintRepository persists complaints in PostgreSQL.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository creates the repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a complaint, assigning its id when empty.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO complaints (` + complaintColumns + `)
VALUES (:id, :name, :phone, :title, :type, :content, :status, :reply, :timestamp)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// List returns every complaint, newest first.
func (r *ComplaintRepository) List(ctx context.Context) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints ORDER BY timestamp DESC`
	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, query); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return complaints, nil
}

// Update writes the provided fields only. It returns sql.ErrNoRows when the id is unknown.
func (r *ComplaintRepository) Update(ctx context.Context, id string, update models.ComplaintUpdate) error {
	if update.Empty() {
		return nil
	}
	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if update.Status != nil {
		args = append(args, string(*update.Status))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if update.Reply != nil {
		args = append(args, *update.Reply)
		sets = append(sets, fmt.Sprintf("reply = $%d", len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE complaints SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update complaint rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
