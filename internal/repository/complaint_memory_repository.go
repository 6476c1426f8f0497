package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
)

// MemoryComplaintRepository keeps complaints in process memory. Used for development
// kiosks and tests; it follows the same contract as ComplaintRepository.
type MemoryComplaintRepository struct {
	mu    sync.RWMutex
	items map[string]models.Complaint
	now   func() time.Time
}

// NewMemoryComplaintRepository creates an empty store.
func NewMemoryComplaintRepository() *MemoryComplaintRepository {
	return &MemoryComplaintRepository{items: make(map[string]models.Complaint), now: time.Now}
}

// Create stores a copy of the complaint.
func (r *MemoryComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = r.now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[complaint.ID] = cloneComplaint(*complaint)
	return nil
}

// List returns every complaint, newest first.
func (r *MemoryComplaintRepository) List(ctx context.Context) ([]models.Complaint, error) {
	r.mu.RLock()
	out := make([]models.Complaint, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, cloneComplaint(c))
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update writes the provided fields only.
func (r *MemoryComplaintRepository) Update(ctx context.Context, id string, update models.ComplaintUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	if update.Status != nil {
		c.Status = *update.Status
	}
	if update.Reply != nil {
		reply := *update.Reply
		c.Reply = &reply
	}
	r.items[id] = c
	return nil
}

func cloneComplaint(c models.Complaint) models.Complaint {
	if c.Reply != nil {
		reply := *c.Reply
		c.Reply = &reply
	}
	return c
}
