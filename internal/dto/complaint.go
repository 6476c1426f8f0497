package dto

import (
	"strings"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
)

// SubmitComplaintRequest is the citizen complaint form. Identity comes from the session.
type SubmitComplaintRequest struct {
	Category string `json:"type" validate:"required,category"`
	Title    string `json:"title" validate:"required,notblank"`
	Body     string `json:"content" validate:"required,notblank"`
}

// ComplaintFilter narrows the administrator listing. Empty or "전체" fields match anything.
type ComplaintFilter struct {
	Category string `json:"type" form:"type"`
	Status   string `json:"status" form:"status"`
	Search   string `json:"search" form:"search"`
}

// DefaultComplaintFilter matches every record.
func DefaultComplaintFilter() ComplaintFilter {
	return ComplaintFilter{Category: models.FilterAll, Status: models.FilterAll}
}

// Matches combines the category, status and search predicates with AND.
// Search is a substring test against submitter name or title, never the body.
func (f ComplaintFilter) Matches(c models.Complaint) bool {
	if !isAll(f.Category) && string(c.Category) != f.Category {
		return false
	}
	if !isAll(f.Status) && string(c.Status) != f.Status {
		return false
	}
	return strings.Contains(c.SubmitterName, f.Search) || strings.Contains(c.Title, f.Search)
}

// Apply returns the matching records preserving order.
func (f ComplaintFilter) Apply(list []models.Complaint) []models.Complaint {
	out := make([]models.Complaint, 0, len(list))
	for _, c := range list {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

func isAll(v string) bool {
	return v == "" || v == models.FilterAll
}

// UpdateStatusRequest sets a complaint status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,status"`
}

// ReplyDraftRequest replaces the unsaved reply draft for one complaint.
type ReplyDraftRequest struct {
	Reply string `json:"reply"`
}

// ConsoleRow is one line of the administrator console.
type ConsoleRow struct {
	models.Complaint
	Draft string `json:"draft"`
}

// ConsoleSnapshot is the rendered administrator console.
type ConsoleSnapshot struct {
	Filter ComplaintFilter `json:"filter"`
	Rows   []ConsoleRow    `json:"rows"`
	Total  int             `json:"total"`
}
