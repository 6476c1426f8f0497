package models

import "time"

// ComplaintCategory is the kind of complaint chosen at submission.
type ComplaintCategory string

const (
	CategoryFacility             ComplaintCategory = "시설 관련"
	CategoryGrievance            ComplaintCategory = "불편/건의사항"
	CategoryApplicationRelated   ComplaintCategory = "신청 관련"
	CategorySatisfactionFeedback ComplaintCategory = "만족도 의견"
	CategoryOther                ComplaintCategory = "기타 민원"
)

// ComplaintCategories lists the categories in display order.
var ComplaintCategories = []ComplaintCategory{
	CategoryFacility,
	CategoryGrievance,
	CategoryApplicationRelated,
	CategorySatisfactionFeedback,
	CategoryOther,
}

// Valid reports whether the category is one of the known values.
func (c ComplaintCategory) Valid() bool {
	for _, known := range ComplaintCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ComplaintStatus is the processing state of a complaint.
// Any status may follow any other; there is no transition table.
type ComplaintStatus string

const (
	StatusUnprocessed ComplaintStatus = "미처리"
	StatusInProgress  ComplaintStatus = "진행중"
	StatusCompleted   ComplaintStatus = "완료"
)

// ComplaintStatuses lists the statuses in display order.
var ComplaintStatuses = []ComplaintStatus{StatusUnprocessed, StatusInProgress, StatusCompleted}

// Valid reports whether the status is one of the known values.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusUnprocessed, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// FilterAll is the filter sentinel meaning "any value".
const FilterAll = "전체"

// Complaint represents a persisted complaint document.
type Complaint struct {
	ID               string            `db:"id" json:"id"`
	SubmitterName    string            `db:"name" json:"name"`
	SubmitterContact string            `db:"phone" json:"phone"`
	Title            string            `db:"title" json:"title"`
	Category         ComplaintCategory `db:"type" json:"type"`
	Body             string            `db:"content" json:"content"`
	Status           ComplaintStatus   `db:"status" json:"status"`
	Reply            *string           `db:"reply" json:"reply,omitempty"`
	CreatedAt        time.Time         `db:"timestamp" json:"timestamp"`
}

// ReplyText returns the reply or an empty string when none was written.
func (c Complaint) ReplyText() string {
	if c.Reply == nil {
		return ""
	}
	return *c.Reply
}

// ComplaintUpdate carries the partial fields an administrator may write.
type ComplaintUpdate struct {
	Status *ComplaintStatus
	Reply  *string
}

// Empty reports whether no field is set.
func (u ComplaintUpdate) Empty() bool {
	return u.Status == nil && u.Reply == nil
}
