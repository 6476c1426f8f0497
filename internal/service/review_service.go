package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/kiosk-complaint-api/internal/dto"
	"github.com/noah-isme/kiosk-complaint-api/internal/models"
	appErrors "github.com/noah-isme/kiosk-complaint-api/pkg/errors"
)

// MessageNoDraft is returned when a reply is saved for a complaint the console has not loaded.
const MessageNoDraft = "답변할 민원을 먼저 불러와주세요."

type complaintWorkflow interface {
	ListAll(ctx context.Context) ([]models.Complaint, error)
	ListFresh(ctx context.Context) ([]models.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) error
	SaveReply(ctx context.Context, id, reply string) error
}

// ReviewConsole is one administrator's working view of the complaint list: the last
// fetched records, the active filter and unsaved reply drafts keyed by complaint id.
type ReviewConsole struct {
	mu       sync.Mutex
	workflow complaintWorkflow
	records  []models.Complaint
	// fetched holds each record's reply as of the last refresh.
	fetched map[string]string
	drafts  map[string]string
	filter  dto.ComplaintFilter
	// written is told about every successful store write.
	written func(ctx context.Context, action, id string, values map[string]string)
}

// NewReviewConsole returns an empty console showing every record.
func NewReviewConsole(workflow complaintWorkflow) *ReviewConsole {
	return &ReviewConsole{
		workflow: workflow,
		written:  func(context.Context, string, string, map[string]string) {},
		fetched:  make(map[string]string),
		drafts:   make(map[string]string),
		filter:   dto.DefaultComplaintFilter(),
	}
}

// Refresh re-reads the full list. A draft is reset to the stored reply only when it
// is new or still equal to the reply fetched last time; edits in progress survive.
func (c *ReviewConsole) Refresh(ctx context.Context) error {
	list, err := c.workflow.ListAll(ctx)
	if err != nil {
		return err
	}
	c.merge(list, "")
	return nil
}

// reload follows a confirmed write. It reads the store directly so the console shows
// the write even when the listing cache could not be invalidated.
func (c *ReviewConsole) reload(ctx context.Context, saved string) error {
	list, err := c.workflow.ListFresh(ctx)
	if err != nil {
		return err
	}
	c.merge(list, saved)
	return nil
}

func (c *ReviewConsole) merge(list []models.Complaint, saved string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fetched := make(map[string]string, len(list))
	drafts := make(map[string]string, len(list))
	for _, record := range list {
		reply := record.ReplyText()
		fetched[record.ID] = reply
		draft, hasDraft := c.drafts[record.ID]
		previous, seen := c.fetched[record.ID]
		if record.ID == saved || !hasDraft || (seen && draft == previous) {
			drafts[record.ID] = reply
			continue
		}
		drafts[record.ID] = draft
	}
	c.records = list
	c.fetched = fetched
	c.drafts = drafts
}

// SetFilter replaces the active filter. It survives refreshes.
func (c *ReviewConsole) SetFilter(filter dto.ComplaintFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = filter
}

// Filter returns the active filter.
func (c *ReviewConsole) Filter() dto.ComplaintFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Visible returns the fetched records matching the active filter, newest first.
func (c *ReviewConsole) Visible() []models.Complaint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.Apply(c.records)
}

// SetStatus writes the status and refreshes. On failure the console is unchanged.
func (c *ReviewConsole) SetStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	if err := c.workflow.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	c.written(ctx, models.AuditActionStatusChange, id, map[string]string{"status": string(status)})
	return c.reload(ctx, "")
}

// SetDraft replaces the unsaved reply text for a complaint.
func (c *ReviewConsole) SetDraft(id, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts[id] = text
}

// Draft returns the unsaved reply text for a complaint.
func (c *ReviewConsole) Draft(id string) string {
	draft, _ := c.draft(id)
	return draft
}

func (c *ReviewConsole) draft(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	draft, ok := c.drafts[id]
	return draft, ok
}

// SaveReply persists the complaint's draft as its reply and refreshes. Drafts of
// other complaints are left as they are. A complaint without a draft (never loaded
// and never edited on this console) is rejected without a write.
func (c *ReviewConsole) SaveReply(ctx context.Context, id string) error {
	reply, ok := c.draft(id)
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, MessageNoDraft)
	}
	if err := c.workflow.SaveReply(ctx, id, reply); err != nil {
		return err
	}
	c.written(ctx, models.AuditActionReplySave, id, map[string]string{"reply": reply})
	return c.reload(ctx, id)
}

// Snapshot renders the visible rows with their drafts.
func (c *ReviewConsole) Snapshot() dto.ConsoleSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	visible := c.filter.Apply(c.records)
	rows := make([]dto.ConsoleRow, 0, len(visible))
	for _, record := range visible {
		rows = append(rows, dto.ConsoleRow{Complaint: record, Draft: c.drafts[record.ID]})
	}
	return dto.ConsoleSnapshot{Filter: c.filter, Rows: rows, Total: len(c.records)}
}

type consoleMount struct {
	generation uint64
	console    *ReviewConsole
}

// ReviewService keeps one console per kiosk session. A console is bound to the
// identity it was opened for; when the session's generation moves on, the next
// lookup starts a fresh console.
type ReviewService struct {
	workflow complaintWorkflow
	audit    *AuditService
	logger   *zap.Logger

	mu       sync.Mutex
	consoles map[string]consoleMount
}

// NewReviewService constructs the service.
func NewReviewService(workflow complaintWorkflow, audit *AuditService, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{workflow: workflow, audit: audit, logger: logger, consoles: make(map[string]consoleMount)}
}

// Console returns the console for a session at the given generation.
func (s *ReviewService) Console(sessionID string, generation uint64) *ReviewConsole {
	s.mu.Lock()
	defer s.mu.Unlock()
	mount, ok := s.consoles[sessionID]
	if ok && mount.generation == generation {
		return mount.console
	}
	console := NewReviewConsole(s.workflow)
	console.written = func(ctx context.Context, action, id string, values map[string]string) {
		s.audit.Record(ActorFromContext(ctx), action, id, values)
	}
	mount = consoleMount{generation: generation, console: console}
	s.consoles[sessionID] = mount
	s.logger.Debug("review console opened", zap.String("session_id", sessionID), zap.Uint64("generation", generation))
	return mount.console
}

// Forget drops the console of a closed session.
func (s *ReviewService) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.consoles, sessionID)
}
