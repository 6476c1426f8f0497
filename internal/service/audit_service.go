package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
	"github.com/noah-isme/kiosk-complaint-api/pkg/jobs"
)

const auditJobType = "audit.write"

type auditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Actor identifies the terminal behind an administrator action.
type Actor struct {
	SessionID string
	IPAddress string
}

type actorKey struct{}

// WithActor attaches the acting terminal to ctx for audit records.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting terminal, or a zero Actor.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorKey{}).(Actor)
	return actor
}

// AuditService writes the administrator audit trail off the request path.
type AuditService struct {
	repo   auditRepository
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditService builds the service and its worker queue. Call Start before use.
func NewAuditService(repo auditRepository, workers, retries int, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AuditService{repo: repo, logger: logger}
	svc.queue = jobs.NewQueue("audit", svc.handle, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		Logger:     logger,
	})
	return svc
}

// Start launches the audit workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains pending entries and stops the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record enqueues an audit entry. Failures are logged; the audited action stands.
func (s *AuditService) Record(actor Actor, action string, complaintID string, values interface{}) {
	if s == nil {
		return
	}
	entry := &models.AuditLog{
		SessionID: actor.SessionID,
		Action:    action,
		IPAddress: actor.IPAddress,
	}
	if complaintID != "" {
		id := complaintID
		entry.ComplaintID = &id
	}
	if values != nil {
		payload, err := json.Marshal(values)
		if err != nil {
			s.logger.Warn("audit payload marshal failed", zap.String("action", action), zap.Error(err))
		} else {
			encoded := string(payload)
			entry.NewValues = &encoded
		}
	}
	if err := s.queue.Enqueue(jobs.Job{Type: auditJobType, Payload: entry}); err != nil {
		s.logger.Warn("audit enqueue failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(*models.AuditLog)
	if !ok {
		s.logger.Error("unexpected audit payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.repo.CreateAuditLog(ctx, entry)
}
