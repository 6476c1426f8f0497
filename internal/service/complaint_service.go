package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/kiosk-complaint-api/internal/dto"
	"github.com/noah-isme/kiosk-complaint-api/internal/models"
	appErrors "github.com/noah-isme/kiosk-complaint-api/pkg/errors"
)

// User-facing messages for complaint operations.
const (
	MessageMissingFields   = "모든 항목을 입력해주세요."
	MessageSubmitFailed    = "제출 중 오류가 발생했습니다."
	MessageListFailed      = "민원 목록을 불러오지 못했습니다."
	MessageInvalidStatus   = "처리 상태를 확인해주세요."
	MessageStatusFailed    = "상태 변경 중 오류가 발생했습니다."
	MessageReplyFailed     = "답변 저장 중 오류가 발생했습니다."
	MessageComplaintAbsent = "민원을 찾을 수 없습니다."
)

type complaintStore interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	List(ctx context.Context) ([]models.Complaint, error)
	Update(ctx context.Context, id string, update models.ComplaintUpdate) error
}

// ComplaintService accepts citizen complaints and serves the record store to readers.
type ComplaintService struct {
	store     complaintStore
	validator *validator.Validate
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewComplaintService constructs the service and registers its validation rules.
func NewComplaintService(store complaintStore, validate *validator.Validate, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		store:     store,
		validator: mustRegisterValidations(validate),
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit validates the form and records a new complaint for the signed-in citizen.
// Nothing reaches the store when validation fails, and a failed write is not retried.
func (s *ComplaintService) Submit(ctx context.Context, sess models.Session, req dto.SubmitComplaintRequest) (*models.Complaint, error) {
	if !sess.Authenticated() {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, MessageMissingFields)
	}

	complaint := &models.Complaint{
		SubmitterName:    sess.DisplayName,
		SubmitterContact: sess.ContactNumber,
		Title:            req.Title,
		Category:         models.ComplaintCategory(req.Category),
		Body:             req.Body,
		Status:           models.StatusUnprocessed,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.store.Create(ctx, complaint); err != nil {
		s.metrics.StoreFailure("create")
		s.logger.Error("complaint submit failed", zap.Error(err))
		return nil, appErrors.Persistence(err, MessageSubmitFailed)
	}

	s.cache.InvalidateComplaints(ctx)
	s.metrics.ComplaintSubmitted(req.Category)
	s.logger.Info("complaint submitted", zap.String("complaint_id", complaint.ID), zap.String("type", req.Category))
	return complaint, nil
}

// ListAll returns every complaint, newest first, from the listing cache when it holds one.
func (s *ComplaintService) ListAll(ctx context.Context) ([]models.Complaint, error) {
	if cached, ok := s.cache.Complaints(ctx); ok {
		return cached, nil
	}
	return s.ListFresh(ctx)
}

// ListFresh reads every complaint from the store, bypassing the cache, and re-seeds the
// cache with the result. A stale entry left by a failed invalidation is overwritten.
func (s *ComplaintService) ListFresh(ctx context.Context) ([]models.Complaint, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		s.metrics.StoreFailure("list")
		s.logger.Error("complaint list failed", zap.Error(err))
		return nil, appErrors.Persistence(err, MessageListFailed)
	}
	if list == nil {
		list = []models.Complaint{}
	}
	s.cache.StoreComplaints(ctx, list)
	return list, nil
}

// ListMine returns the complaints whose submitter name equals name exactly.
func (s *ComplaintService) ListMine(ctx context.Context, name string) ([]models.Complaint, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]models.Complaint, 0)
	for _, c := range all {
		if c.SubmitterName == name {
			mine = append(mine, c)
		}
	}
	return mine, nil
}

// UpdateStatus writes a status unconditionally. Any status may replace any other.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, MessageInvalidStatus)
	}
	if err := s.update(ctx, id, models.ComplaintUpdate{Status: &status}, "update_status", MessageStatusFailed); err != nil {
		return err
	}
	s.metrics.StatusChanged(string(status))
	return nil
}

// SaveReply persists reply text as the complaint's reply.
func (s *ComplaintService) SaveReply(ctx context.Context, id, reply string) error {
	if err := s.update(ctx, id, models.ComplaintUpdate{Reply: &reply}, "save_reply", MessageReplyFailed); err != nil {
		return err
	}
	s.metrics.ReplySaved()
	return nil
}

func (s *ComplaintService) update(ctx context.Context, id string, update models.ComplaintUpdate, operation, message string) error {
	if err := s.store.Update(ctx, id, update); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, MessageComplaintAbsent)
		}
		s.metrics.StoreFailure(operation)
		s.logger.Error("complaint update failed", zap.String("complaint_id", id), zap.String("operation", operation), zap.Error(err))
		return appErrors.Persistence(err, message)
	}
	s.cache.InvalidateComplaints(ctx)
	return nil
}
