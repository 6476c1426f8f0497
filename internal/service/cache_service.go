package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
	appErrors "github.com/noah-isme/kiosk-complaint-api/pkg/errors"
)

// Cache keys for complaint listings.
const (
	ComplaintListCacheKey     = "complaints:all"
	ComplaintListCachePattern = "complaints:*"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService caches the complaint listing and records cache metrics. Cache
// failures never fail the caller; they fall through to the record store.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Complaints returns the cached listing, if present.
func (s *CacheService) Complaints(ctx context.Context) ([]models.Complaint, bool) {
	if !s.Enabled() {
		return nil, false
	}
	var list []models.Complaint
	start := time.Now()
	err := s.repo.Get(ctx, ComplaintListCacheKey, &list)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", ComplaintListCacheKey), zap.Error(err))
		}
		return nil, false
	}
	return list, true
}

// StoreComplaints caches a freshly read listing.
func (s *CacheService) StoreComplaints(ctx context.Context, list []models.Complaint) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, ComplaintListCacheKey, list, s.defaultTTL)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", ComplaintListCacheKey), zap.Error(err))
	}
}

// InvalidateComplaints drops every cached listing. Writers call it before returning.
func (s *CacheService) InvalidateComplaints(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.DeleteByPattern(ctx, ComplaintListCachePattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", ComplaintListCachePattern), zap.Error(err))
	}
}
