package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
	"github.com/noah-isme/kiosk-complaint-api/internal/session"
	appErrors "github.com/noah-isme/kiosk-complaint-api/pkg/errors"
)

// User-facing messages for elevation.
const (
	MessageWrongPassword   = "비밀번호가 틀렸습니다."
	MessageTooManyAttempts = "잠시 후 다시 시도해주세요."
)

// Elevator grants the administrator role to a kiosk session.
type Elevator interface {
	Elevate(ctx context.Context, actor Actor, state *session.State, secret string) error
}

type attemptStore interface {
	Count(ctx context.Context, key string) (int64, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

// ElevationConfig configures the shared administrator secret.
type ElevationConfig struct {
	// Secret is hashed at startup when SecretHash is empty.
	Secret     string
	SecretHash string
	// MaxAttempts of zero disables throttling.
	MaxAttempts int
	Window      time.Duration
}

// ElevationService checks the shared administrator secret.
type ElevationService struct {
	hash        []byte
	attempts    attemptStore
	maxAttempts int
	window      time.Duration
	audit       *AuditService
	metrics     *MetricsService
	logger      *zap.Logger
}

var _ Elevator = (*ElevationService)(nil)

// NewElevationService constructs the service.
func NewElevationService(cfg ElevationConfig, attempts attemptStore, audit *AuditService, metrics *MetricsService, logger *zap.Logger) (*ElevationService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	hash := []byte(cfg.SecretHash)
	if len(hash) == 0 {
		if cfg.Secret == "" {
			return nil, fmt.Errorf("admin secret or secret hash required")
		}
		generated, err := bcrypt.GenerateFromPassword([]byte(cfg.Secret), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin secret: %w", err)
		}
		hash = generated
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid admin secret hash: %w", err)
	}
	if cfg.Window <= 0 {
		cfg.Window = 5 * time.Minute
	}
	return &ElevationService{
		hash:        hash,
		attempts:    attempts,
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.Window,
		audit:       audit,
		metrics:     metrics,
		logger:      logger,
	}, nil
}

// Elevate grants the administrator role when secret matches. A mismatch leaves the
// session exactly as it was.
func (s *ElevationService) Elevate(ctx context.Context, actor Actor, state *session.State, secret string) error {
	if s.throttled() {
		count, err := s.attempts.Count(ctx, actor.SessionID)
		if err != nil {
			s.logger.Warn("elevation attempt lookup failed", zap.Error(err))
		} else if count >= int64(s.maxAttempts) {
			s.metrics.ElevationAttempt("throttled")
			return appErrors.Clone(appErrors.ErrTooManyTries, MessageTooManyAttempts)
		}
	}

	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(secret)); err != nil {
		s.metrics.ElevationAttempt("denied")
		s.audit.Record(actor, models.AuditActionElevateDenied, "", nil)
		if s.throttled() {
			if _, err := s.attempts.Increment(ctx, actor.SessionID, s.window); err != nil {
				s.logger.Warn("elevation attempt record failed", zap.Error(err))
			}
		}
		return appErrors.Clone(appErrors.ErrUnauthorized, MessageWrongPassword)
	}

	if s.throttled() {
		if err := s.attempts.Reset(ctx, actor.SessionID); err != nil {
			s.logger.Warn("elevation attempt reset failed", zap.Error(err))
		}
	}
	state.Elevate()
	s.metrics.ElevationAttempt("granted")
	s.audit.Record(actor, models.AuditActionElevate, "", nil)
	s.logger.Info("administrator elevation granted", zap.String("session_id", actor.SessionID))
	return nil
}

func (s *ElevationService) throttled() bool {
	return s.maxAttempts > 0 && s.attempts != nil
}
