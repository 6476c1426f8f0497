package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/kiosk-complaint-api/internal/dto"
	"github.com/noah-isme/kiosk-complaint-api/internal/repository"
	"github.com/noah-isme/kiosk-complaint-api/internal/session"
	appErrors "github.com/noah-isme/kiosk-complaint-api/pkg/errors"
)

// User-facing messages for phone verification.
const (
	MessageInvalidIdentity = "이름과 전화번호 형식을 확인해주세요."
	MessageInvalidCode     = "인증번호가 올바르지 않습니다."
	MessageCodeNotSent     = "인증번호를 먼저 요청해주세요."
	MessageSendFailed      = "인증번호 전송 실패: 형식을 확인해주세요."
)

// ErrCodeMismatch is returned by providers when a code does not confirm.
var ErrCodeMismatch = errors.New("verification code mismatch")

var koreanMobile = regexp.MustCompile(`^\+82\d{9,11}$`)

// NormalizePhone turns local input such as "010-1234-5678" into "+821012345678".
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.NewReplacer("-", "", " ", "", "\t", "").Replace(raw)
	cleaned = strings.TrimPrefix(cleaned, "0")
	formatted := "+82" + cleaned
	if !koreanMobile.MatchString(formatted) {
		return "", fmt.Errorf("phone %q is not a Korean number", raw)
	}
	return formatted, nil
}

// VerificationProvider proves that a caller controls a phone number.
type VerificationProvider interface {
	RequestCode(ctx context.Context, phone string) (string, error)
	ConfirmCode(ctx context.Context, handle, code string) error
}

// CodeSender delivers a one-time code to a phone.
type CodeSender interface {
	Send(ctx context.Context, phone, code string) error
}

// LogCodeSender writes codes to the log instead of sending SMS. Development only.
type LogCodeSender struct {
	Logger *zap.Logger
}

// Send implements CodeSender.
func (s LogCodeSender) Send(ctx context.Context, phone, code string) error {
	if s.Logger != nil {
		s.Logger.Info("verification code issued", zap.String("phone", phone), zap.String("code", code))
	}
	return nil
}

type otpStore interface {
	Save(ctx context.Context, handle string, entry repository.OTPEntry, ttl time.Duration) error
	Get(ctx context.Context, handle string) (*repository.OTPEntry, error)
	Delete(ctx context.Context, handle string) error
}

// OTPProvider issues numeric one-time codes kept in an expiring store.
type OTPProvider struct {
	store  otpStore
	sender CodeSender
	ttl    time.Duration
	length int
}

var _ VerificationProvider = (*OTPProvider)(nil)

// NewOTPProvider constructs the provider.
func NewOTPProvider(store otpStore, sender CodeSender, ttl time.Duration, length int) *OTPProvider {
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	if length <= 0 {
		length = 6
	}
	return &OTPProvider{store: store, sender: sender, ttl: ttl, length: length}
}

// RequestCode issues and sends a code, returning the handle that confirms it.
func (p *OTPProvider) RequestCode(ctx context.Context, phone string) (string, error) {
	code, err := randomDigits(p.length)
	if err != nil {
		return "", err
	}
	handle := uuid.NewString()
	if err := p.store.Save(ctx, handle, repository.OTPEntry{Phone: phone, Code: code}, p.ttl); err != nil {
		return "", fmt.Errorf("store verification code: %w", err)
	}
	if err := p.sender.Send(ctx, phone, code); err != nil {
		_ = p.store.Delete(ctx, handle)
		return "", fmt.Errorf("send verification code: %w", err)
	}
	return handle, nil
}

// ConfirmCode checks a code. A confirmed code cannot be used again.
func (p *OTPProvider) ConfirmCode(ctx context.Context, handle, code string) error {
	entry, err := p.store.Get(ctx, handle)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return ErrCodeMismatch
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		return ErrCodeMismatch
	}
	if err := p.store.Delete(ctx, handle); err != nil {
		return fmt.Errorf("consume verification code: %w", err)
	}
	return nil
}

func randomDigits(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate verification code: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

type pendingVerification struct {
	handle string
	name   string
	phone  string
}

// VerificationService signs citizens in at a kiosk after phone verification.
type VerificationService struct {
	provider  VerificationProvider
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger

	mu      sync.Mutex
	pending map[string]pendingVerification
}

// NewVerificationService constructs the service.
func NewVerificationService(provider VerificationProvider, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{
		provider:  provider,
		validator: mustRegisterValidations(validate),
		metrics:   metrics,
		logger:    logger,
		pending:   make(map[string]pendingVerification),
	}
}

// Start validates name and phone and sends a code. A later Start replaces the pending one.
func (s *VerificationService) Start(ctx context.Context, sessionID string, req dto.PhoneCodeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.VerificationStep("request", "invalid")
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, MessageInvalidIdentity)
	}
	phone, err := NormalizePhone(req.Phone)
	if err != nil {
		s.metrics.VerificationStep("request", "invalid")
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, MessageInvalidIdentity)
	}
	handle, err := s.provider.RequestCode(ctx, phone)
	if err != nil {
		s.metrics.VerificationStep("request", "failed")
		s.logger.Error("verification code request failed", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, MessageSendFailed)
	}

	s.mu.Lock()
	s.pending[sessionID] = pendingVerification{handle: handle, name: req.Name, phone: phone}
	s.mu.Unlock()
	s.metrics.VerificationStep("request", "sent")
	return nil
}

// Confirm checks the code and, on success, signs the citizen in on state.
func (s *VerificationService) Confirm(ctx context.Context, sessionID string, state *session.State, req dto.PhoneConfirmRequest) error {
	s.mu.Lock()
	pending, ok := s.pending[sessionID]
	s.mu.Unlock()
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, MessageCodeNotSent)
	}
	if err := s.validator.Struct(req); err != nil {
		s.metrics.VerificationStep("confirm", "invalid")
		return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, MessageInvalidCode)
	}
	if err := s.provider.ConfirmCode(ctx, pending.handle, req.Code); err != nil {
		s.metrics.VerificationStep("confirm", "rejected")
		if !errors.Is(err, ErrCodeMismatch) {
			s.logger.Error("verification confirm failed", zap.Error(err))
		}
		return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, MessageInvalidCode)
	}
	if err := state.SetIdentity(pending.name, pending.phone); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, MessageInvalidIdentity)
	}

	s.mu.Lock()
	delete(s.pending, sessionID)
	s.mu.Unlock()
	s.metrics.VerificationStep("confirm", "verified")
	return nil
}

// Logout clears the terminal's identity and any pending verification.
func (s *VerificationService) Logout(sessionID string, state *session.State) {
	s.Forget(sessionID)
	state.Clear()
}

// Forget drops the pending verification of a session.
func (s *VerificationService) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, sessionID)
}
