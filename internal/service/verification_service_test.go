package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/kiosk-complaint-api/internal/dto"
	"github.com/noah-isme/kiosk-complaint-api/internal/models"
	"github.com/noah-isme/kiosk-complaint-api/internal/repository"
	"github.com/noah-isme/kiosk-complaint-api/internal/session"
	appErrors "github.com/noah-isme/kiosk-complaint-api/pkg/errors"
)

type capturingSender struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (s *capturingSender) Send(ctx context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.codes == nil {
		s.codes = map[string]string{}
	}
	s.codes[phone] = code
	return nil
}

func (s *capturingSender) last(phone string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[phone]
}

func newVerification(sender *capturingSender) *VerificationService {
	provider := NewOTPProvider(repository.NewMemoryOTPRepository(), sender, time.Minute, 6)
	return NewVerificationService(provider, validator.New(), nil, zap.NewNop())
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"010-1234-5678", "+821012345678", true},
		{"010 1111 2222", "+821011112222", true},
		{"01011112222", "+821011112222", true},
		{"1012345678", "+821012345678", true},
		{"010-12", "", false},
		{"010-abcd-5678", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if !tc.ok {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestVerificationSignsCitizenIn(t *testing.T) {
	sender := &capturingSender{}
	svc := newVerification(sender)
	st := session.NewState()
	st.Elevate()
	ctx := context.Background()

	require.NoError(t, svc.Start(ctx, "t1", dto.PhoneCodeRequest{Name: "김민수", Phone: "010-1234-5678"}))
	code := sender.last("+821012345678")
	require.Len(t, code, 6)

	require.NoError(t, svc.Confirm(ctx, "t1", st, dto.PhoneConfirmRequest{Code: code}))
	snap := st.Snapshot()
	assert.Equal(t, "김민수", snap.DisplayName)
	assert.Equal(t, "+821012345678", snap.ContactNumber)
	assert.Equal(t, models.RoleCitizen, snap.Role)

	err := svc.Confirm(ctx, "t1", st, dto.PhoneConfirmRequest{Code: code})
	assert.Equal(t, MessageCodeNotSent, appErrors.FromError(err).Message)
}

func TestVerificationRejectsWrongCode(t *testing.T) {
	sender := &capturingSender{}
	svc := newVerification(sender)
	st := session.NewState()
	ctx := context.Background()

	require.NoError(t, svc.Start(ctx, "t1", dto.PhoneCodeRequest{Name: "김민수", Phone: "01012345678"}))
	wrong := "000000"
	if sender.last("+821012345678") == wrong {
		wrong = "111111"
	}
	err := svc.Confirm(ctx, "t1", st, dto.PhoneConfirmRequest{Code: wrong})
	require.Error(t, err)
	assert.Equal(t, MessageInvalidCode, appErrors.FromError(err).Message)
	assert.False(t, st.Snapshot().Authenticated())

	require.NoError(t, svc.Confirm(ctx, "t1", st, dto.PhoneConfirmRequest{Code: sender.last("+821012345678")}))
}

func TestVerificationStartValidatesInput(t *testing.T) {
	svc := newVerification(&capturingSender{})
	ctx := context.Background()

	for _, req := range []dto.PhoneCodeRequest{
		{Name: "", Phone: "01012345678"},
		{Name: "김민수", Phone: "12-34"},
	} {
		err := svc.Start(ctx, "t1", req)
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
		assert.Equal(t, MessageInvalidIdentity, appErr.Message)
	}
}

func TestVerificationSendFailure(t *testing.T) {
	svc := newVerification(&capturingSender{err: errors.New("sms gateway down")})
	err := svc.Start(context.Background(), "t1", dto.PhoneCodeRequest{Name: "김민수", Phone: "01012345678"})
	require.Error(t, err)
	assert.Equal(t, MessageSendFailed, appErrors.FromError(err).Message)
}

func TestLogoutClearsIdentityAndAdminRole(t *testing.T) {
	svc := newVerification(&capturingSender{})
	st := session.NewState()
	require.NoError(t, st.SetIdentity("김민수", "+821012345678"))
	st.Elevate()

	svc.Logout("t1", st)
	snap := st.Snapshot()
	assert.Equal(t, "", snap.DisplayName)
	assert.Equal(t, models.RoleCitizen, snap.Role)
}
