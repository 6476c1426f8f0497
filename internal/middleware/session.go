package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kiosk-complaint-api/internal/session"
	appErrors "github.com/noah-isme/kiosk-complaint-api/pkg/errors"
	"github.com/noah-isme/kiosk-complaint-api/pkg/logger"
	"github.com/noah-isme/kiosk-complaint-api/pkg/response"
)

// Context keys storing the resolved kiosk session.
const (
	ContextSessionKey   = "kioskSession"
	ContextSessionIDKey = "kioskSessionID"
)

// MessageSessionMissing is returned when a terminal calls without an open session.
const MessageSessionMissing = "키오스크 세션이 없습니다. 처음 화면으로 돌아가주세요."

// KioskSession resolves the session handle sent in header to the terminal's State.
// A handle that no longer names a live session (for example after a restart) is
// rejected the same way as a forged one.
func KioskSession(codec *session.HandleCodec, registry *session.Registry, header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		handle := c.GetHeader(header)
		if handle == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, MessageSessionMissing))
			c.Abort()
			return
		}

		id, err := codec.Decode(handle)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, MessageSessionMissing))
			c.Abort()
			return
		}
		state, ok := registry.Get(id)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, MessageSessionMissing))
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, state)
		c.Set(ContextSessionIDKey, id)
		c.Set(logger.SessionIDKey, id)
		c.Next()
	}
}

// SessionFromContext returns the resolved session and its id.
func SessionFromContext(c *gin.Context) (*session.State, string, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, "", false
	}
	state, ok := value.(*session.State)
	if !ok {
		return nil, "", false
	}
	return state, c.GetString(ContextSessionIDKey), true
}
