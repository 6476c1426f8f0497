package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kiosk-complaint-api/internal/middleware"
	"github.com/noah-isme/kiosk-complaint-api/internal/session"
	appErrors "github.com/noah-isme/kiosk-complaint-api/pkg/errors"
	"github.com/noah-isme/kiosk-complaint-api/pkg/response"
)

// sessionFromContext returns the resolved terminal session or answers 401.
func sessionFromContext(c *gin.Context) (*session.State, string, bool) {
	state, id, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, "", false
	}
	return state, id, true
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "요청 형식이 올바르지 않습니다.")
}
