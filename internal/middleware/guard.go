package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kiosk-complaint-api/internal/access"
	appErrors "github.com/noah-isme/kiosk-complaint-api/pkg/errors"
	"github.com/noah-isme/kiosk-complaint-api/pkg/response"
)

// Response meta keys carrying navigation hints on denial.
const (
	MetaRedirect = "redirect"
	MetaWarning  = "warning"
)

// MessageLoginRequired accompanies the redirect to the login screen.
const MessageLoginRequired = "로그인이 필요합니다."

// RequireSession lets the request through only when the terminal has a signed-in
// identity. The role is not consulted.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		state, _, ok := SessionFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		decision := access.Evaluate(state.Snapshot())
		if decision.Allowed {
			c.Next()
			return
		}
		SetMeta(c, MetaRedirect, decision.Redirect)
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, MessageLoginRequired), ExtractMeta(c))
		c.Abort()
	}
}

// RequireAdministrator guards the admin console. The console gate is mounted per session
// identity, so a non-administrator sees the warning on the first denial only; later
// denials carry just the redirect.
func RequireAdministrator(gates *access.Gates) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, id, ok := SessionFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		decision := gates.For(id, state.Generation()).Check(state.Snapshot())
		if decision.Allowed {
			c.Next()
			return
		}
		SetMeta(c, MetaRedirect, decision.Redirect)
		if decision.Warning != "" {
			SetMeta(c, MetaWarning, decision.Warning)
		}
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, access.AdminRequiredMessage), ExtractMeta(c))
		c.Abort()
	}
}
