package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kiosk-complaint-api/internal/service"
)

// AuditActor attaches the calling terminal to the request context so writes made
// further down can be attributed in the audit trail. Mount after KioskSession.
func AuditActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := service.Actor{SessionID: c.GetString(ContextSessionIDKey), IPAddress: c.ClientIP()}
		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}
