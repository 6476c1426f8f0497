package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/kiosk-complaint-api/pkg/errors"
)

// Envelope is the body of every kiosk API response.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// JSON writes data with optional meta such as redirect hints.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	write(c, status, Envelope{Data: data, Meta: first(meta)})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error writes err as a coded failure. Causes are never serialised.
func Error(c *gin.Context, err error, meta ...map[string]interface{}) {
	appErr := appErrors.FromError(err)
	write(c, appErr.Status, Envelope{Error: appErr, Meta: first(meta)})
}

// NoContent writes a bare 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Kiosk screens are shared; nothing may be cached by the browser.
func write(c *gin.Context, status int, body Envelope) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, body)
}

func first(meta []map[string]interface{}) map[string]interface{} {
	if len(meta) == 0 || len(meta[0]) == 0 {
		return nil
	}
	return meta[0]
}
