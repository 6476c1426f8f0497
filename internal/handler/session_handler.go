package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kiosk-complaint-api/internal/dto"
	"github.com/noah-isme/kiosk-complaint-api/internal/session"
	"github.com/noah-isme/kiosk-complaint-api/pkg/response"
)

// SessionForgetter drops per-session state kept outside the registry.
type SessionForgetter interface {
	Forget(sessionID string)
}

// SessionHandler opens and inspects kiosk terminal sessions.
type SessionHandler struct {
	registry   *session.Registry
	codec      *session.HandleCodec
	header     string
	forgetters []SessionForgetter
}

// NewSessionHandler builds the handler.
func NewSessionHandler(registry *session.Registry, codec *session.HandleCodec, header string, forgetters ...SessionForgetter) *SessionHandler {
	return &SessionHandler{registry: registry, codec: codec, header: header, forgetters: forgetters}
}

// Open godoc
// @Summary Open a kiosk session
// @Description Called once by a terminal on start-up. The returned handle must be sent in the session header on every later call.
// @Tags Session
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Open(c *gin.Context) {
	id, state := h.registry.Open()
	handle, err := h.codec.Encode(id)
	if err != nil {
		h.registry.Close(id)
		response.Error(c, err)
		return
	}
	response.Created(c, dto.SessionOpened{Handle: handle, Header: h.header, Session: state.Snapshot()})
}

// Current godoc
// @Summary Current kiosk session
// @Tags Session
// @Produce json
// @Param X-Kiosk-Session header string true "Session handle"
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Current(c *gin.Context) {
	state, _, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, state.Snapshot())
}

// Close godoc
// @Summary Close the kiosk session
// @Tags Session
// @Param X-Kiosk-Session header string true "Session handle"
// @Success 204
// @Router /session [delete]
func (h *SessionHandler) Close(c *gin.Context) {
	_, id, ok := sessionFromContext(c)
	if !ok {
		return
	}
	h.registry.Close(id)
	for _, f := range h.forgetters {
		f.Forget(id)
	}
	response.NoContent(c)
}
