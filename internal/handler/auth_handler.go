package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kiosk-complaint-api/internal/access"
	"github.com/noah-isme/kiosk-complaint-api/internal/dto"
	"github.com/noah-isme/kiosk-complaint-api/internal/service"
	"github.com/noah-isme/kiosk-complaint-api/internal/session"
	"github.com/noah-isme/kiosk-complaint-api/pkg/response"
)

// Navigation target after a successful elevation.
const targetAdmin = "admin"

type verificationService interface {
	Start(ctx context.Context, sessionID string, req dto.PhoneCodeRequest) error
	Confirm(ctx context.Context, sessionID string, state *session.State, req dto.PhoneConfirmRequest) error
	Logout(sessionID string, state *session.State)
}

// AuthHandler signs citizens in and out and elevates administrators.
type AuthHandler struct {
	verification verificationService
	elevator     service.Elevator
}

// NewAuthHandler builds the handler.
func NewAuthHandler(verification verificationService, elevator service.Elevator) *AuthHandler {
	return &AuthHandler{verification: verification, elevator: elevator}
}

// RequestCode godoc
// @Summary Send a verification code
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Kiosk-Session header string true "Session handle"
// @Param payload body dto.PhoneCodeRequest true "Name and phone"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/phone/request [post]
func (h *AuthHandler) RequestCode(c *gin.Context) {
	_, id, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.PhoneCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	if err := h.verification.Start(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"sent": true})
}

// ConfirmCode godoc
// @Summary Confirm the verification code and sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Kiosk-Session header string true "Session handle"
// @Param payload body dto.PhoneConfirmRequest true "Code"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/phone/confirm [post]
func (h *AuthHandler) ConfirmCode(c *gin.Context) {
	state, id, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.PhoneConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	if err := h.verification.Confirm(c.Request.Context(), id, state, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state.Snapshot(), map[string]interface{}{"redirect": access.TargetKiosk})
}

// Logout godoc
// @Summary Sign the terminal out
// @Tags Auth
// @Produce json
// @Param X-Kiosk-Session header string true "Session handle"
// @Success 200 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	state, id, ok := sessionFromContext(c)
	if !ok {
		return
	}
	h.verification.Logout(id, state)
	response.JSON(c, http.StatusOK, state.Snapshot(), map[string]interface{}{"redirect": access.TargetLogin})
}

// Elevate godoc
// @Summary Enter administrator mode
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Kiosk-Session header string true "Session handle"
// @Param payload body dto.ElevateRequest true "Administrator password"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /admin/elevate [post]
func (h *AuthHandler) Elevate(c *gin.Context) {
	state, _, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.ElevateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	ctx := c.Request.Context()
	if err := h.elevator.Elevate(ctx, service.ActorFromContext(ctx), state, req.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state.Snapshot(), map[string]interface{}{"redirect": targetAdmin})
}
