package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kiosk-complaint-api/internal/dto"
	"github.com/noah-isme/kiosk-complaint-api/internal/models"
	"github.com/noah-isme/kiosk-complaint-api/pkg/response"
)

type complaintService interface {
	Submit(ctx context.Context, sess models.Session, req dto.SubmitComplaintRequest) (*models.Complaint, error)
	ListMine(ctx context.Context, name string) ([]models.Complaint, error)
}

// ComplaintHandler serves the citizen side of the kiosk.
type ComplaintHandler struct {
	service complaintService
}

// NewComplaintHandler builds the handler.
func NewComplaintHandler(service complaintService) *ComplaintHandler {
	return &ComplaintHandler{service: service}
}

// Submit godoc
// @Summary Submit a complaint
// @Tags Complaints
// @Accept json
// @Produce json
// @Param X-Kiosk-Session header string true "Session handle"
// @Param payload body dto.SubmitComplaintRequest true "Complaint form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /complaints [post]
func (h *ComplaintHandler) Submit(c *gin.Context) {
	state, _, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.SubmitComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	complaint, err := h.service.Submit(c.Request.Context(), state.Snapshot(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, complaint)
}

// Mine godoc
// @Summary List the signed-in citizen's complaints
// @Tags Complaints
// @Produce json
// @Param X-Kiosk-Session header string true "Session handle"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /complaints/mine [get]
func (h *ComplaintHandler) Mine(c *gin.Context) {
	state, _, ok := sessionFromContext(c)
	if !ok {
		return
	}
	list, err := h.service.ListMine(c.Request.Context(), state.Snapshot().DisplayName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, map[string]interface{}{"total": len(list)})
}
