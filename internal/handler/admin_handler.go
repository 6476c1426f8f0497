package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kiosk-complaint-api/internal/dto"
	"github.com/noah-isme/kiosk-complaint-api/internal/models"
	"github.com/noah-isme/kiosk-complaint-api/internal/service"
	"github.com/noah-isme/kiosk-complaint-api/pkg/response"
)

type reviewConsoles interface {
	Console(sessionID string, generation uint64) *service.ReviewConsole
}

type complaintExporter interface {
	Render(records []models.Complaint, format string) (*service.ExportFile, error)
}

// AdminHandler serves the administrator review console.
type AdminHandler struct {
	review   reviewConsoles
	exporter complaintExporter
}

// NewAdminHandler builds the handler.
func NewAdminHandler(review reviewConsoles, exporter complaintExporter) *AdminHandler {
	return &AdminHandler{review: review, exporter: exporter}
}

func (h *AdminHandler) console(c *gin.Context) (*service.ReviewConsole, bool) {
	state, id, ok := sessionFromContext(c)
	if !ok {
		return nil, false
	}
	return h.review.Console(id, state.Generation()), true
}

// Console godoc
// @Summary Refresh and render the review console
// @Tags Admin
// @Produce json
// @Param X-Kiosk-Session header string true "Session handle"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /admin/console [get]
func (h *AdminHandler) Console(c *gin.Context) {
	console, ok := h.console(c)
	if !ok {
		return
	}
	if err := console.Refresh(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, console.Snapshot())
}

// SetFilter godoc
// @Summary Change the console filter
// @Tags Admin
// @Accept json
// @Produce json
// @Param X-Kiosk-Session header string true "Session handle"
// @Param payload body dto.ComplaintFilter true "Filter"
// @Success 200 {object} response.Envelope
// @Router /admin/console/filter [put]
func (h *AdminHandler) SetFilter(c *gin.Context) {
	console, ok := h.console(c)
	if !ok {
		return
	}
	var filter dto.ComplaintFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	console.SetFilter(filter)
	response.JSON(c, http.StatusOK, console.Snapshot())
}

// SetStatus godoc
// @Summary Change a complaint status
// @Tags Admin
// @Accept json
// @Produce json
// @Param X-Kiosk-Session header string true "Session handle"
// @Param id path string true "Complaint ID"
// @Param payload body dto.UpdateStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /admin/complaints/{id}/status [put]
func (h *AdminHandler) SetStatus(c *gin.Context) {
	console, ok := h.console(c)
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	if err := console.SetStatus(c.Request.Context(), c.Param("id"), models.ComplaintStatus(req.Status)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, console.Snapshot())
}

// SetDraft godoc
// @Summary Edit the unsaved reply for a complaint
// @Tags Admin
// @Accept json
// @Produce json
// @Param X-Kiosk-Session header string true "Session handle"
// @Param id path string true "Complaint ID"
// @Param payload body dto.ReplyDraftRequest true "Draft"
// @Success 204
// @Router /admin/complaints/{id}/draft [put]
func (h *AdminHandler) SetDraft(c *gin.Context) {
	console, ok := h.console(c)
	if !ok {
		return
	}
	var req dto.ReplyDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	console.SetDraft(c.Param("id"), req.Reply)
	response.NoContent(c)
}

// SaveReply godoc
// @Summary Save the reply draft of a complaint
// @Tags Admin
// @Produce json
// @Param X-Kiosk-Session header string true "Session handle"
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /admin/complaints/{id}/reply [post]
func (h *AdminHandler) SaveReply(c *gin.Context) {
	console, ok := h.console(c)
	if !ok {
		return
	}
	if err := console.SaveReply(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, console.Snapshot())
}

// Export godoc
// @Summary Refresh and download the visible complaints
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param X-Kiosk-Session header string true "Session handle"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /admin/console/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	console, ok := h.console(c)
	if !ok {
		return
	}
	if err := console.Refresh(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Render(console.Visible(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
