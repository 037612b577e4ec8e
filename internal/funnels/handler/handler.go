package handler

import (
	"net/http"

	"crm_backend/internal/funnels/service"
	"crm_backend/internal/funnels/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for funnels and stages.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidFunnelID  = "invalid funnel id"
	msgInvalidStageID   = "invalid stage id"
)

// New creates a new funnels handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListTemplates lists the built-in funnel templates.
// GET /api/v1/funnel-templates
func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.svc.ListTemplates()
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": templates})
}

// ListFunnels lists the caller's funnels.
// GET /api/v1/funnels
func (h *Handler) ListFunnels(c *gin.Context) {
	var req transport.ListFunnelsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListFunnels(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateFunnel creates a funnel.
// POST /api/v1/funnels
func (h *Handler) CreateFunnel(c *gin.Context) {
	var req transport.CreateFunnelRequest
	if !h.bindJSON(c, &req) {
		return
	}
	identity, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.CreateFunnel(c.Request.Context(), tenantID, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetFunnel returns a funnel with its stages.
// GET /api/v1/funnels/:id
func (h *Handler) GetFunnel(c *gin.Context) {
	funnelID, ok := httpkit.ParseUUIDParam(c, "id", msgInvalidFunnelID)
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.GetFunnel(c.Request.Context(), tenantID, funnelID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetBoard returns the funnel's stages with their leads.
// GET /api/v1/funnels/:id/board
func (h *Handler) GetBoard(c *gin.Context) {
	funnelID, ok := httpkit.ParseUUIDParam(c, "id", msgInvalidFunnelID)
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.GetBoard(c.Request.Context(), tenantID, funnelID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateFunnel updates a funnel.
// PUT /api/v1/funnels/:id
func (h *Handler) UpdateFunnel(c *gin.Context) {
	funnelID, ok := httpkit.ParseUUIDParam(c, "id", msgInvalidFunnelID)
	if !ok {
		return
	}
	var req transport.UpdateFunnelRequest
	if !h.bindJSON(c, &req) {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.UpdateFunnel(c.Request.Context(), tenantID, funnelID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteFunnel soft deletes a funnel and its stages.
// DELETE /api/v1/funnels/:id
func (h *Handler) DeleteFunnel(c *gin.Context) {
	funnelID, ok := httpkit.ParseUUIDParam(c, "id", msgInvalidFunnelID)
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteFunnel(c.Request.Context(), tenantID, funnelID)) {
		return
	}
	httpkit.NoContent(c)
}

// RestoreFunnel restores a funnel and the stages deleted with it.
// POST /api/v1/funnels/:id/restore
func (h *Handler) RestoreFunnel(c *gin.Context) {
	funnelID, ok := httpkit.ParseUUIDParam(c, "id", msgInvalidFunnelID)
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.RestoreFunnel(c.Request.Context(), tenantID, funnelID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DuplicateFunnel copies a funnel with its stages.
// POST /api/v1/funnels/:id/duplicate
func (h *Handler) DuplicateFunnel(c *gin.Context) {
	funnelID, ok := httpkit.ParseUUIDParam(c, "id", msgInvalidFunnelID)
	if !ok {
		return
	}
	identity, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.DuplicateFunnel(c.Request.Context(), tenantID, identity.UserID(), funnelID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return false
	}
	return true
}
