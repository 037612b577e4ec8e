package handler

import (
	"net/http"

	"crm_backend/internal/funnels/transport"
	"crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// stageParams resolves the tenant, funnel and stage of a stage route.
func stageParams(c *gin.Context) (tenantID, funnelID, stageID uuid.UUID, ok bool) {
	if funnelID, ok = httpkit.ParseUUIDParam(c, "id", msgInvalidFunnelID); !ok {
		return
	}
	if stageID, ok = httpkit.ParseUUIDParam(c, "stageId", msgInvalidStageID); !ok {
		return
	}
	_, tenantID, ok = httpkit.MustGetTenant(c)
	return
}

// ListStages lists a funnel's stages by order.
// GET /api/v1/funnels/:id/stages
func (h *Handler) ListStages(c *gin.Context) {
	funnelID, ok := httpkit.ParseUUIDParam(c, "id", msgInvalidFunnelID)
	if !ok {
		return
	}
	var req transport.ListStagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListStages(c.Request.Context(), tenantID, funnelID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateStage appends or inserts a stage.
// POST /api/v1/funnels/:id/stages
func (h *Handler) CreateStage(c *gin.Context) {
	funnelID, ok := httpkit.ParseUUIDParam(c, "id", msgInvalidFunnelID)
	if !ok {
		return
	}
	var req transport.CreateStageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.CreateStage(c.Request.Context(), tenantID, funnelID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetStage returns one stage.
// GET /api/v1/funnels/:id/stages/:stageId
func (h *Handler) GetStage(c *gin.Context) {
	tenantID, funnelID, stageID, ok := stageParams(c)
	if !ok {
		return
	}

	result, err := h.svc.GetStage(c.Request.Context(), tenantID, funnelID, stageID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateStage updates a stage's attributes.
// PUT /api/v1/funnels/:id/stages/:stageId
func (h *Handler) UpdateStage(c *gin.Context) {
	tenantID, funnelID, stageID, ok := stageParams(c)
	if !ok {
		return
	}
	var req transport.UpdateStageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.UpdateStage(c.Request.Context(), tenantID, funnelID, stageID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MoveStage changes a stage's order.
// PUT /api/v1/funnels/:id/stages/:stageId/move
func (h *Handler) MoveStage(c *gin.Context) {
	tenantID, funnelID, stageID, ok := stageParams(c)
	if !ok {
		return
	}
	var req transport.MoveStageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.MoveStage(c.Request.Context(), tenantID, funnelID, stageID, *req.Order)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteStage soft deletes a stage, or hard deletes it with ?force=true.
// DELETE /api/v1/funnels/:id/stages/:stageId
func (h *Handler) DeleteStage(c *gin.Context) {
	tenantID, funnelID, stageID, ok := stageParams(c)
	if !ok {
		return
	}
	var req transport.DeleteStageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteStage(c.Request.Context(), tenantID, funnelID, stageID, req.Force)) {
		return
	}
	httpkit.NoContent(c)
}

// RestoreStage restores a soft deleted stage at the end of the funnel.
// POST /api/v1/funnels/:id/stages/:stageId/restore
func (h *Handler) RestoreStage(c *gin.Context) {
	tenantID, funnelID, stageID, ok := stageParams(c)
	if !ok {
		return
	}

	result, err := h.svc.RestoreStage(c.Request.Context(), tenantID, funnelID, stageID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
