package handler

import (
	"net/http"

	"crm_backend/internal/leads/transport"
	"crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// MoveToStage moves a lead to a stage of its funnel.
// POST /api/v1/leads/:id/move-stage
func (h *Handler) MoveToStage(c *gin.Context) {
	actorID, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}
	var req transport.MoveStageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.MoveToStage(c.Request.Context(), tenantID, leadID, actorID, req.StageID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MoveToNextStage moves a lead one stage forward.
// POST /api/v1/leads/:id/next-stage
func (h *Handler) MoveToNextStage(c *gin.Context) {
	actorID, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}

	result, err := h.svc.MoveToNextStage(c.Request.Context(), tenantID, leadID, actorID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MoveToPreviousStage moves a lead one stage back.
// POST /api/v1/leads/:id/previous-stage
func (h *Handler) MoveToPreviousStage(c *gin.Context) {
	actorID, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}

	result, err := h.svc.MoveToPreviousStage(c.Request.Context(), tenantID, leadID, actorID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Assign sets or clears the lead's owner.
// POST /api/v1/leads/:id/assign
func (h *Handler) Assign(c *gin.Context) {
	actorID, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}
	var req transport.AssignLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if !req.UserID.Set {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, map[string]string{"userId": "required"})
		return
	}

	result, err := h.svc.Assign(c.Request.Context(), tenantID, leadID, actorID, req.UserID.Value)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Qualify marks a lead qualified.
// POST /api/v1/leads/:id/qualify
func (h *Handler) Qualify(c *gin.Context) {
	h.qualification(c, true)
}

// Unqualify marks a lead unqualified.
// POST /api/v1/leads/:id/unqualify
func (h *Handler) Unqualify(c *gin.Context) {
	h.qualification(c, false)
}

func (h *Handler) qualification(c *gin.Context, qualified bool) {
	actorID, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}
	var req transport.QualifyLeadRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	qualify := h.svc.Unqualify
	if qualified {
		qualify = h.svc.Qualify
	}
	result, err := qualify(c.Request.Context(), tenantID, leadID, actorID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ChangeStatus sets the lead's lifecycle status.
// POST /api/v1/leads/:id/status
func (h *Handler) ChangeStatus(c *gin.Context) {
	actorID, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}
	var req transport.ChangeStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.ChangeStatus(c.Request.Context(), tenantID, leadID, actorID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RecordContact logs a contact with the lead.
// POST /api/v1/leads/:id/contact
func (h *Handler) RecordContact(c *gin.Context) {
	actorID, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}
	var req transport.RecordContactRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.RecordContact(c.Request.Context(), tenantID, leadID, actorID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddNote adds a note to the lead's history.
// POST /api/v1/leads/:id/notes
func (h *Handler) AddNote(c *gin.Context) {
	actorID, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}
	var req transport.AddNoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.AddNote(c.Request.Context(), tenantID, leadID, actorID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddTags adds tags to a lead.
// POST /api/v1/leads/:id/tags
func (h *Handler) AddTags(c *gin.Context) {
	_, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}
	var req transport.TagsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.AddTags(c.Request.Context(), tenantID, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RemoveTags removes tags from a lead.
// DELETE /api/v1/leads/:id/tags
func (h *Handler) RemoveTags(c *gin.Context) {
	_, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}
	var req transport.TagsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.RemoveTags(c.Request.Context(), tenantID, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
