package handler

import (
	"net/http"

	"crm_backend/internal/leads/service"
	"crm_backend/internal/leads/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for leads.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
)

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// leadParams resolves the caller and the lead of a /leads/:id route.
func leadParams(c *gin.Context) (actorID *uuid.UUID, tenantID, leadID uuid.UUID, ok bool) {
	if leadID, ok = httpkit.ParseUUIDParam(c, "id", msgInvalidLeadID); !ok {
		return
	}
	identity, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	userID := identity.UserID()
	return &userID, tenantID, leadID, true
}

// List lists the caller's leads.
// GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Search finds leads by name or email.
// GET /api/v1/leads/search?q=
func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchLeadsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.Search(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

// Create creates a lead.
// POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	identity, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	userID := identity.UserID()

	result, err := h.svc.Create(c.Request.Context(), tenantID, &userID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Get returns a lead.
// GET /api/v1/leads/:id
func (h *Handler) Get(c *gin.Context) {
	_, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), tenantID, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update edits a lead's descriptive fields.
// PUT /api/v1/leads/:id
func (h *Handler) Update(c *gin.Context) {
	_, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}
	var req transport.UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), tenantID, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete soft deletes a lead.
// DELETE /api/v1/leads/:id
func (h *Handler) Delete(c *gin.Context) {
	_, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), tenantID, leadID)) {
		return
	}
	httpkit.NoContent(c)
}

// Restore brings back a soft deleted lead.
// POST /api/v1/leads/:id/restore
func (h *Handler) Restore(c *gin.Context) {
	_, tenantID, leadID, ok := leadParams(c)
	if !ok {
		return
	}

	result, err := h.svc.Restore(c.Request.Context(), tenantID, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	return h.validate(c, req)
}

func (h *Handler) bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	return h.validate(c, req)
}

func (h *Handler) validate(c *gin.Context, req interface{}) bool {
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return false
	}
	return true
}
