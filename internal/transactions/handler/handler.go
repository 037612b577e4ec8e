package handler

import (
	"net/http"

	"crm_backend/internal/transactions/service"
	"crm_backend/internal/transactions/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler serves the read-only ledger endpoints.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
	msgInvalidCompanyID = "invalid company id"
)

// New creates a new ledger handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListByLead returns a lead's ledger.
// GET /api/v1/leads/:id/transactions
func (h *Handler) ListByLead(c *gin.Context) {
	leadID, ok := httpkit.ParseUUIDParam(c, "id", msgInvalidLeadID)
	if !ok {
		return
	}
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListByLead(c.Request.Context(), tenantID, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListByCompany returns a company's ledger.
// GET /api/v1/companies/:id/transactions
func (h *Handler) ListByCompany(c *gin.Context) {
	companyID, ok := httpkit.ParseUUIDParam(c, "id", msgInvalidCompanyID)
	if !ok {
		return
	}
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListByCompany(c.Request.Context(), tenantID, companyID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bindList(c *gin.Context) (transport.ListTransactionsRequest, bool) {
	var req transport.ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return req, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return req, false
	}
	return req, true
}
