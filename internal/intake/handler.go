package intake

import (
	"context"
	"net/http"
	"time"

	leadstransport "crm_backend/internal/leads/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"
	"crm_backend/platform/sanitize"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// LeadIntaker creates leads on behalf of a token's company. The leads
// service satisfies it.
type LeadIntaker interface {
	Intake(ctx context.Context, companyID uuid.UUID, tokenName string, req leadstransport.IntakeLeadRequest) (leadstransport.LeadResponse, bool, error)
}

// Handler serves token management and public lead intake.
type Handler struct {
	store TokenStore
	leads LeadIntaker
	val   *validator.Validator
	log   *logger.Logger
}

// NewHandler creates a new intake handler.
func NewHandler(store TokenStore, leads LeadIntaker, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{store: store, leads: leads, val: val, log: log}
}

type CreateTokenRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type TokenResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Preview    string     `json:"preview"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
}

type CreateTokenResponse struct {
	TokenResponse
	Token string `json:"token"`
}

// CreateToken issues a token. The plaintext is returned only here.
// POST /api/v1/admin/api-tokens
func (h *Handler) CreateToken(c *gin.Context) {
	var req CreateTokenRequest
	if !h.bindJSON(c, &req) {
		return
	}
	identity, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	id := uuid.New()
	plaintext, hash, err := GenerateToken(id)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to generate api token", nil)
		return
	}
	createdBy := identity.UserID()
	token, err := h.store.CreateToken(c.Request.Context(), APIToken{
		ID:        id,
		CompanyID: tenantID,
		Name:      sanitize.Text(req.Name),
		TokenHash: hash,
		CreatedBy: &createdBy,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	h.log.Info("api token created", "tokenId", token.ID, "companyId", tenantID)
	httpkit.JSON(c, http.StatusCreated, CreateTokenResponse{
		TokenResponse: toTokenResponse(token),
		Token:         plaintext,
	})
}

// ListTokens lists the company's tokens without their secrets.
// GET /api/v1/admin/api-tokens
func (h *Handler) ListTokens(c *gin.Context) {
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	tokens, err := h.store.ListTokens(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	items := make([]TokenResponse, len(tokens))
	for i, t := range tokens {
		items[i] = toTokenResponse(t)
	}
	httpkit.OK(c, gin.H{"items": items})
}

// RevokeToken revokes a token.
// DELETE /api/v1/admin/api-tokens/:id
func (h *Handler) RevokeToken(c *gin.Context) {
	tokenID, ok := httpkit.ParseUUIDParam(c, "id", "invalid token id")
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.store.RevokeToken(c.Request.Context(), tenantID, tokenID)) {
		return
	}
	h.log.Info("api token revoked", "tokenId", tokenID, "companyId", tenantID)
	httpkit.NoContent(c)
}

// SubmitLead creates a lead from an external form. A repeat submission of
// the same person answers 200 with duplicate set instead of 201.
// POST /api/v1/public/leads
func (h *Handler) SubmitLead(c *gin.Context) {
	companyID, tokenName, ok := tokenCompany(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "invalid api token", nil)
		return
	}
	var req leadstransport.IntakeLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, duplicate, err := h.leads.Intake(c.Request.Context(), companyID, tokenName, req)
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusCreated
	if duplicate {
		status = http.StatusOK
	}
	httpkit.JSON(c, status, leadstransport.IntakeLeadResponse{Lead: lead, Duplicate: duplicate})
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

func toTokenResponse(t APIToken) TokenResponse {
	return TokenResponse{
		ID:         t.ID,
		Name:       t.Name,
		Preview:    tokenPreview(t.ID),
		CreatedAt:  t.CreatedAt,
		LastUsedAt: t.LastUsedAt,
		RevokedAt:  t.RevokedAt,
	}
}
