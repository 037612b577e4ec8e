package intake

import (
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the intake module implementing http.Module.
type Module struct {
	handler *Handler
	store   TokenStore
	log     *logger.Logger
}

// NewModule creates the intake module. leads creates the submitted leads.
func NewModule(pool *pgxpool.Pool, leads LeadIntaker, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	return &Module{
		handler: NewHandler(repo, leads, val, log),
		store:   repo,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "intake"
}

// RegisterRoutes mounts token management on the admin group and the lead
// endpoint on the rate limited public group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	tokens := ctx.Admin.Group("/api-tokens")
	tokens.POST("", m.handler.CreateToken)
	tokens.GET("", m.handler.ListTokens)
	tokens.DELETE("/:id", m.handler.RevokeToken)

	ctx.Public.POST("/leads", TokenAuthMiddleware(m.store, m.log), m.handler.SubmitLead)
}

var _ apphttp.Module = (*Module)(nil)
