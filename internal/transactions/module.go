// Package transactions provides the lead audit ledger module. Entries are
// appended by other modules inside their own transactions; this module only
// reads them back.
package transactions

import (
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/transactions/handler"
	"crm_backend/internal/transactions/repository"
	"crm_backend/internal/transactions/service"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the ledger bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the ledger module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "transactions"
}

// Repository returns the ledger repository. Other modules use it as an
// Appender inside their own database transactions.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts ledger routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/leads/:id/transactions", m.handler.ListByLead)
	ctx.Protected.GET("/companies/:id/transactions", m.handler.ListByCompany)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
