// Package leads provides the lead bounded context module: lead records, the
// stage transition engine and the activities that feed the audit ledger.
package leads

import (
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/leads/handler"
	"crm_backend/internal/leads/ports"
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/service"
	txrepo "crm_backend/internal/transactions/repository"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the leads module. Ledger entries are
// appended through the transactions module's Appender inside the lead
// repository's transactions.
func NewModule(
	pool *pgxpool.Pool,
	ledger txrepo.Appender,
	funnelReader ports.FunnelReader,
	bus events.Bus,
	val *validator.Validator,
	normalizer *phone.Normalizer,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool, ledger)
	svc := service.New(repo, funnelReader, bus, normalizer, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for intake and the scheduler.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository. Notifications resolve recipients
// through it.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")
	leads.GET("", m.handler.List)
	leads.POST("", m.handler.Create)
	leads.GET("/search", m.handler.Search)
	leads.GET("/:id", m.handler.Get)
	leads.PUT("/:id", m.handler.Update)
	leads.DELETE("/:id", m.handler.Delete)
	leads.POST("/:id/restore", m.handler.Restore)

	leads.POST("/:id/move-stage", m.handler.MoveToStage)
	leads.POST("/:id/next-stage", m.handler.MoveToNextStage)
	leads.POST("/:id/previous-stage", m.handler.MoveToPreviousStage)
	leads.POST("/:id/assign", m.handler.Assign)
	leads.POST("/:id/qualify", m.handler.Qualify)
	leads.POST("/:id/unqualify", m.handler.Unqualify)
	leads.POST("/:id/status", m.handler.ChangeStatus)
	leads.POST("/:id/contact", m.handler.RecordContact)
	leads.POST("/:id/notes", m.handler.AddNote)
	leads.POST("/:id/tags", m.handler.AddTags)
	leads.DELETE("/:id/tags", m.handler.RemoveTags)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
