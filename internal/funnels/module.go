// Package funnels provides the funnel and stage bounded context module.
package funnels

import (
	"crm_backend/internal/funnels/handler"
	"crm_backend/internal/funnels/repository"
	"crm_backend/internal/funnels/service"
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the funnels bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the funnels module.
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
	return "funnels"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository. The leads module reads funnels and
// stages through it.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts funnel routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/funnel-templates", m.handler.ListTemplates)

	funnels := ctx.Protected.Group("/funnels")
	funnels.GET("", m.handler.ListFunnels)
	funnels.POST("", m.handler.CreateFunnel)
	funnels.GET("/:id", m.handler.GetFunnel)
	funnels.GET("/:id/board", m.handler.GetBoard)
	funnels.PUT("/:id", m.handler.UpdateFunnel)
	funnels.DELETE("/:id", m.handler.DeleteFunnel)
	funnels.POST("/:id/restore", m.handler.RestoreFunnel)
	funnels.POST("/:id/duplicate", m.handler.DuplicateFunnel)

	funnels.GET("/:id/stages", m.handler.ListStages)
	funnels.POST("/:id/stages", m.handler.CreateStage)
	funnels.GET("/:id/stages/:stageId", m.handler.GetStage)
	funnels.PUT("/:id/stages/:stageId", m.handler.UpdateStage)
	funnels.DELETE("/:id/stages/:stageId", m.handler.DeleteStage)
	funnels.POST("/:id/stages/:stageId/restore", m.handler.RestoreStage)
	funnels.PUT("/:id/stages/:stageId/move", m.handler.MoveStage)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
