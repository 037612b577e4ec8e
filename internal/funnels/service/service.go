// Package service implements funnel and stage use cases on top of the
// repository's transactional operations.
package service

import (
	"context"
	"errors"

	"crm_backend/internal/funnels/domain"
	"crm_backend/internal/funnels/repository"
	"crm_backend/internal/funnels/transport"
	"crm_backend/platform/logger"
	"crm_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service provides funnel and stage operations.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new funnels service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListTemplates returns the built-in funnel templates.
func (s *Service) ListTemplates() ([]transport.TemplateResponse, error) {
	templates, err := domain.Templates()
	if err != nil {
		return nil, err
	}
	out := make([]transport.TemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateResponse(t))
	}
	return out, nil
}

// CreateFunnel creates a funnel, seeding its stages from a template when one
// is named.
func (s *Service) CreateFunnel(ctx context.Context, tenantID, actorID uuid.UUID, req transport.CreateFunnelRequest) (transport.FunnelResponse, error) {
	var seeds []domain.Stage
	if req.Template != "" {
		tpl, err := domain.FindTemplate(req.Template)
		if err != nil {
			return transport.FunnelResponse{}, err
		}
		seeds = tpl.StageSeeds()
	}

	funnelType := domain.FunnelTypeFunnel
	if req.Type != "" {
		funnelType = domain.FunnelType(req.Type)
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	f := domain.Funnel{
		CompanyID:   tenantID,
		Name:        sanitize.Text(req.Name),
		Description: sanitize.TextPtr(req.Description),
		Type:        funnelType,
		IsActive:    isActive,
		CreatedBy:   &actorID,
		Settings:    req.Settings,
	}

	created, stages, err := s.repo.CreateFunnel(ctx, f, seeds)
	if err != nil {
		return transport.FunnelResponse{}, err
	}

	s.log.Info("funnel created", "funnelId", created.ID, "companyId", tenantID, "template", req.Template, "stages", len(stages))
	return ToFunnelResponse(created, stages), nil
}

// GetFunnel returns a funnel with its active stages in order.
func (s *Service) GetFunnel(ctx context.Context, tenantID, id uuid.UUID) (transport.FunnelResponse, error) {
	f, err := s.repo.GetFunnel(ctx, tenantID, id, false)
	if err != nil {
		return transport.FunnelResponse{}, err
	}
	stages, err := s.repo.ListStages(ctx, f.ID, false)
	if err != nil {
		return transport.FunnelResponse{}, err
	}
	return ToFunnelResponse(f, stages), nil
}

// ListFunnels lists the tenant's funnels.
func (s *Service) ListFunnels(ctx context.Context, tenantID uuid.UUID, req transport.ListFunnelsRequest) (transport.FunnelListResponse, error) {
	funnels, err := s.repo.ListFunnels(ctx, tenantID, req.IncludeDeleted)
	if err != nil {
		return transport.FunnelListResponse{}, err
	}
	items := make([]transport.FunnelResponse, 0, len(funnels))
	for _, f := range funnels {
		items = append(items, ToFunnelResponse(f, nil))
	}
	return transport.FunnelListResponse{Items: items}, nil
}

// UpdateFunnel applies a partial update.
func (s *Service) UpdateFunnel(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateFunnelRequest) (transport.FunnelResponse, error) {
	params := repository.UpdateFunnelParams{
		Description: sanitize.TextPtr(req.Description),
		IsActive:    req.IsActive,
		Settings:    req.Settings,
	}
	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		params.Name = &name
	}

	f, err := s.repo.UpdateFunnel(ctx, tenantID, id, params)
	if err != nil {
		return transport.FunnelResponse{}, err
	}
	return ToFunnelResponse(f, nil), nil
}

// DeleteFunnel soft deletes a funnel together with its active stages.
func (s *Service) DeleteFunnel(ctx context.Context, tenantID, id uuid.UUID) error {
	deletedAt, err := s.repo.DeleteFunnelCascade(ctx, tenantID, id)
	if err != nil {
		return err
	}
	s.log.Info("funnel deleted", "funnelId", id, "companyId", tenantID, "deletedAt", deletedAt)
	return nil
}

// RestoreFunnel restores a funnel and the stages deleted with it.
func (s *Service) RestoreFunnel(ctx context.Context, tenantID, id uuid.UUID) (transport.RestoreFunnelResponse, error) {
	restored, err := s.repo.RestoreFunnelCascade(ctx, tenantID, id)
	if err != nil {
		return transport.RestoreFunnelResponse{}, err
	}
	funnel, err := s.GetFunnel(ctx, tenantID, id)
	if err != nil {
		return transport.RestoreFunnelResponse{}, err
	}
	s.log.Info("funnel restored", "funnelId", id, "companyId", tenantID, "restoredStages", restored)
	return transport.RestoreFunnelResponse{Funnel: funnel, RestoredStages: restored}, nil
}

// DuplicateFunnel copies a funnel and its active stages.
func (s *Service) DuplicateFunnel(ctx context.Context, tenantID, actorID, id uuid.UUID) (transport.FunnelResponse, error) {
	f, stages, err := s.repo.DuplicateFunnel(ctx, tenantID, id, &actorID)
	if err != nil {
		return transport.FunnelResponse{}, err
	}
	return ToFunnelResponse(f, stages), nil
}

// GetBoard returns the funnel's active stages with their active leads.
func (s *Service) GetBoard(ctx context.Context, tenantID, id uuid.UUID) (transport.BoardResponse, error) {
	f, err := s.repo.GetFunnel(ctx, tenantID, id, false)
	if err != nil {
		return transport.BoardResponse{}, err
	}

	var (
		stages []domain.Stage
		leads  []repository.BoardLead
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stages, err = s.repo.ListStages(gctx, f.ID, false)
		return err
	})
	g.Go(func() error {
		var err error
		leads, err = s.repo.ListBoardLeads(gctx, tenantID, f.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.BoardResponse{}, err
	}

	byStage := make(map[uuid.UUID][]transport.BoardLeadResponse, len(stages))
	for _, l := range leads {
		byStage[l.StageID] = append(byStage[l.StageID], toBoardLeadResponse(l))
	}

	columns := make([]transport.BoardColumn, 0, len(stages))
	for _, st := range stages {
		columnLeads := byStage[st.ID]
		if columnLeads == nil {
			columnLeads = []transport.BoardLeadResponse{}
		}
		columns = append(columns, transport.BoardColumn{
			Stage: ToStageResponse(st, stages),
			Leads: columnLeads,
			Count: len(columnLeads),
		})
	}

	return transport.BoardResponse{Funnel: ToFunnelResponse(f, nil), Columns: columns}, nil
}

// ListStages returns the funnel's stages by order.
func (s *Service) ListStages(ctx context.Context, tenantID, funnelID uuid.UUID, req transport.ListStagesRequest) (transport.StageListResponse, error) {
	if _, err := s.repo.GetFunnel(ctx, tenantID, funnelID, req.IncludeDeleted); err != nil {
		return transport.StageListResponse{}, err
	}
	stages, err := s.repo.ListStages(ctx, funnelID, req.IncludeDeleted)
	if err != nil {
		return transport.StageListResponse{}, err
	}
	return toStageList(stages), nil
}

// GetStage returns one stage of the funnel.
func (s *Service) GetStage(ctx context.Context, tenantID, funnelID, stageID uuid.UUID) (transport.StageResponse, error) {
	if _, err := s.repo.GetFunnel(ctx, tenantID, funnelID, false); err != nil {
		return transport.StageResponse{}, err
	}
	st, err := s.repo.GetStage(ctx, funnelID, stageID)
	if err != nil {
		return transport.StageResponse{}, err
	}
	siblings, err := s.repo.ListStages(ctx, funnelID, false)
	if err != nil {
		return transport.StageResponse{}, err
	}
	return ToStageResponse(st, siblings), nil
}

// CreateStage appends a stage, or inserts it at the requested order.
func (s *Service) CreateStage(ctx context.Context, tenantID, funnelID uuid.UUID, req transport.CreateStageRequest) (transport.StageResponse, error) {
	if _, err := s.repo.GetFunnel(ctx, tenantID, funnelID, false); err != nil {
		return transport.StageResponse{}, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	st := domain.Stage{
		FunnelID:    funnelID,
		Name:        sanitize.Text(req.Name),
		Description: sanitize.TextPtr(req.Description),
		Type:        domain.StageType(req.Type),
		Color:       req.Color,
		IsActive:    isActive,
	}
	if req.Settings != nil {
		st.Settings = fromSettingsDTO(*req.Settings)
	}

	created, err := s.repo.CreateStage(ctx, st, req.Order)
	if err != nil {
		return transport.StageResponse{}, err
	}
	siblings, err := s.repo.ListStages(ctx, funnelID, false)
	if err != nil {
		return transport.StageResponse{}, err
	}
	return ToStageResponse(created, siblings), nil
}

// UpdateStage applies a partial update. The order cannot be changed here.
func (s *Service) UpdateStage(ctx context.Context, tenantID, funnelID, stageID uuid.UUID, req transport.UpdateStageRequest) (transport.StageResponse, error) {
	if _, err := s.repo.GetFunnel(ctx, tenantID, funnelID, false); err != nil {
		return transport.StageResponse{}, err
	}

	params := repository.UpdateStageParams{
		Description: sanitize.TextPtr(req.Description),
		Color:       req.Color,
		IsActive:    req.IsActive,
	}
	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		params.Name = &name
	}
	if req.Type != nil {
		t := domain.StageType(*req.Type)
		params.Type = &t
	}
	if req.Settings != nil {
		settings := fromSettingsDTO(*req.Settings)
		params.Settings = &settings
	}

	st, err := s.repo.UpdateStage(ctx, funnelID, stageID, params)
	if err != nil {
		return transport.StageResponse{}, err
	}
	siblings, err := s.repo.ListStages(ctx, funnelID, false)
	if err != nil {
		return transport.StageResponse{}, err
	}
	return ToStageResponse(st, siblings), nil
}

// MoveStage places a stage at a new order and returns the funnel's full
// ordered stage list. Moving to the current order changes nothing.
func (s *Service) MoveStage(ctx context.Context, tenantID, funnelID, stageID uuid.UUID, newOrder int) (transport.StageListResponse, error) {
	if _, err := s.repo.GetFunnel(ctx, tenantID, funnelID, false); err != nil {
		return transport.StageListResponse{}, err
	}
	if err := s.repo.MoveStage(ctx, funnelID, stageID, newOrder); err != nil {
		return transport.StageListResponse{}, err
	}
	stages, err := s.repo.ListStages(ctx, funnelID, false)
	if err != nil {
		return transport.StageListResponse{}, err
	}
	return toStageList(stages), nil
}

// DeleteStage soft deletes a stage, or removes it and renumbers the rest
// when force is set.
func (s *Service) DeleteStage(ctx context.Context, tenantID, funnelID, stageID uuid.UUID, force bool) error {
	if _, err := s.repo.GetFunnel(ctx, tenantID, funnelID, false); err != nil {
		return err
	}
	if force {
		if err := s.repo.HardDeleteStage(ctx, funnelID, stageID); err != nil {
			return err
		}
		s.log.Info("stage permanently deleted", "funnelId", funnelID, "stageId", stageID)
		return nil
	}
	return s.repo.SoftDeleteStage(ctx, funnelID, stageID)
}

// RestoreStage restores a soft deleted stage at the end of the funnel.
func (s *Service) RestoreStage(ctx context.Context, tenantID, funnelID, stageID uuid.UUID) (transport.StageResponse, error) {
	if _, err := s.repo.GetFunnel(ctx, tenantID, funnelID, true); err != nil {
		return transport.StageResponse{}, err
	}
	st, err := s.repo.RestoreStage(ctx, funnelID, stageID)
	if err != nil {
		if errors.Is(err, domain.ErrFunnelDeleted) {
			return transport.StageResponse{}, domain.ErrFunnelDeleted.WithDetails("restore the funnel first")
		}
		return transport.StageResponse{}, err
	}
	siblings, err := s.repo.ListStages(ctx, funnelID, false)
	if err != nil {
		return transport.StageResponse{}, err
	}
	return ToStageResponse(st, siblings), nil
}
