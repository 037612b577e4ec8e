package service

import (
	"context"

	"crm_backend/internal/events"
	funnels "crm_backend/internal/funnels/domain"
	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/transport"
	txdomain "crm_backend/internal/transactions/domain"

	"github.com/google/uuid"
)

// MoveToStage moves a lead to another stage of its own funnel. A stage that
// is missing, deleted or owned by another funnel is rejected before anything
// is written. Moving to the current stage succeeds without a ledger entry.
func (s *Service) MoveToStage(ctx context.Context, tenantID, id uuid.UUID, actorID *uuid.UUID, stageID uuid.UUID) (transport.LeadResponse, error) {
	lead, stages, err := s.leadWithStages(ctx, tenantID, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	target, err := domain.ResolveTarget(lead, stages, stageID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return s.transition(ctx, lead, stages, target, actorID)
}

// MoveToNextStage moves a lead to the next live stage of its funnel.
func (s *Service) MoveToNextStage(ctx context.Context, tenantID, id uuid.UUID, actorID *uuid.UUID) (transport.LeadResponse, error) {
	return s.moveAdjacent(ctx, tenantID, id, actorID, domain.Forward)
}

// MoveToPreviousStage moves a lead to the previous live stage of its funnel.
func (s *Service) MoveToPreviousStage(ctx context.Context, tenantID, id uuid.UUID, actorID *uuid.UUID) (transport.LeadResponse, error) {
	return s.moveAdjacent(ctx, tenantID, id, actorID, domain.Backward)
}

func (s *Service) moveAdjacent(ctx context.Context, tenantID, id uuid.UUID, actorID *uuid.UUID, dir domain.Direction) (transport.LeadResponse, error) {
	lead, stages, err := s.leadWithStages(ctx, tenantID, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	target, err := domain.ResolveAdjacent(lead, stages, dir)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return s.transition(ctx, lead, stages, target, actorID)
}

// leadWithStages loads the lead and every stage of its funnel, deleted ones
// included so the stage being left can still be named.
func (s *Service) leadWithStages(ctx context.Context, tenantID, id uuid.UUID) (domain.Lead, []funnels.Stage, error) {
	lead, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return domain.Lead{}, nil, err
	}
	stages, err := s.funnels.ListStages(ctx, lead.FunnelID, true)
	if err != nil {
		return domain.Lead{}, nil, err
	}
	return lead, stages, nil
}

func (s *Service) transition(ctx context.Context, lead domain.Lead, stages []funnels.Stage, target funnels.Stage, actorID *uuid.UUID) (transport.LeadResponse, error) {
	if lead.StageID == target.ID {
		return ToLeadResponse(lead), nil
	}

	actor, err := s.actor(ctx, lead.CompanyID, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	names := domain.StageNames(stages)
	var fromID uuid.UUID
	moved, changed, err := s.repo.MoveToStage(ctx, lead.CompanyID, lead.ID, target.ID, func(before domain.Lead) (txdomain.Record, bool) {
		if before.StageID == target.ID {
			return txdomain.Record{}, false
		}
		fromID = before.StageID
		from := txdomain.StageRef{ID: before.StageID, Name: names[before.StageID]}
		to := txdomain.StageRef{ID: target.ID, Name: target.Name}
		return txdomain.StageChange(before.Ref(), actor, from, to), true
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !changed {
		return ToLeadResponse(moved), nil
	}

	s.log.Info("lead moved", "leadId", moved.ID, "companyId", moved.CompanyID, "fromStageId", fromID, "toStageId", target.ID)
	s.bus.Publish(ctx, events.LeadStageChanged{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         moved.ID,
		CompanyID:      moved.CompanyID,
		FunnelID:       moved.FunnelID,
		FromStageID:    fromID,
		ToStageID:      target.ID,
		StageSLAHours:  target.Settings.SLAHours,
		ActorID:        actor.UserID,
		StageChangedAt: moved.StageChangedAt,
	})
	return ToLeadResponse(moved), nil
}
