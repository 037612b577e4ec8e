// Package service implements lead use cases. Every audited change is written
// together with its ledger entry by the repository; events are published
// only after that transaction commits.
package service

import (
	"context"
	"errors"

	"crm_backend/internal/events"
	funnels "crm_backend/internal/funnels/domain"
	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/ports"
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/transport"
	txdomain "crm_backend/internal/transactions/domain"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"
	"crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	searchLimit     = 20
)

var errStageNotEditable = apperr.Validation("stage cannot be changed through update; use the move endpoints")

// Service provides lead operations.
type Service struct {
	repo    repository.Repository
	funnels ports.FunnelReader
	bus     events.Bus
	phone   *phone.Normalizer
	log     *logger.Logger
}

// New creates a new leads service.
func New(repo repository.Repository, funnelReader ports.FunnelReader, bus events.Bus, normalizer *phone.Normalizer, log *logger.Logger) *Service {
	return &Service{repo: repo, funnels: funnelReader, bus: bus, phone: normalizer, log: log}
}

// Create creates a lead in the requested stage, or the funnel's first stage
// when none is given.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	funnel, err := s.funnels.GetFunnel(ctx, tenantID, req.FunnelID, false)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	stages, err := s.funnels.ListStages(ctx, funnel.ID, false)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	var stage funnels.Stage
	if req.StageID != nil {
		stage, err = domain.ResolveTarget(domain.Lead{FunnelID: funnel.ID}, stages, *req.StageID)
	} else {
		stage, err = domain.FirstStage(stages)
	}
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if req.AssignedTo != nil {
		if _, err := s.repo.GetUser(ctx, tenantID, *req.AssignedTo); err != nil {
			return transport.LeadResponse{}, err
		}
	}

	priority := domain.PriorityMedium
	if req.Priority != "" {
		priority = domain.Priority(req.Priority)
	}

	lead := domain.Lead{
		ID:             uuid.New(),
		CompanyID:      tenantID,
		FunnelID:       funnel.ID,
		StageID:        stage.ID,
		AssignedTo:     req.AssignedTo,
		FirstName:      sanitize.Text(req.FirstName),
		LastName:       sanitize.TextPtr(req.LastName),
		Email:          normalizeEmail(req.Email),
		Phone:          s.phone.E164Ptr(req.Phone),
		Status:         domain.StatusNew,
		Priority:       priority,
		SourcePlatform: sanitize.TextPtr(req.SourcePlatform),
		EstimatedValue: req.EstimatedValue,
		Currency:       currencyOrDefault(req.Currency),
		Tags:           sanitize.Tags(req.Tags),
		Notes:          sanitize.TextPtr(req.Notes),
	}

	actor, err := s.actor(ctx, tenantID, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	created, err := s.create(ctx, lead, stage, actor)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(created), nil
}

// Intake creates a lead posted with a company API token. It lands in the
// funnel's entry stage; a resubmission of the same person returns the
// existing lead with duplicate set.
func (s *Service) Intake(ctx context.Context, companyID uuid.UUID, tokenName string, req transport.IntakeLeadRequest) (transport.LeadResponse, bool, error) {
	funnel, err := s.funnels.GetFunnel(ctx, companyID, req.FunnelID, false)
	if err != nil {
		return transport.LeadResponse{}, false, err
	}
	stages, err := s.funnels.ListStages(ctx, funnel.ID, false)
	if err != nil {
		return transport.LeadResponse{}, false, err
	}
	entry, err := domain.EntryStage(stages)
	if err != nil {
		return transport.LeadResponse{}, false, err
	}

	lead := domain.Lead{
		ID:             uuid.New(),
		CompanyID:      companyID,
		FunnelID:       funnel.ID,
		StageID:        entry.ID,
		FirstName:      sanitize.Text(req.FirstName),
		LastName:       sanitize.TextPtr(req.LastName),
		Email:          normalizeEmail(req.Email),
		Phone:          s.phone.E164Ptr(req.Phone),
		Status:         domain.StatusNew,
		Priority:       domain.PriorityMedium,
		SourcePlatform: sanitize.TextPtr(req.SourcePlatform),
		EstimatedValue: req.EstimatedValue,
		Currency:       domain.DefaultCurrency,
		Tags:           sanitize.Tags(req.Tags),
		Notes:          sanitize.TextPtr(req.Notes),
	}

	existing, found, err := s.repo.FindDuplicate(ctx, repository.DuplicateKey{
		CompanyID: companyID,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Phone:     lead.Phone,
	})
	if err != nil {
		return transport.LeadResponse{}, false, err
	}
	if found {
		s.log.Info("intake duplicate", "leadId", existing.ID, "companyId", companyID)
		return ToLeadResponse(existing), true, nil
	}

	created, err := s.create(ctx, lead, entry, txdomain.APIActor(tokenName))
	if err != nil {
		return transport.LeadResponse{}, false, err
	}
	return ToLeadResponse(created), false, nil
}

func (s *Service) create(ctx context.Context, lead domain.Lead, stage funnels.Stage, actor txdomain.Actor) (domain.Lead, error) {
	rec := txdomain.Creation(lead.Ref(), actor, lead.SourcePlatform, lead.Snapshot())
	created, err := s.repo.Create(ctx, lead, rec)
	if err != nil {
		return domain.Lead{}, err
	}

	s.log.Info("lead created", "leadId", created.ID, "companyId", created.CompanyID, "stageId", created.StageID, "source", actor.Source)
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         created.ID,
		CompanyID:      created.CompanyID,
		FunnelID:       created.FunnelID,
		StageID:        created.StageID,
		StageSLAHours:  stage.Settings.SLAHours,
		StageChangedAt: created.StageChangedAt,
		CreatedBy:      actor.UserID,
		Source:         string(actor.Source),
	})
	if created.AssignedTo != nil {
		s.bus.Publish(ctx, events.LeadAssigned{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     created.ID,
			CompanyID:  created.CompanyID,
			LeadName:   created.FullName(),
			AssignedTo: *created.AssignedTo,
			ActorID:    actor.UserID,
		})
	}
	return created, nil
}

// Get returns an active lead.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead), nil
}

// List pages the company's active leads, newest first.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	params := repository.ListParams{
		CompanyID:  tenantID,
		FunnelID:   parseOptionalUUID(req.FunnelID),
		StageID:    parseOptionalUUID(req.StageID),
		AssignedTo: parseOptionalUUID(req.AssignedTo),
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	if req.Status != "" {
		status := domain.Status(req.Status)
		params.Status = &status
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	return transport.LeadListResponse{
		Items:    toLeadResponses(leads),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Search matches first name, last name or email.
func (s *Service) Search(ctx context.Context, tenantID uuid.UUID, req transport.SearchLeadsRequest) ([]transport.LeadResponse, error) {
	leads, err := s.repo.Search(ctx, tenantID, sanitize.Text(req.Q), searchLimit)
	if err != nil {
		return nil, err
	}
	return toLeadResponses(leads), nil
}

// Update edits descriptive fields. Stage changes are rejected here so that
// every move goes through the transition engine.
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	if req.StageID != nil {
		return transport.LeadResponse{}, errStageNotEditable
	}

	params := repository.UpdateParams{
		FirstName:      sanitize.TextPtr(req.FirstName),
		LastName:       sanitize.TextPtr(req.LastName),
		Email:          normalizeEmail(req.Email),
		Phone:          s.phone.E164Ptr(req.Phone),
		SourcePlatform: sanitize.TextPtr(req.SourcePlatform),
		EstimatedValue: req.EstimatedValue,
		Currency:       upperPtr(req.Currency),
		Notes:          sanitize.TextPtr(req.Notes),
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		params.Priority = &priority
	}

	lead, err := s.repo.Update(ctx, tenantID, id, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	s.log.Info("lead updated", "leadId", id, "companyId", tenantID)
	return ToLeadResponse(lead), nil
}

// Delete soft deletes a lead.
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, tenantID, id); err != nil {
		return err
	}
	s.log.Info("lead deleted", "leadId", id, "companyId", tenantID)
	return nil
}

// Restore brings back a soft deleted lead.
func (s *Service) Restore(ctx context.Context, tenantID, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.Restore(ctx, tenantID, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	s.log.Info("lead restored", "leadId", id, "companyId", tenantID)
	return ToLeadResponse(lead), nil
}

// actor resolves who is acting. A nil id is the system; an unknown user
// keeps the id with a generic name.
func (s *Service) actor(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID) (txdomain.Actor, error) {
	if actorID == nil {
		return txdomain.SystemActor(), nil
	}
	user, err := s.repo.GetUser(ctx, tenantID, *actorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return txdomain.UserActor(*actorID, ""), nil
		}
		return txdomain.Actor{}, err
	}
	return txdomain.UserActor(user.ID, user.Name), nil
}
