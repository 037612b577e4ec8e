package service

import (
	"context"
	"errors"
	"time"

	"crm_backend/internal/events"
	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/transport"
	txdomain "crm_backend/internal/transactions/domain"
	"crm_backend/platform/apperr"
	"crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

var (
	errEmptyNote = apperr.Validation("note message is empty")
	errNoTags    = apperr.Validation("no valid tags given")
)

// Assign sets the lead's owner, or clears it when userID is nil. The user
// must belong to the lead's company. Assigning the current owner is a no-op.
func (s *Service) Assign(ctx context.Context, tenantID, id uuid.UUID, actorID, userID *uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	var to *txdomain.UserRef
	if userID != nil {
		user, err := s.repo.GetUser(ctx, tenantID, *userID)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		to = user.Ref()
	}
	known := s.userNames(ctx, tenantID, lead.AssignedTo)

	actor, err := s.actor(ctx, tenantID, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	var previous *uuid.UUID
	updated, changed, err := s.repo.Assign(ctx, tenantID, id, userID, func(before domain.Lead) (txdomain.Record, bool) {
		if sameUser(before.AssignedTo, userID) {
			return txdomain.Record{}, false
		}
		previous = before.AssignedTo
		var from *txdomain.UserRef
		if before.AssignedTo != nil {
			from = &txdomain.UserRef{ID: *before.AssignedTo, Name: nameOr(known[*before.AssignedTo], "User")}
		}
		return txdomain.Assignment(before.Ref(), actor, from, to), true
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !changed {
		return ToLeadResponse(updated), nil
	}

	s.log.Info("lead assigned", "leadId", id, "companyId", tenantID, "assignedTo", userID)
	if userID != nil {
		s.bus.Publish(ctx, events.LeadAssigned{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       updated.ID,
			CompanyID:    updated.CompanyID,
			LeadName:     updated.FullName(),
			AssignedFrom: previous,
			AssignedTo:   *userID,
			ActorID:      actor.UserID,
		})
	}
	return ToLeadResponse(updated), nil
}

// userNames looks up the current owner's name for the assignment entry.
func (s *Service) userNames(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID) map[uuid.UUID]string {
	names := map[uuid.UUID]string{}
	if userID == nil {
		return names
	}
	user, err := s.repo.GetUser(ctx, tenantID, *userID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Warn("failed to resolve assignee name", "userId", *userID, "error", err)
		}
		return names
	}
	names[user.ID] = user.Name
	return names
}

// Qualify marks the lead qualified.
func (s *Service) Qualify(ctx context.Context, tenantID, id uuid.UUID, actorID *uuid.UUID, req transport.QualifyLeadRequest) (transport.LeadResponse, error) {
	return s.setQualification(ctx, tenantID, id, actorID, true, req.Reason)
}

// Unqualify marks the lead unqualified.
func (s *Service) Unqualify(ctx context.Context, tenantID, id uuid.UUID, actorID *uuid.UUID, req transport.QualifyLeadRequest) (transport.LeadResponse, error) {
	return s.setQualification(ctx, tenantID, id, actorID, false, req.Reason)
}

func (s *Service) setQualification(ctx context.Context, tenantID, id uuid.UUID, actorID *uuid.UUID, qualified bool, reason *string) (transport.LeadResponse, error) {
	actor, err := s.actor(ctx, tenantID, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	reason = sanitize.TextPtr(reason)

	updated, _, err := s.repo.SetQualification(ctx, tenantID, id, qualified, actor.UserID, func(before domain.Lead) (txdomain.Record, bool) {
		return txdomain.Qualification(before.Ref(), actor, before.IsQualified, qualified, reason), true
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	s.log.Info("lead qualification set", "leadId", id, "companyId", tenantID, "qualified", qualified)
	return ToLeadResponse(updated), nil
}

// ChangeStatus sets the lifecycle status. The same status is a no-op.
func (s *Service) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, actorID *uuid.UUID, req transport.ChangeStatusRequest) (transport.LeadResponse, error) {
	actor, err := s.actor(ctx, tenantID, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	status := domain.Status(req.Status)

	updated, changed, err := s.repo.SetStatus(ctx, tenantID, id, status, func(before domain.Lead) (txdomain.Record, bool) {
		if before.Status == status {
			return txdomain.Record{}, false
		}
		return txdomain.StatusChange(before.Ref(), actor, string(before.Status), string(status)), true
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if changed {
		s.log.Info("lead status changed", "leadId", id, "companyId", tenantID, "status", status)
	}
	return ToLeadResponse(updated), nil
}

// RecordContact logs an interaction and stamps the last contact time.
func (s *Service) RecordContact(ctx context.Context, tenantID, id uuid.UUID, actorID *uuid.UUID, req transport.RecordContactRequest) (transport.LeadResponse, error) {
	actor, err := s.actor(ctx, tenantID, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	message := sanitize.TextPtr(req.Message)

	updated, _, err := s.repo.TouchContact(ctx, tenantID, id, func(before domain.Lead) (txdomain.Record, bool) {
		return txdomain.Contact(before.Ref(), actor, req.Method, req.Direction, message), true
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(updated), nil
}

// AddNote appends a note to the lead's history.
func (s *Service) AddNote(ctx context.Context, tenantID, id uuid.UUID, actorID *uuid.UUID, req transport.AddNoteRequest) (transport.LeadResponse, error) {
	message := sanitize.Text(req.Message)
	if message == "" {
		return transport.LeadResponse{}, errEmptyNote
	}
	actor, err := s.actor(ctx, tenantID, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead, _, err := s.repo.AppendEntry(ctx, tenantID, id, func(before domain.Lead) (txdomain.Record, bool) {
		return txdomain.Note(before.Ref(), actor, message), true
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead), nil
}

// AddTags merges tags into the lead's set.
func (s *Service) AddTags(ctx context.Context, tenantID, id uuid.UUID, req transport.TagsRequest) (transport.LeadResponse, error) {
	tags := sanitize.Tags(req.Tags)
	if len(tags) == 0 {
		return transport.LeadResponse{}, errNoTags
	}
	lead, err := s.repo.AddTags(ctx, tenantID, id, tags)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead), nil
}

// RemoveTags removes tags from the lead's set.
func (s *Service) RemoveTags(ctx context.Context, tenantID, id uuid.UUID, req transport.TagsRequest) (transport.LeadResponse, error) {
	tags := sanitize.Tags(req.Tags)
	if len(tags) == 0 {
		return transport.LeadResponse{}, errNoTags
	}
	lead, err := s.repo.RemoveTags(ctx, tenantID, id, tags)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead), nil
}

// RecordSLABreach flags a lead that is still in stageID since
// stageChangedAt. It reports false when the lead has moved on, was deleted,
// or the stage no longer carries an SLA.
func (s *Service) RecordSLABreach(ctx context.Context, companyID, leadID, stageID uuid.UUID, stageChangedAt time.Time) (bool, error) {
	lead, stages, err := s.leadWithStages(ctx, companyID, leadID)
	if err != nil {
		if errors.Is(err, domain.ErrLeadNotFound) {
			return false, nil
		}
		return false, err
	}
	stage, err := domain.ResolveTarget(lead, stages, stageID)
	if err != nil || !stage.HasSLA() {
		return false, nil
	}

	updated, changed, err := s.repo.AppendEntry(ctx, companyID, leadID, func(before domain.Lead) (txdomain.Record, bool) {
		if before.StageID != stageID || !before.StageChangedAt.Equal(stageChangedAt) {
			return txdomain.Record{}, false
		}
		ref := txdomain.StageRef{ID: stage.ID, Name: stage.Name}
		return txdomain.StageSLABreach(before.Ref(), ref, stage.Settings.SLAHours), true
	})
	if err != nil {
		if errors.Is(err, domain.ErrLeadNotFound) {
			return false, nil
		}
		return false, err
	}
	if !changed {
		return false, nil
	}

	s.log.Info("lead stage sla breached", "leadId", leadID, "companyId", companyID, "stageId", stageID, "slaHours", stage.Settings.SLAHours)
	s.bus.Publish(ctx, events.LeadStageSLABreached{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     updated.ID,
		CompanyID:  updated.CompanyID,
		LeadName:   updated.FullName(),
		StageID:    stage.ID,
		StageName:  stage.Name,
		SLAHours:   stage.Settings.SLAHours,
		AssignedTo: updated.AssignedTo,
	})
	return true, nil
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
