package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// LeadRef identifies the lead an entry belongs to.
type LeadRef struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
}

// StageRef is a stage as it appears in an entry.
type StageRef struct {
	ID   uuid.UUID
	Name string
}

// UserRef is a user as it appears in an assignment entry.
type UserRef struct {
	ID   uuid.UUID
	Name string
}

func newRecord(lead LeadRef, actor Actor, typ Type, action, description string) Record {
	return Record{
		LeadID:      lead.ID,
		CompanyID:   lead.CompanyID,
		UserID:      actor.UserID,
		Type:        typ,
		Action:      action,
		Description: fmt.Sprintf("%s %s", actor.displayName(), description),
		Source:      actor.Source,
		IsAutomated: actor.IsSystem(),
		IsVisible:   true,
	}
}

// StageChange records a lead moving between stages of its funnel.
func StageChange(lead LeadRef, actor Actor, from, to StageRef) Record {
	rec := newRecord(lead, actor, TypeStageChange, ActionMoved,
		fmt.Sprintf("moved lead from '%s' to '%s'", from.Name, to.Name))
	rec.FromStageID = uuidPtr(from.ID)
	rec.ToStageID = uuidPtr(to.ID)
	rec.PreviousData = map[string]any{"stage_id": from.ID.String(), "stage_name": from.Name}
	rec.CurrentData = map[string]any{"stage_id": to.ID.String(), "stage_name": to.Name}
	rec.IsImportant = true
	return rec
}

// Assignment records an owner change. Either side may be nil.
func Assignment(lead LeadRef, actor Actor, from, to *UserRef) Record {
	action, description := ActionAssigned, ""
	switch {
	case to == nil:
		action, description = ActionUnassigned, "unassigned lead"
	case from == nil:
		description = fmt.Sprintf("assigned lead to %s", to.Name)
	default:
		action = ActionReassigned
		description = fmt.Sprintf("reassigned lead from %s to %s", from.Name, to.Name)
	}

	rec := newRecord(lead, actor, TypeAssignment, action, description)
	rec.PreviousData = map[string]any{"assigned_to": userRefID(from)}
	rec.CurrentData = map[string]any{"assigned_to": userRefID(to)}
	if from != nil {
		rec.AssignedFrom = uuidPtr(from.ID)
	}
	if to != nil {
		rec.AssignedTo = uuidPtr(to.ID)
	}
	rec.IsImportant = true
	return rec
}

// Qualification records a qualify or unqualify decision.
func Qualification(lead LeadRef, actor Actor, previous *bool, qualified bool, reason *string) Record {
	action, description := ActionQualified, "qualified the lead"
	if !qualified {
		action, description = ActionUnqualified, "marked lead as unqualified"
	}
	if reason != nil && *reason != "" {
		description += ": " + *reason
	}

	rec := newRecord(lead, actor, TypeQualification, action, description)
	rec.PreviousData = map[string]any{"is_qualified": boolValue(previous)}
	rec.CurrentData = map[string]any{"is_qualified": qualified}
	rec.Qualification = &qualified
	rec.QualificationReason = reason
	rec.IsImportant = true
	return rec
}

// Contact records an interaction. direction is inbound or outbound.
func Contact(lead LeadRef, actor Actor, method, direction string, message *string) Record {
	action, description := ActionContacted, fmt.Sprintf("contacted lead via %s", method)
	if direction == DirectionInbound {
		action, description = ActionReceivedContact, fmt.Sprintf("received contact via %s", method)
	}

	rec := newRecord(lead, actor, TypeContact, action, description)
	rec.ContactMethod = &method
	rec.CommunicationDirection = &direction
	rec.Message = message
	return rec
}

// StatusChange records a lifecycle status change.
func StatusChange(lead LeadRef, actor Actor, from, to string) Record {
	rec := newRecord(lead, actor, TypeStatusChange, ActionStatusChanged,
		fmt.Sprintf("changed status from '%s' to '%s'", from, to))
	rec.PreviousStatus = &from
	rec.CurrentStatus = &to
	rec.PreviousData = map[string]any{"status": from}
	rec.CurrentData = map[string]any{"status": to}
	return rec
}

// Note records a free-text note.
func Note(lead LeadRef, actor Actor, message string) Record {
	rec := newRecord(lead, actor, TypeNote, ActionNoteAdded, "added a note")
	rec.Message = &message
	return rec
}

// Creation records a lead being created. snapshot is stored as current data.
func Creation(lead LeadRef, actor Actor, platform *string, snapshot map[string]any) Record {
	description := "created the lead"
	if platform != nil && *platform != "" {
		description += " from " + *platform
	}
	rec := newRecord(lead, actor, TypeCreation, ActionCreated, description)
	rec.CurrentData = snapshot
	return rec
}

// StageSLABreach records that a lead sat in a stage longer than its SLA.
func StageSLABreach(lead LeadRef, stage StageRef, slaHours int) Record {
	rec := newRecord(lead, SystemActor(), TypeStageSLABreached, ActionSLABreached,
		fmt.Sprintf("flagged that the lead exceeded the %dh SLA of stage '%s'", slaHours, stage.Name))
	rec.ToStageID = uuidPtr(stage.ID)
	rec.Metadata = map[string]any{"sla_hours": slaHours, "stage_id": stage.ID.String()}
	rec.IsImportant = true
	return rec
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

func userRefID(u *UserRef) any {
	if u == nil {
		return nil
	}
	return u.ID.String()
}

func boolValue(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
