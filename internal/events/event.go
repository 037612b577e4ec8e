// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published after a lead and its creation entry are committed.
// StageSLAHours is zero when the landing stage has no SLA.
type LeadCreated struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	CompanyID      uuid.UUID  `json:"companyId"`
	FunnelID       uuid.UUID  `json:"funnelId"`
	StageID        uuid.UUID  `json:"stageId"`
	StageSLAHours  int        `json:"stageSlaHours,omitempty"`
	StageChangedAt time.Time  `json:"stageChangedAt"`
	CreatedBy      *uuid.UUID `json:"createdBy,omitempty"`
	Source         string     `json:"source"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStageChanged is published after a stage transition commits.
type LeadStageChanged struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	CompanyID      uuid.UUID  `json:"companyId"`
	FunnelID       uuid.UUID  `json:"funnelId"`
	FromStageID    uuid.UUID  `json:"fromStageId"`
	ToStageID      uuid.UUID  `json:"toStageId"`
	StageSLAHours  int        `json:"stageSlaHours,omitempty"`
	ActorID        *uuid.UUID `json:"actorId,omitempty"`
	StageChangedAt time.Time  `json:"stageChangedAt"`
}

func (e LeadStageChanged) EventName() string { return "leads.lead.stage_changed" }

// LeadAssigned is published when a lead gets a new owner.
type LeadAssigned struct {
	BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	CompanyID    uuid.UUID  `json:"companyId"`
	LeadName     string     `json:"leadName"`
	AssignedFrom *uuid.UUID `json:"assignedFrom,omitempty"`
	AssignedTo   uuid.UUID  `json:"assignedTo"`
	ActorID      *uuid.UUID `json:"actorId,omitempty"`
}

func (e LeadAssigned) EventName() string { return "leads.lead.assigned" }

// LeadStageSLABreached is published by the scheduler when a lead has been in a
// stage longer than the stage's SLA allows.
type LeadStageSLABreached struct {
	BaseEvent
	LeadID     uuid.UUID  `json:"leadId"`
	CompanyID  uuid.UUID  `json:"companyId"`
	LeadName   string     `json:"leadName"`
	StageID    uuid.UUID  `json:"stageId"`
	StageName  string     `json:"stageName"`
	SLAHours   int        `json:"slaHours"`
	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
}

func (e LeadStageSLABreached) EventName() string { return "leads.lead.stage_sla_breached" }
