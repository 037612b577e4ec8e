// Package domain holds the lead audit ledger vocabulary: record types,
// actors and the factories that build each kind of entry.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Type categorizes a ledger entry.
type Type string

const (
	TypeStageChange      Type = "stage_change"
	TypeAssignment       Type = "assignment"
	TypeQualification    Type = "qualification"
	TypeContact          Type = "contact"
	TypeStatusChange     Type = "status_change"
	TypeNote             Type = "note"
	TypeCreation         Type = "creation"
	TypeStageSLABreached Type = "stage_sla_breached"
)

// Types lists every known entry type, used to validate list filters.
var Types = []Type{
	TypeStageChange,
	TypeAssignment,
	TypeQualification,
	TypeContact,
	TypeStatusChange,
	TypeNote,
	TypeCreation,
	TypeStageSLABreached,
}

// Action verbs.
const (
	ActionMoved           = "moved"
	ActionAssigned        = "assigned"
	ActionReassigned      = "reassigned"
	ActionUnassigned      = "unassigned"
	ActionQualified       = "qualified"
	ActionUnqualified     = "unqualified"
	ActionContacted       = "contacted"
	ActionReceivedContact = "received_contact"
	ActionStatusChanged   = "status_changed"
	ActionNoteAdded       = "note_added"
	ActionCreated         = "created"
	ActionSLABreached     = "sla_breached"
)

// Source records where a change came from.
type Source string

const (
	SourceManual     Source = "manual"
	SourceSystem     Source = "system"
	SourceAutomation Source = "automation"
	SourceAPI        Source = "api"
	SourceWebhook    Source = "webhook"
	SourceImport     Source = "import"
)

// Contact directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Record is an entry about to be appended. It is built by the factories in
// this package and never constructed field by field by callers.
type Record struct {
	LeadID                 uuid.UUID
	CompanyID              uuid.UUID
	UserID                 *uuid.UUID
	Type                   Type
	Action                 string
	Description            string
	PreviousData           map[string]any
	CurrentData            map[string]any
	Metadata               map[string]any
	FromStageID            *uuid.UUID
	ToStageID              *uuid.UUID
	AssignedFrom           *uuid.UUID
	AssignedTo             *uuid.UUID
	ContactMethod          *string
	CommunicationDirection *string
	Message                *string
	PreviousStatus         *string
	CurrentStatus          *string
	Qualification          *bool
	QualificationReason    *string
	Source                 Source
	IsAutomated            bool
	IsVisible              bool
	IsImportant            bool
}

// Transaction is a persisted ledger entry.
type Transaction struct {
	Record
	ID        uuid.UUID
	CreatedAt time.Time
}

// IsSystem reports whether the entry has no human actor.
func (t Transaction) IsSystem() bool {
	return t.UserID == nil
}
