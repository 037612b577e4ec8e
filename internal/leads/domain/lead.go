// Package domain defines leads and the rules for moving them through a
// funnel's stages.
package domain

import (
	"strings"
	"time"

	txdomain "crm_backend/internal/transactions/domain"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNew         Status = "new"
	StatusContacted   Status = "contacted"
	StatusQualified   Status = "qualified"
	StatusUnqualified Status = "unqualified"
	StatusConverted   Status = "converted"
	StatusLost        Status = "lost"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// DefaultCurrency is stored when a lead is created without one.
const DefaultCurrency = "BRL"

// Lead is a prospect positioned at one stage of one funnel.
type Lead struct {
	ID             uuid.UUID
	CompanyID      uuid.UUID
	FunnelID       uuid.UUID
	StageID        uuid.UUID
	AssignedTo     *uuid.UUID
	FirstName      string
	LastName       *string
	Email          *string
	Phone          *string
	Status         Status
	Priority       Priority
	SourcePlatform *string
	EstimatedValue *float64
	Currency       string
	Tags           []string
	Notes          *string
	IsQualified    *bool
	QualifiedAt    *time.Time
	QualifiedBy    *uuid.UUID
	LastContactAt  *time.Time
	StageChangedAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// FullName joins first and last name.
func (l Lead) FullName() string {
	if l.LastName == nil || *l.LastName == "" {
		return l.FirstName
	}
	return strings.TrimSpace(l.FirstName + " " + *l.LastName)
}

// Ref identifies the lead in ledger entries.
func (l Lead) Ref() txdomain.LeadRef {
	return txdomain.LeadRef{ID: l.ID, CompanyID: l.CompanyID}
}

// Snapshot is stored as the creation entry's current data.
func (l Lead) Snapshot() map[string]any {
	snap := map[string]any{
		"first_name": l.FirstName,
		"funnel_id":  l.FunnelID.String(),
		"stage_id":   l.StageID.String(),
		"status":     string(l.Status),
		"priority":   string(l.Priority),
	}
	if l.Email != nil {
		snap["email"] = *l.Email
	}
	if l.Phone != nil {
		snap["phone"] = *l.Phone
	}
	if l.AssignedTo != nil {
		snap["assigned_to"] = l.AssignedTo.String()
	}
	if l.EstimatedValue != nil {
		snap["estimated_value"] = *l.EstimatedValue
	}
	return snap
}

// User is a member of the lead's company, as leads need it.
type User struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	Email     string
}

// Ref returns the user as it appears in assignment entries.
func (u User) Ref() *txdomain.UserRef {
	return &txdomain.UserRef{ID: u.ID, Name: u.Name}
}
