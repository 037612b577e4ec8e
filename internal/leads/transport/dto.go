package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	FunnelID       uuid.UUID  `json:"funnelId" validate:"required"`
	StageID        *uuid.UUID `json:"stageId,omitempty"`
	AssignedTo     *uuid.UUID `json:"assignedTo,omitempty"`
	FirstName      string     `json:"firstName" validate:"required,min=1,max=100"`
	LastName       *string    `json:"lastName,omitempty" validate:"omitempty,max=100"`
	Email          *string    `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone          *string    `json:"phone,omitempty" validate:"omitempty,min=5,max=32"`
	Priority       string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	SourcePlatform *string    `json:"sourcePlatform,omitempty" validate:"omitempty,max=50"`
	EstimatedValue *float64   `json:"estimatedValue,omitempty" validate:"omitempty,min=0"`
	Currency       string     `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Tags           []string   `json:"tags,omitempty" validate:"omitempty,max=50,dive,min=1,max=50"`
	Notes          *string    `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// UpdateLeadRequest edits descriptive fields. StageID is accepted only to
// reject it: stage changes go through the move endpoints.
type UpdateLeadRequest struct {
	StageID        *uuid.UUID `json:"stageId,omitempty"`
	FirstName      *string    `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName       *string    `json:"lastName,omitempty" validate:"omitempty,max=100"`
	Email          *string    `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone          *string    `json:"phone,omitempty" validate:"omitempty,min=5,max=32"`
	Priority       *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	SourcePlatform *string    `json:"sourcePlatform,omitempty" validate:"omitempty,max=50"`
	EstimatedValue *float64   `json:"estimatedValue,omitempty" validate:"omitempty,min=0"`
	Currency       *string    `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Notes          *string    `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

type ListLeadsRequest struct {
	FunnelID   string `form:"funnelId" validate:"omitempty,uuid"`
	StageID    string `form:"stageId" validate:"omitempty,uuid"`
	Status     string `form:"status" validate:"omitempty,oneof=new contacted qualified unqualified converted lost"`
	AssignedTo string `form:"assignedTo" validate:"omitempty,uuid"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type SearchLeadsRequest struct {
	Q string `form:"q" validate:"required,min=3,max=100"`
}

// MoveStageRequest also accepts the snake_case "stage_id" key used by older
// clients; "stageId" wins when both are sent.
type MoveStageRequest struct {
	StageID uuid.UUID `json:"stageId" validate:"required"`
}

func (r *MoveStageRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		StageID      uuid.UUID `json:"stageId"`
		SnakeStageID uuid.UUID `json:"stage_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.StageID = raw.StageID
	if r.StageID == uuid.Nil {
		r.StageID = raw.SnakeStageID
	}
	return nil
}

type AssignLeadRequest struct {
	UserID OptionalUUID `json:"userId" validate:"-"`
}

type QualifyLeadRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified unqualified converted lost"`
}

type RecordContactRequest struct {
	Method    string  `json:"method" validate:"required,oneof=phone email whatsapp sms meeting other"`
	Direction string  `json:"direction" validate:"required,oneof=inbound outbound"`
	Message   *string `json:"message,omitempty" validate:"omitempty,max=5000"`
}

type AddNoteRequest struct {
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

type TagsRequest struct {
	Tags []string `json:"tags" validate:"required,min=1,max=50,dive,min=1,max=50"`
}

// IntakeLeadRequest is posted by external systems with a company API token.
type IntakeLeadRequest struct {
	FunnelID       uuid.UUID `json:"funnelId" validate:"required"`
	FirstName      string    `json:"firstName" validate:"required,min=1,max=100"`
	LastName       *string   `json:"lastName,omitempty" validate:"omitempty,max=100"`
	Email          *string   `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone          *string   `json:"phone,omitempty" validate:"omitempty,min=5,max=32"`
	SourcePlatform *string   `json:"sourcePlatform,omitempty" validate:"omitempty,max=50"`
	EstimatedValue *float64  `json:"estimatedValue,omitempty" validate:"omitempty,min=0"`
	Tags           []string  `json:"tags,omitempty" validate:"omitempty,max=50,dive,min=1,max=50"`
	Notes          *string   `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

type LeadResponse struct {
	ID             uuid.UUID  `json:"id"`
	CompanyID      uuid.UUID  `json:"companyId"`
	FunnelID       uuid.UUID  `json:"funnelId"`
	StageID        uuid.UUID  `json:"stageId"`
	AssignedTo     *uuid.UUID `json:"assignedTo,omitempty"`
	FirstName      string     `json:"firstName"`
	LastName       *string    `json:"lastName,omitempty"`
	FullName       string     `json:"fullName"`
	Email          *string    `json:"email,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	SourcePlatform *string    `json:"sourcePlatform,omitempty"`
	EstimatedValue *float64   `json:"estimatedValue,omitempty"`
	Currency       string     `json:"currency"`
	Tags           []string   `json:"tags"`
	Notes          *string    `json:"notes,omitempty"`
	IsQualified    *bool      `json:"isQualified,omitempty"`
	QualifiedAt    *time.Time `json:"qualifiedAt,omitempty"`
	QualifiedBy    *uuid.UUID `json:"qualifiedBy,omitempty"`
	LastContactAt  *time.Time `json:"lastContactAt,omitempty"`
	StageChangedAt time.Time  `json:"stageChangedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
}

type LeadListResponse struct {
	Items    []LeadResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

type IntakeLeadResponse struct {
	Lead      LeadResponse `json:"lead"`
	Duplicate bool         `json:"duplicate"`
}
