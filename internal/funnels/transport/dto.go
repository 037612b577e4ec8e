package transport

import (
	"time"

	"github.com/google/uuid"
)

// StageSettings is the API shape of a stage's settings.
type StageSettings struct {
	SLAHours             int      `json:"slaHours" validate:"min=0,max=8760"`
	AutoAssign           bool     `json:"autoAssign"`
	NotificationsEnabled bool     `json:"notificationsEnabled"`
	RequiredFields       []string `json:"requiredFields,omitempty" validate:"omitempty,dive,min=1,max=64"`
}

type CreateFunnelRequest struct {
	Name        string         `json:"name" validate:"required,min=1,max=255"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	Type        string         `json:"type,omitempty" validate:"omitempty,oneof=funnel model"`
	IsActive    *bool          `json:"isActive,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
	Template    string         `json:"template,omitempty" validate:"omitempty,max=64"`
}

type UpdateFunnelRequest struct {
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsActive    *bool          `json:"isActive,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

type ListFunnelsRequest struct {
	IncludeDeleted bool `form:"includeDeleted"`
}

type CreateStageRequest struct {
	Name        string         `json:"name" validate:"required,min=1,max=100"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=1000"`
	Type        string         `json:"type" validate:"required,oneof=entry normal service proposition qualified conversion lost"`
	Color       string         `json:"color,omitempty" validate:"omitempty,hexcolor"`
	IsActive    *bool          `json:"isActive,omitempty"`
	Settings    *StageSettings `json:"settings,omitempty"`
	Order       *int           `json:"order,omitempty"`
}

type UpdateStageRequest struct {
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=1000"`
	Type        *string        `json:"type,omitempty" validate:"omitempty,oneof=entry normal service proposition qualified conversion lost"`
	Color       *string        `json:"color,omitempty" validate:"omitempty,hexcolor"`
	IsActive    *bool          `json:"isActive,omitempty"`
	Settings    *StageSettings `json:"settings,omitempty"`
}

// MoveStageRequest places a stage at Order. Range checks happen against the
// funnel's current stages, so only presence is validated here.
type MoveStageRequest struct {
	Order *int `json:"order" validate:"required"`
}

type ListStagesRequest struct {
	IncludeDeleted bool `form:"includeDeleted"`
}

type DeleteStageRequest struct {
	Force bool `form:"force"`
}

type StageResponse struct {
	ID          uuid.UUID     `json:"id"`
	FunnelID    uuid.UUID     `json:"funnelId"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Order       int           `json:"order"`
	Type        string        `json:"type"`
	Color       string        `json:"color"`
	IsActive    bool          `json:"isActive"`
	IsFirst     bool          `json:"isFirst"`
	IsLast      bool          `json:"isLast"`
	Settings    StageSettings `json:"settings"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	DeletedAt   *time.Time    `json:"deletedAt,omitempty"`
}

type FunnelResponse struct {
	ID          uuid.UUID       `json:"id"`
	CompanyID   uuid.UUID       `json:"companyId"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Type        string          `json:"type"`
	IsActive    bool            `json:"isActive"`
	CreatedBy   *uuid.UUID      `json:"createdBy,omitempty"`
	Settings    map[string]any  `json:"settings"`
	Stages      []StageResponse `json:"stages,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *time.Time      `json:"deletedAt,omitempty"`
}

type FunnelListResponse struct {
	Items []FunnelResponse `json:"items"`
}

type StageListResponse struct {
	Items []StageResponse `json:"items"`
}

type RestoreFunnelResponse struct {
	Funnel         FunnelResponse `json:"funnel"`
	RestoredStages int            `json:"restoredStages"`
}

type BoardLeadResponse struct {
	ID             uuid.UUID  `json:"id"`
	StageID        uuid.UUID  `json:"stageId"`
	FirstName      string     `json:"firstName"`
	LastName       *string    `json:"lastName,omitempty"`
	Email          *string    `json:"email,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	AssignedTo     *uuid.UUID `json:"assignedTo,omitempty"`
	EstimatedValue *float64   `json:"estimatedValue,omitempty"`
	Tags           []string   `json:"tags"`
	StageChangedAt time.Time  `json:"stageChangedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type BoardColumn struct {
	Stage StageResponse       `json:"stage"`
	Leads []BoardLeadResponse `json:"leads"`
	Count int                 `json:"count"`
}

type BoardResponse struct {
	Funnel  FunnelResponse `json:"funnel"`
	Columns []BoardColumn  `json:"columns"`
}

type TemplateStageResponse struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Color    string `json:"color"`
	Order    int    `json:"order"`
	SLAHours int    `json:"slaHours,omitempty"`
}

type TemplateResponse struct {
	Key         string                  `json:"key"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Stages      []TemplateStageResponse `json:"stages"`
}
