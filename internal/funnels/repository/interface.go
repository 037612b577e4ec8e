package repository

import (
	"context"
	"time"

	"crm_backend/internal/funnels/domain"

	"github.com/google/uuid"
)

// UpdateFunnelParams carries a partial funnel update. Nil fields are kept.
type UpdateFunnelParams struct {
	Name        *string
	Description *string
	IsActive    *bool
	Settings    map[string]any
}

// UpdateStageParams carries a partial stage update. Order is changed only
// through MoveStage.
type UpdateStageParams struct {
	Name        *string
	Description *string
	Type        *domain.StageType
	Color       *string
	IsActive    *bool
	Settings    *domain.StageSettings
}

// BoardLead is the lead projection shown on a funnel board.
type BoardLead struct {
	ID             uuid.UUID
	StageID        uuid.UUID
	FirstName      string
	LastName       *string
	Email          *string
	Phone          *string
	Status         string
	Priority       string
	AssignedTo     *uuid.UUID
	EstimatedValue *float64
	Tags           []string
	StageChangedAt time.Time
	CreatedAt      time.Time
}

// FunnelStore persists funnels.
type FunnelStore interface {
	CreateFunnel(ctx context.Context, f domain.Funnel, stages []domain.Stage) (domain.Funnel, []domain.Stage, error)
	GetFunnel(ctx context.Context, companyID, id uuid.UUID, includeDeleted bool) (domain.Funnel, error)
	ListFunnels(ctx context.Context, companyID uuid.UUID, includeDeleted bool) ([]domain.Funnel, error)
	UpdateFunnel(ctx context.Context, companyID, id uuid.UUID, params UpdateFunnelParams) (domain.Funnel, error)
	DeleteFunnelCascade(ctx context.Context, companyID, id uuid.UUID) (time.Time, error)
	RestoreFunnelCascade(ctx context.Context, companyID, id uuid.UUID) (int, error)
	DuplicateFunnel(ctx context.Context, companyID, id uuid.UUID, createdBy *uuid.UUID) (domain.Funnel, []domain.Stage, error)
}

// StageStore persists stages and keeps their orders dense.
type StageStore interface {
	ListStages(ctx context.Context, funnelID uuid.UUID, includeDeleted bool) ([]domain.Stage, error)
	GetStage(ctx context.Context, funnelID, stageID uuid.UUID) (domain.Stage, error)
	CreateStage(ctx context.Context, s domain.Stage, at *int) (domain.Stage, error)
	UpdateStage(ctx context.Context, funnelID, stageID uuid.UUID, params UpdateStageParams) (domain.Stage, error)
	MoveStage(ctx context.Context, funnelID, stageID uuid.UUID, newOrder int) error
	SoftDeleteStage(ctx context.Context, funnelID, stageID uuid.UUID) error
	HardDeleteStage(ctx context.Context, funnelID, stageID uuid.UUID) error
	RestoreStage(ctx context.Context, funnelID, stageID uuid.UUID) (domain.Stage, error)
}

// BoardReader loads the leads shown on a board.
type BoardReader interface {
	ListBoardLeads(ctx context.Context, companyID, funnelID uuid.UUID) ([]BoardLead, error)
}

// Repository combines all funnel persistence.
type Repository interface {
	FunnelStore
	StageStore
	BoardReader
}
