// Package domain defines funnels, their ordered stages, and the rules that
// keep stage orders dense.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// FunnelType distinguishes working funnels from reusable models.
type FunnelType string

const (
	FunnelTypeFunnel FunnelType = "funnel"
	FunnelTypeModel  FunnelType = "model"
)

// Funnel is a company's ordered sales pipeline.
type Funnel struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	Name        string
	Description *string
	Type        FunnelType
	IsActive    bool
	CreatedBy   *uuid.UUID
	Settings    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// IsDeleted reports whether the funnel is soft deleted.
func (f Funnel) IsDeleted() bool {
	return f.DeletedAt != nil
}

// CopyName is the name given to a duplicated funnel.
func CopyName(name string) string {
	return name + " (copy)"
}
