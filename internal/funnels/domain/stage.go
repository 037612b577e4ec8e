package domain

import (
	"time"

	"github.com/google/uuid"
)

// StageType classifies a stage's role in the pipeline.
type StageType string

const (
	StageTypeEntry       StageType = "entry"
	StageTypeNormal      StageType = "normal"
	StageTypeService     StageType = "service"
	StageTypeProposition StageType = "proposition"
	StageTypeQualified   StageType = "qualified"
	StageTypeConversion  StageType = "conversion"
	StageTypeLost        StageType = "lost"
)

// DefaultStageColor is used when a stage is created without a color.
const DefaultStageColor = "#FFFFFF"

var knownStageTypes = map[StageType]struct{}{
	StageTypeEntry:       {},
	StageTypeNormal:      {},
	StageTypeService:     {},
	StageTypeProposition: {},
	StageTypeQualified:   {},
	StageTypeConversion:  {},
	StageTypeLost:        {},
}

func IsKnownStageType(t StageType) bool {
	_, ok := knownStageTypes[t]
	return ok
}

// StageSettings is the stage's jsonb settings column.
type StageSettings struct {
	SLAHours             int      `json:"sla_hours,omitempty"`
	AutoAssign           bool     `json:"auto_assign,omitempty"`
	NotificationsEnabled bool     `json:"notifications_enabled,omitempty"`
	RequiredFields       []string `json:"required_fields,omitempty"`
}

// Stage is one step of a funnel. Order is 1-based and dense among the
// funnel's non-deleted stages.
type Stage struct {
	ID          uuid.UUID
	FunnelID    uuid.UUID
	Name        string
	Description *string
	Order       int
	Type        StageType
	Color       string
	IsActive    bool
	Settings    StageSettings
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// IsDeleted reports whether the stage is soft deleted.
func (s Stage) IsDeleted() bool {
	return s.DeletedAt != nil
}

// HasSLA reports whether leads entering this stage get a reminder.
func (s Stage) HasSLA() bool {
	return s.Settings.SLAHours > 0
}

// IsFirst reports whether s has the lowest order in stages.
func IsFirst(stages []Stage, s Stage) bool {
	_, ok := Previous(stages, s)
	return !ok
}

// IsLast reports whether s has the highest order in stages.
func IsLast(stages []Stage, s Stage) bool {
	_, ok := Next(stages, s)
	return !ok
}

// Next returns the stage with the smallest order above s.
func Next(stages []Stage, s Stage) (Stage, bool) {
	var (
		best  Stage
		found bool
	)
	for _, candidate := range stages {
		if candidate.Order > s.Order && (!found || candidate.Order < best.Order) {
			best, found = candidate, true
		}
	}
	return best, found
}

// Previous returns the stage with the largest order below s.
func Previous(stages []Stage, s Stage) (Stage, bool) {
	var (
		best  Stage
		found bool
	)
	for _, candidate := range stages {
		if candidate.Order < s.Order && (!found || candidate.Order > best.Order) {
			best, found = candidate, true
		}
	}
	return best, found
}
