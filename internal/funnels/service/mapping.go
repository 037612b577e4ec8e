package service

import (
	"crm_backend/internal/funnels/domain"
	"crm_backend/internal/funnels/repository"
	"crm_backend/internal/funnels/transport"
)

// ToFunnelResponse converts a funnel and, when given, its stages.
func ToFunnelResponse(f domain.Funnel, stages []domain.Stage) transport.FunnelResponse {
	resp := transport.FunnelResponse{
		ID:          f.ID,
		CompanyID:   f.CompanyID,
		Name:        f.Name,
		Description: f.Description,
		Type:        string(f.Type),
		IsActive:    f.IsActive,
		CreatedBy:   f.CreatedBy,
		Settings:    f.Settings,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		DeletedAt:   f.DeletedAt,
	}
	if resp.Settings == nil {
		resp.Settings = map[string]any{}
	}
	if stages != nil {
		resp.Stages = toStageList(stages).Items
	}
	return resp
}

// ToStageResponse converts a stage. siblings are the funnel's active stages
// and decide the first/last flags.
func ToStageResponse(s domain.Stage, siblings []domain.Stage) transport.StageResponse {
	resp := transport.StageResponse{
		ID:          s.ID,
		FunnelID:    s.FunnelID,
		Name:        s.Name,
		Description: s.Description,
		Order:       s.Order,
		Type:        string(s.Type),
		Color:       s.Color,
		IsActive:    s.IsActive,
		Settings:    toSettingsDTO(s.Settings),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		DeletedAt:   s.DeletedAt,
	}
	if !s.IsDeleted() {
		resp.IsFirst = domain.IsFirst(siblings, s)
		resp.IsLast = domain.IsLast(siblings, s)
	}
	return resp
}

func toStageList(stages []domain.Stage) transport.StageListResponse {
	active := make([]domain.Stage, 0, len(stages))
	for _, st := range stages {
		if !st.IsDeleted() {
			active = append(active, st)
		}
	}
	items := make([]transport.StageResponse, 0, len(stages))
	for _, st := range stages {
		items = append(items, ToStageResponse(st, active))
	}
	return transport.StageListResponse{Items: items}
}

func toSettingsDTO(s domain.StageSettings) transport.StageSettings {
	return transport.StageSettings{
		SLAHours:             s.SLAHours,
		AutoAssign:           s.AutoAssign,
		NotificationsEnabled: s.NotificationsEnabled,
		RequiredFields:       s.RequiredFields,
	}
}

func fromSettingsDTO(s transport.StageSettings) domain.StageSettings {
	return domain.StageSettings{
		SLAHours:             s.SLAHours,
		AutoAssign:           s.AutoAssign,
		NotificationsEnabled: s.NotificationsEnabled,
		RequiredFields:       s.RequiredFields,
	}
}

func toBoardLeadResponse(l repository.BoardLead) transport.BoardLeadResponse {
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	return transport.BoardLeadResponse{
		ID:             l.ID,
		StageID:        l.StageID,
		FirstName:      l.FirstName,
		LastName:       l.LastName,
		Email:          l.Email,
		Phone:          l.Phone,
		Status:         l.Status,
		Priority:       l.Priority,
		AssignedTo:     l.AssignedTo,
		EstimatedValue: l.EstimatedValue,
		Tags:           tags,
		StageChangedAt: l.StageChangedAt,
		CreatedAt:      l.CreatedAt,
	}
}

func toTemplateResponse(t domain.Template) transport.TemplateResponse {
	stages := make([]transport.TemplateStageResponse, 0, len(t.Stages))
	for i, s := range t.Stages {
		stages = append(stages, transport.TemplateStageResponse{
			Name:     s.Name,
			Type:     string(s.Type),
			Color:    s.Color,
			Order:    i + 1,
			SLAHours: s.SLAHours,
		})
	}
	return transport.TemplateResponse{
		Key:         t.Key,
		Name:        t.Name,
		Description: t.Description,
		Stages:      stages,
	}
}
