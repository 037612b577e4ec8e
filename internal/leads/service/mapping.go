package service

import (
	"strings"

	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/transport"

	"github.com/google/uuid"
)

// ToLeadResponse maps a lead to its API shape.
func ToLeadResponse(l domain.Lead) transport.LeadResponse {
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	return transport.LeadResponse{
		ID:             l.ID,
		CompanyID:      l.CompanyID,
		FunnelID:       l.FunnelID,
		StageID:        l.StageID,
		AssignedTo:     l.AssignedTo,
		FirstName:      l.FirstName,
		LastName:       l.LastName,
		FullName:       l.FullName(),
		Email:          l.Email,
		Phone:          l.Phone,
		Status:         string(l.Status),
		Priority:       string(l.Priority),
		SourcePlatform: l.SourcePlatform,
		EstimatedValue: l.EstimatedValue,
		Currency:       l.Currency,
		Tags:           tags,
		Notes:          l.Notes,
		IsQualified:    l.IsQualified,
		QualifiedAt:    l.QualifiedAt,
		QualifiedBy:    l.QualifiedBy,
		LastContactAt:  l.LastContactAt,
		StageChangedAt: l.StageChangedAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
		DeletedAt:      l.DeletedAt,
	}
}

func toLeadResponses(leads []domain.Lead) []transport.LeadResponse {
	out := make([]transport.LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, ToLeadResponse(l))
	}
	return out
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*email))
	if v == "" {
		return nil
	}
	return &v
}

func currencyOrDefault(code string) string {
	if code == "" {
		return domain.DefaultCurrency
	}
	return strings.ToUpper(code)
}

func upperPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToUpper(*s)
	return &v
}

// parseOptionalUUID reads a filter that the validator has already checked.
func parseOptionalUUID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func sameUser(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
