package service

import (
	"context"
	"time"

	"crm_backend/internal/transactions/domain"
	"crm_backend/internal/transactions/repository"
	"crm_backend/internal/transactions/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Service exposes the lead ledger for reading.
type Service struct {
	repo repository.Reader
	log  *logger.Logger
}

// New creates a ledger service.
func New(repo repository.Reader, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListByLead returns a lead's entries. Ascending order reconstructs the
// timeline; descending (the default) shows latest activity first.
func (s *Service) ListByLead(ctx context.Context, tenantID, leadID uuid.UUID, req transport.ListTransactionsRequest) (transport.TransactionListResponse, error) {
	exists, err := s.repo.LeadExists(ctx, tenantID, leadID)
	if err != nil {
		return transport.TransactionListResponse{}, err
	}
	if !exists {
		return transport.TransactionListResponse{}, apperr.NotFound("lead not found")
	}

	params := listParams(tenantID, req)
	params.LeadID = &leadID
	return s.list(ctx, params, req)
}

// ListByCompany returns a company's entries, newest first unless asked
// otherwise. Callers may only read their own company.
func (s *Service) ListByCompany(ctx context.Context, tenantID, companyID uuid.UUID, req transport.ListTransactionsRequest) (transport.TransactionListResponse, error) {
	if tenantID != companyID {
		return transport.TransactionListResponse{}, apperr.Forbidden("cannot read another company's transactions")
	}
	return s.list(ctx, listParams(tenantID, req), req)
}

func (s *Service) list(ctx context.Context, params repository.ListParams, req transport.ListTransactionsRequest) (transport.TransactionListResponse, error) {
	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.TransactionListResponse{}, err
	}

	resp := transport.TransactionListResponse{
		Items:    make([]transport.TransactionResponse, 0, len(items)),
		Total:    total,
		Page:     params.Offset/params.Limit + 1,
		PageSize: params.Limit,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, ToResponse(item))
	}
	return resp, nil
}

func listParams(companyID uuid.UUID, req transport.ListTransactionsRequest) repository.ListParams {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	order := repository.SortDesc
	if req.Order == string(repository.SortAsc) {
		order = repository.SortAsc
	}

	params := repository.ListParams{
		CompanyID: companyID,
		Order:     order,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	}
	if req.Type != "" {
		typ := domain.Type(req.Type)
		params.Type = &typ
	}
	return params
}

// ToResponse converts a ledger entry for the API.
func ToResponse(t domain.Transaction) transport.TransactionResponse {
	return transport.TransactionResponse{
		ID:                     t.ID,
		LeadID:                 t.LeadID,
		CompanyID:              t.CompanyID,
		UserID:                 t.UserID,
		Type:                   string(t.Type),
		Action:                 t.Action,
		Description:            t.Description,
		PreviousData:           t.PreviousData,
		CurrentData:            t.CurrentData,
		Metadata:               t.Metadata,
		FromStageID:            t.FromStageID,
		ToStageID:              t.ToStageID,
		AssignedFrom:           t.AssignedFrom,
		AssignedTo:             t.AssignedTo,
		ContactMethod:          t.ContactMethod,
		CommunicationDirection: t.CommunicationDirection,
		Message:                t.Message,
		PreviousStatus:         t.PreviousStatus,
		CurrentStatus:          t.CurrentStatus,
		Qualification:          t.Qualification,
		QualificationReason:    t.QualificationReason,
		Source:                 string(t.Source),
		IsAutomated:            t.IsAutomated,
		IsSystem:               t.IsSystem(),
		IsImportant:            t.IsImportant,
		CreatedAt:              t.CreatedAt.Format(time.RFC3339Nano),
	}
}
