package transport

import "github.com/google/uuid"

// ListTransactionsRequest pages a ledger listing.
type ListTransactionsRequest struct {
	Order    string `form:"order" validate:"omitempty,oneof=asc desc"`
	Type     string `form:"type" validate:"omitempty,oneof=stage_change assignment qualification contact status_change note creation stage_sla_breached"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

// TransactionResponse is a ledger entry in API responses.
type TransactionResponse struct {
	ID                     uuid.UUID      `json:"id"`
	LeadID                 uuid.UUID      `json:"leadId"`
	CompanyID              uuid.UUID      `json:"companyId"`
	UserID                 *uuid.UUID     `json:"userId"`
	Type                   string         `json:"type"`
	Action                 string         `json:"action"`
	Description            string         `json:"description"`
	PreviousData           map[string]any `json:"previousData,omitempty"`
	CurrentData            map[string]any `json:"currentData,omitempty"`
	Metadata               map[string]any `json:"metadata,omitempty"`
	FromStageID            *uuid.UUID     `json:"fromStageId,omitempty"`
	ToStageID              *uuid.UUID     `json:"toStageId,omitempty"`
	AssignedFrom           *uuid.UUID     `json:"assignedFrom,omitempty"`
	AssignedTo             *uuid.UUID     `json:"assignedTo,omitempty"`
	ContactMethod          *string        `json:"contactMethod,omitempty"`
	CommunicationDirection *string        `json:"communicationDirection,omitempty"`
	Message                *string        `json:"message,omitempty"`
	PreviousStatus         *string        `json:"previousStatus,omitempty"`
	CurrentStatus          *string        `json:"currentStatus,omitempty"`
	Qualification          *bool          `json:"qualification,omitempty"`
	QualificationReason    *string        `json:"qualificationReason,omitempty"`
	Source                 string         `json:"source"`
	IsAutomated            bool           `json:"isAutomated"`
	IsSystem               bool           `json:"isSystem"`
	IsImportant            bool           `json:"isImportant"`
	CreatedAt              string         `json:"createdAt"`
}

// TransactionListResponse wraps a page of ledger entries.
type TransactionListResponse struct {
	Items    []TransactionResponse `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}
