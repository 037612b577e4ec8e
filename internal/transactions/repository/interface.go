package repository

import (
	"context"

	"crm_backend/internal/transactions/domain"
	"crm_backend/platform/db"

	"github.com/google/uuid"
)

// SortOrder is the creation-time ordering of a listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListParams filters and pages a ledger listing.
type ListParams struct {
	CompanyID uuid.UUID
	LeadID    *uuid.UUID
	Type      *domain.Type
	Order     SortOrder
	Limit     int
	Offset    int
}

// Appender writes ledger entries. It takes the executor explicitly so the
// entry lands in the caller's transaction.
type Appender interface {
	Append(ctx context.Context, q db.DBTX, rec domain.Record) (domain.Transaction, error)
}

// Reader lists ledger entries.
type Reader interface {
	List(ctx context.Context, params ListParams) ([]domain.Transaction, int, error)
	LeadExists(ctx context.Context, companyID, leadID uuid.UUID) (bool, error)
}

// Repository combines the ledger operations. There is deliberately no
// update or delete.
type Repository interface {
	Appender
	Reader
}
