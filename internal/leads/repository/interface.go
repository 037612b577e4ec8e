package repository

import (
	"context"

	"crm_backend/internal/leads/domain"
	txdomain "crm_backend/internal/transactions/domain"

	"github.com/google/uuid"
)

// RecordFunc decides, from the locked lead, which ledger entry a change
// produces. Returning ok=false means the change is a no-op and nothing is
// written.
type RecordFunc func(before domain.Lead) (rec txdomain.Record, ok bool)

// ListParams filters and pages a lead listing.
type ListParams struct {
	CompanyID  uuid.UUID
	FunnelID   *uuid.UUID
	StageID    *uuid.UUID
	Status     *domain.Status
	AssignedTo *uuid.UUID
	Limit      int
	Offset     int
}

// UpdateParams carries a partial update of descriptive fields. Stage,
// assignment, status and qualification have dedicated operations.
type UpdateParams struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	Priority       *domain.Priority
	SourcePlatform *string
	EstimatedValue *float64
	Currency       *string
	Notes          *string
}

// DuplicateKey identifies an intake lead that was already submitted.
type DuplicateKey struct {
	CompanyID uuid.UUID
	FirstName string
	LastName  *string
	Email     *string
	Phone     *string
}

// Reader reads leads and the users they can be assigned to.
type Reader interface {
	Get(ctx context.Context, companyID, id uuid.UUID) (domain.Lead, error)
	List(ctx context.Context, params ListParams) ([]domain.Lead, int, error)
	Search(ctx context.Context, companyID uuid.UUID, q string, limit int) ([]domain.Lead, error)
	FindDuplicate(ctx context.Context, key DuplicateKey) (domain.Lead, bool, error)
	GetUser(ctx context.Context, companyID, userID uuid.UUID) (domain.User, error)
}

// Writer changes leads. Every audited change appends its ledger entry in
// the same transaction as the lead update.
type Writer interface {
	Create(ctx context.Context, lead domain.Lead, rec txdomain.Record) (domain.Lead, error)
	Update(ctx context.Context, companyID, id uuid.UUID, params UpdateParams) (domain.Lead, error)
	MoveToStage(ctx context.Context, companyID, id, stageID uuid.UUID, build RecordFunc) (domain.Lead, bool, error)
	Assign(ctx context.Context, companyID, id uuid.UUID, userID *uuid.UUID, build RecordFunc) (domain.Lead, bool, error)
	SetQualification(ctx context.Context, companyID, id uuid.UUID, qualified bool, by *uuid.UUID, build RecordFunc) (domain.Lead, bool, error)
	SetStatus(ctx context.Context, companyID, id uuid.UUID, status domain.Status, build RecordFunc) (domain.Lead, bool, error)
	TouchContact(ctx context.Context, companyID, id uuid.UUID, build RecordFunc) (domain.Lead, bool, error)
	AppendEntry(ctx context.Context, companyID, id uuid.UUID, build RecordFunc) (domain.Lead, bool, error)
	AddTags(ctx context.Context, companyID, id uuid.UUID, tags []string) (domain.Lead, error)
	RemoveTags(ctx context.Context, companyID, id uuid.UUID, tags []string) (domain.Lead, error)
	SoftDelete(ctx context.Context, companyID, id uuid.UUID) error
	Restore(ctx context.Context, companyID, id uuid.UUID) (domain.Lead, error)
}

// Repository combines lead reads and writes.
type Repository interface {
	Reader
	Writer
}
