package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"crm_backend/internal/transactions/domain"
	"crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new ledger repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

const insertTransactionQuery = `
	INSERT INTO lead_transactions (
		lead_id, company_id, user_id, type, action, description,
		previous_data, current_data, metadata,
		from_stage_id, to_stage_id, assigned_from, assigned_to,
		contact_method, communication_direction, message,
		previous_status, current_status, qualification, qualification_reason,
		source, is_automated, is_visible, is_important
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	RETURNING id, created_at`

const transactionSelectCols = `
	id, lead_id, company_id, user_id, type, action, description,
	previous_data, current_data, metadata,
	from_stage_id, to_stage_id, assigned_from, assigned_to,
	contact_method, communication_direction, message,
	previous_status, current_status, qualification, qualification_reason,
	source, is_automated, is_visible, is_important, created_at`

// Append inserts rec using q, which may be the pool or an open transaction.
func (r *Repo) Append(ctx context.Context, q db.DBTX, rec domain.Record) (domain.Transaction, error) {
	if q == nil {
		q = r.pool
	}

	previous, err := marshalJSON(rec.PreviousData)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("marshal previous data: %w", err)
	}
	current, err := marshalJSON(rec.CurrentData)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("marshal current data: %w", err)
	}
	metadata, err := marshalJSON(rec.Metadata)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("marshal metadata: %w", err)
	}

	tx := domain.Transaction{Record: rec}
	err = q.QueryRow(ctx, insertTransactionQuery,
		rec.LeadID, rec.CompanyID, rec.UserID, string(rec.Type), rec.Action, rec.Description,
		previous, current, metadata,
		rec.FromStageID, rec.ToStageID, rec.AssignedFrom, rec.AssignedTo,
		rec.ContactMethod, rec.CommunicationDirection, rec.Message,
		rec.PreviousStatus, rec.CurrentStatus, rec.Qualification, rec.QualificationReason,
		string(rec.Source), rec.IsAutomated, rec.IsVisible, rec.IsImportant,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("append lead transaction: %w", err)
	}
	return tx, nil
}

// List returns a page of entries plus the total count for the filter.
func (r *Repo) List(ctx context.Context, params ListParams) ([]domain.Transaction, int, error) {
	where, args := buildListFilter(params)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM lead_transactions WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count lead transactions: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM lead_transactions WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		transactionSelectCols, where, orderClause(params.Order), len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list lead transactions: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Transaction, 0)
	for rows.Next() {
		item, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead transaction: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list lead transactions: %w", err)
	}
	return items, total, nil
}

// LeadExists reports whether the lead exists for the company, including
// soft-deleted leads whose history is still readable.
func (r *Repo) LeadExists(ctx context.Context, companyID, leadID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1 AND company_id = $2)`, leadID, companyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check lead exists: %w", err)
	}
	return exists, nil
}

func buildListFilter(params ListParams) (string, []any) {
	clauses := []string{"company_id = $1"}
	args := []any{params.CompanyID}
	if params.LeadID != nil {
		args = append(args, *params.LeadID)
		clauses = append(clauses, fmt.Sprintf("lead_id = $%d", len(args)))
	}
	if params.Type != nil {
		args = append(args, string(*params.Type))
		clauses = append(clauses, fmt.Sprintf("type = $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func orderClause(order SortOrder) string {
	if order == SortAsc {
		return "created_at ASC, id ASC"
	}
	return "created_at DESC, id DESC"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (domain.Transaction, error) {
	var (
		t                              domain.Transaction
		typ, source                    string
		previous, current, rawMetadata []byte
	)
	if err := s.Scan(
		&t.ID, &t.LeadID, &t.CompanyID, &t.UserID, &typ, &t.Action, &t.Description,
		&previous, &current, &rawMetadata,
		&t.FromStageID, &t.ToStageID, &t.AssignedFrom, &t.AssignedTo,
		&t.ContactMethod, &t.CommunicationDirection, &t.Message,
		&t.PreviousStatus, &t.CurrentStatus, &t.Qualification, &t.QualificationReason,
		&source, &t.IsAutomated, &t.IsVisible, &t.IsImportant, &t.CreatedAt,
	); err != nil {
		return domain.Transaction{}, err
	}
	t.Type = domain.Type(typ)
	t.Source = domain.Source(source)
	var err error
	if t.PreviousData, err = unmarshalJSON(previous); err != nil {
		return domain.Transaction{}, fmt.Errorf("decode previous_data: %w", err)
	}
	if t.CurrentData, err = unmarshalJSON(current); err != nil {
		return domain.Transaction{}, fmt.Errorf("decode current_data: %w", err)
	}
	if t.Metadata, err = unmarshalJSON(rawMetadata); err != nil {
		return domain.Transaction{}, fmt.Errorf("decode metadata: %w", err)
	}
	return t, nil
}

func marshalJSON(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func unmarshalJSON(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
