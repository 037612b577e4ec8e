package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm_backend/internal/leads/domain"
	txdomain "crm_backend/internal/transactions/domain"
	txrepo "crm_backend/internal/transactions/repository"
	"crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool   *pgxpool.Pool
	ledger txrepo.Appender
}

// New creates a leads repository that writes ledger entries through ledger.
func New(pool *pgxpool.Pool, ledger txrepo.Appender) *Repo {
	return &Repo{pool: pool, ledger: ledger}
}

var _ Repository = (*Repo)(nil)

const leadSelectCols = `
	id, company_id, funnel_id, stage_id, assigned_to, first_name, last_name, email, phone,
	status, priority, source_platform, estimated_value, currency, tags, notes,
	is_qualified, qualified_at, qualified_by, last_contact_at, stage_changed_at,
	created_at, updated_at, deleted_at`

const lockLeadQuery = `SELECT ` + leadSelectCols + ` FROM leads
	WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
	FOR UPDATE`

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts the lead and its creation entry.
func (r *Repo) Create(ctx context.Context, lead domain.Lead, rec txdomain.Record) (domain.Lead, error) {
	var created domain.Lead
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		created, err = scanLead(tx.QueryRow(ctx, `
			INSERT INTO leads (
				id, company_id, funnel_id, stage_id, assigned_to, first_name, last_name, email, phone,
				status, priority, source_platform, estimated_value, currency, tags, notes
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING `+leadSelectCols,
			lead.ID, lead.CompanyID, lead.FunnelID, lead.StageID, lead.AssignedTo, lead.FirstName, lead.LastName,
			lead.Email, lead.Phone, string(lead.Status), string(lead.Priority), lead.SourcePlatform,
			lead.EstimatedValue, lead.Currency, nonNilTags(lead.Tags), lead.Notes))
		if err != nil {
			return fmt.Errorf("insert lead: %w", err)
		}
		if _, err := r.ledger.Append(ctx, tx, rec); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Lead{}, err
	}
	return created, nil
}

// Get loads an active lead.
func (r *Repo) Get(ctx context.Context, companyID, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadSelectCols+` FROM leads
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, domain.ErrLeadNotFound
		}
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// List returns active leads, newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	where, args := buildListFilter(params)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		leadSelectCols, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// Search matches first name, last name or email.
func (r *Repo) Search(ctx context.Context, companyID uuid.UUID, q string, limit int) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadSelectCols+` FROM leads
		WHERE company_id = $1 AND deleted_at IS NULL
			AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2)
		ORDER BY created_at DESC
		LIMIT $3`, companyID, "%"+escapeLike(q)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search leads: %w", err)
	}
	defer rows.Close()
	return collectLeads(rows)
}

// FindDuplicate looks for an active lead with the same identity fields.
// Missing optional fields only match missing fields.
func (r *Repo) FindDuplicate(ctx context.Context, key DuplicateKey) (domain.Lead, bool, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadSelectCols+` FROM leads
		WHERE company_id = $1 AND deleted_at IS NULL
			AND first_name = $2
			AND last_name IS NOT DISTINCT FROM $3
			AND email IS NOT DISTINCT FROM $4
			AND phone IS NOT DISTINCT FROM $5
		ORDER BY created_at ASC
		LIMIT 1`, key.CompanyID, key.FirstName, key.LastName, key.Email, key.Phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, false, nil
		}
		return domain.Lead{}, false, fmt.Errorf("find duplicate lead: %w", err)
	}
	return lead, true, nil
}

// GetUser loads a user of companyID.
func (r *Repo) GetUser(ctx context.Context, companyID, userID uuid.UUID) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, name, email FROM users
		WHERE id = $1 AND company_id = $2`, userID, companyID).Scan(&u.ID, &u.CompanyID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func buildListFilter(params ListParams) (string, []any) {
	clauses := []string{"company_id = $1", "deleted_at IS NULL"}
	args := []any{params.CompanyID}

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if params.FunnelID != nil {
		add("funnel_id", *params.FunnelID)
	}
	if params.StageID != nil {
		add("stage_id", *params.StageID)
	}
	if params.Status != nil {
		add("status", string(*params.Status))
	}
	if params.AssignedTo != nil {
		add("assigned_to", *params.AssignedTo)
	}
	return strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func collectLeads(rows pgx.Rows) ([]domain.Lead, error) {
	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func scanLead(s rowScanner) (domain.Lead, error) {
	var (
		l                domain.Lead
		status, priority string
	)
	if err := s.Scan(
		&l.ID, &l.CompanyID, &l.FunnelID, &l.StageID, &l.AssignedTo, &l.FirstName, &l.LastName, &l.Email, &l.Phone,
		&status, &priority, &l.SourcePlatform, &l.EstimatedValue, &l.Currency, &l.Tags, &l.Notes,
		&l.IsQualified, &l.QualifiedAt, &l.QualifiedBy, &l.LastContactAt, &l.StageChangedAt,
		&l.CreatedAt, &l.UpdatedAt, &l.DeletedAt,
	); err != nil {
		return domain.Lead{}, err
	}
	l.Status = domain.Status(status)
	l.Priority = domain.Priority(priority)
	return l, nil
}
