package repository

import (
	"context"
	"errors"
	"fmt"

	"crm_backend/internal/leads/domain"
	"crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Each audited mutation takes the locked lead's id as $1.
const (
	moveStageQuery = `
		UPDATE leads SET stage_id = $2, stage_changed_at = clock_timestamp(), updated_at = now()
		WHERE id = $1`
	assignQuery = `
		UPDATE leads SET assigned_to = $2, updated_at = now()
		WHERE id = $1`
	qualifyQuery = `
		UPDATE leads SET is_qualified = $2, qualified_at = now(), qualified_by = $3, status = $4, updated_at = now()
		WHERE id = $1`
	statusQuery = `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1`
	contactQuery = `
		UPDATE leads SET last_contact_at = now(), status = CASE WHEN status = 'new' THEN 'contacted' ELSE status END, updated_at = now()
		WHERE id = $1`
)

// MoveToStage points the lead at stageID. The caller has verified the stage
// belongs to the lead's funnel; build sees the stage the lead holds under
// the row lock, which becomes the entry's origin.
func (r *Repo) MoveToStage(ctx context.Context, companyID, id, stageID uuid.UUID, build RecordFunc) (domain.Lead, bool, error) {
	return r.mutate(ctx, companyID, id, build, moveStageQuery, stageID)
}

// Assign sets or clears the lead's owner.
func (r *Repo) Assign(ctx context.Context, companyID, id uuid.UUID, userID *uuid.UUID, build RecordFunc) (domain.Lead, bool, error) {
	return r.mutate(ctx, companyID, id, build, assignQuery, userID)
}

// SetQualification records a qualify or unqualify decision and the matching
// status.
func (r *Repo) SetQualification(ctx context.Context, companyID, id uuid.UUID, qualified bool, by *uuid.UUID, build RecordFunc) (domain.Lead, bool, error) {
	status := domain.StatusQualified
	if !qualified {
		status = domain.StatusUnqualified
	}
	return r.mutate(ctx, companyID, id, build, qualifyQuery, qualified, by, string(status))
}

// SetStatus changes the lifecycle status.
func (r *Repo) SetStatus(ctx context.Context, companyID, id uuid.UUID, status domain.Status, build RecordFunc) (domain.Lead, bool, error) {
	return r.mutate(ctx, companyID, id, build, statusQuery, string(status))
}

// TouchContact stamps last_contact_at. A new lead becomes contacted.
func (r *Repo) TouchContact(ctx context.Context, companyID, id uuid.UUID, build RecordFunc) (domain.Lead, bool, error) {
	return r.mutate(ctx, companyID, id, build, contactQuery)
}

// AppendEntry appends an entry about the locked lead without changing it.
func (r *Repo) AppendEntry(ctx context.Context, companyID, id uuid.UUID, build RecordFunc) (domain.Lead, bool, error) {
	return r.mutate(ctx, companyID, id, build, "")
}

// mutate locks the lead, asks build for the ledger entry, then applies
// update (if any) and appends the entry in the same transaction.
func (r *Repo) mutate(ctx context.Context, companyID, id uuid.UUID, build RecordFunc, update string, args ...any) (domain.Lead, bool, error) {
	var (
		result  domain.Lead
		changed bool
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		before, err := scanLead(tx.QueryRow(ctx, lockLeadQuery, id, companyID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrLeadNotFound
			}
			return fmt.Errorf("lock lead: %w", err)
		}

		rec, ok := build(before)
		if !ok {
			result = before
			return nil
		}

		if update != "" {
			if _, err := tx.Exec(ctx, update, append([]any{id}, args...)...); err != nil {
				return fmt.Errorf("update lead: %w", err)
			}
		}
		if _, err := r.ledger.Append(ctx, tx, rec); err != nil {
			return err
		}

		result, err = scanLead(tx.QueryRow(ctx, `SELECT `+leadSelectCols+` FROM leads WHERE id = $1`, id))
		if err != nil {
			return fmt.Errorf("reload lead: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return domain.Lead{}, false, err
	}
	return result, changed, nil
}

// Update applies a partial update of descriptive fields. It writes no ledger
// entry.
func (r *Repo) Update(ctx context.Context, companyID, id uuid.UUID, p UpdateParams) (domain.Lead, error) {
	var priority *string
	if p.Priority != nil {
		v := string(*p.Priority)
		priority = &v
	}

	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads
		SET first_name = COALESCE($3, first_name),
			last_name = COALESCE($4, last_name),
			email = COALESCE($5, email),
			phone = COALESCE($6, phone),
			priority = COALESCE($7, priority),
			source_platform = COALESCE($8, source_platform),
			estimated_value = COALESCE($9, estimated_value),
			currency = COALESCE($10, currency),
			notes = COALESCE($11, notes),
			updated_at = now()
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
		RETURNING `+leadSelectCols,
		id, companyID, p.FirstName, p.LastName, p.Email, p.Phone, priority, p.SourcePlatform,
		p.EstimatedValue, p.Currency, p.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, domain.ErrLeadNotFound
		}
		return domain.Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

// AddTags merges tags into the lead's tag set.
func (r *Repo) AddTags(ctx context.Context, companyID, id uuid.UUID, tags []string) (domain.Lead, error) {
	return r.updateTags(ctx, companyID, id, `
		ARRAY(SELECT DISTINCT t FROM unnest(tags || $3::text[]) AS t ORDER BY t)`, tags)
}

// RemoveTags removes tags from the lead's tag set.
func (r *Repo) RemoveTags(ctx context.Context, companyID, id uuid.UUID, tags []string) (domain.Lead, error) {
	return r.updateTags(ctx, companyID, id, `
		ARRAY(SELECT t FROM unnest(tags) AS t WHERE NOT (t = ANY($3::text[])) ORDER BY t)`, tags)
}

func (r *Repo) updateTags(ctx context.Context, companyID, id uuid.UUID, expr string, tags []string) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET tags = `+expr+`, updated_at = now()
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
		RETURNING `+leadSelectCols, id, companyID, nonNilTags(tags)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, domain.ErrLeadNotFound
		}
		return domain.Lead{}, fmt.Errorf("update lead tags: %w", err)
	}
	return lead, nil
}

// SoftDelete hides the lead.
func (r *Repo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID)
	if err != nil {
		return fmt.Errorf("soft delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

// Restore brings a soft deleted lead back.
func (r *Repo) Restore(ctx context.Context, companyID, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET deleted_at = NULL, updated_at = now()
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NOT NULL
		RETURNING `+leadSelectCols, id, companyID))
	if err == nil {
		return lead, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, fmt.Errorf("restore lead: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1 AND company_id = $2)`, id, companyID).Scan(&exists); err != nil {
		return domain.Lead{}, fmt.Errorf("check lead: %w", err)
	}
	if exists {
		return domain.Lead{}, domain.ErrLeadNotDeleted
	}
	return domain.Lead{}, domain.ErrLeadNotFound
}
