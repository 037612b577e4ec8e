package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crm_backend/internal/funnels/domain"
	"crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const funnelSelectCols = `id, company_id, name, description, type, is_active, created_by, settings, created_at, updated_at, deleted_at`

// CreateFunnel inserts f and its initial stages in one transaction. The
// stages must already carry dense orders starting at 1.
func (r *Repo) CreateFunnel(ctx context.Context, f domain.Funnel, stages []domain.Stage) (domain.Funnel, []domain.Stage, error) {
	settings, err := marshalSettings(f.Settings)
	if err != nil {
		return domain.Funnel{}, nil, fmt.Errorf("marshal funnel settings: %w", err)
	}

	var (
		created       domain.Funnel
		createdStages []domain.Stage
	)
	err = db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO funnels (company_id, name, description, type, is_active, created_by, settings)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+funnelSelectCols,
			f.CompanyID, f.Name, f.Description, string(f.Type), f.IsActive, f.CreatedBy, settings)
		created, err = scanFunnel(row)
		if err != nil {
			return fmt.Errorf("insert funnel: %w", err)
		}

		createdStages = make([]domain.Stage, 0, len(stages))
		for _, s := range stages {
			s.FunnelID = created.ID
			inserted, err := insertStage(ctx, tx, s)
			if err != nil {
				return err
			}
			createdStages = append(createdStages, inserted)
		}
		return nil
	})
	if err != nil {
		return domain.Funnel{}, nil, err
	}
	return created, createdStages, nil
}

// GetFunnel loads a funnel owned by companyID.
func (r *Repo) GetFunnel(ctx context.Context, companyID, id uuid.UUID, includeDeleted bool) (domain.Funnel, error) {
	query := `SELECT ` + funnelSelectCols + ` FROM funnels WHERE id = $1 AND company_id = $2`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	f, err := scanFunnel(r.pool.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Funnel{}, domain.ErrFunnelNotFound
		}
		return domain.Funnel{}, fmt.Errorf("get funnel: %w", err)
	}
	return f, nil
}

// ListFunnels lists a company's funnels by name.
func (r *Repo) ListFunnels(ctx context.Context, companyID uuid.UUID, includeDeleted bool) ([]domain.Funnel, error) {
	query := `SELECT ` + funnelSelectCols + ` FROM funnels WHERE company_id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY name ASC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list funnels: %w", err)
	}
	defer rows.Close()

	funnels := make([]domain.Funnel, 0)
	for rows.Next() {
		f, err := scanFunnel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan funnel: %w", err)
		}
		funnels = append(funnels, f)
	}
	return funnels, rows.Err()
}

// UpdateFunnel applies a partial update to an active funnel.
func (r *Repo) UpdateFunnel(ctx context.Context, companyID, id uuid.UUID, params UpdateFunnelParams) (domain.Funnel, error) {
	var settings []byte
	if params.Settings != nil {
		raw, err := marshalSettings(params.Settings)
		if err != nil {
			return domain.Funnel{}, fmt.Errorf("marshal funnel settings: %w", err)
		}
		settings = raw
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE funnels
		SET name = COALESCE($3, name),
			description = COALESCE($4, description),
			is_active = COALESCE($5, is_active),
			settings = COALESCE($6::jsonb, settings),
			updated_at = now()
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
		RETURNING `+funnelSelectCols,
		id, companyID, params.Name, params.Description, params.IsActive, settings)

	f, err := scanFunnel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Funnel{}, domain.ErrFunnelNotFound
		}
		return domain.Funnel{}, fmt.Errorf("update funnel: %w", err)
	}
	return f, nil
}

// DeleteFunnelCascade soft deletes the funnel and every active stage with the
// same timestamp, which RestoreFunnelCascade later matches on.
func (r *Repo) DeleteFunnelCascade(ctx context.Context, companyID, id uuid.UUID) (time.Time, error) {
	var deletedAt time.Time
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE funnels SET deleted_at = now(), updated_at = now()
			WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
			RETURNING deleted_at`, id, companyID).Scan(&deletedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrFunnelNotFound
			}
			return fmt.Errorf("delete funnel: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE stages SET deleted_at = $2, updated_at = now()
			WHERE funnel_id = $1 AND deleted_at IS NULL`, id, deletedAt); err != nil {
			return fmt.Errorf("delete funnel stages: %w", err)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return deletedAt, nil
}

// RestoreFunnelCascade restores the funnel and the stages deleted together
// with it. Stages deleted on their own before the funnel stay deleted.
// It returns the number of restored stages.
func (r *Repo) RestoreFunnelCascade(ctx context.Context, companyID, id uuid.UUID) (int, error) {
	var restored int
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var deletedAt *time.Time
		err := tx.QueryRow(ctx, `
			SELECT deleted_at FROM funnels
			WHERE id = $1 AND company_id = $2
			FOR UPDATE`, id, companyID).Scan(&deletedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrFunnelNotFound
			}
			return fmt.Errorf("lock funnel: %w", err)
		}
		if deletedAt == nil {
			return domain.ErrFunnelNotDeleted
		}

		if _, err := tx.Exec(ctx, `
			UPDATE funnels SET deleted_at = NULL, updated_at = now()
			WHERE id = $1`, id); err != nil {
			return fmt.Errorf("restore funnel: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE stages SET deleted_at = NULL, updated_at = now()
			WHERE funnel_id = $1 AND deleted_at = $2`, id, *deletedAt)
		if err != nil {
			return fmt.Errorf("restore funnel stages: %w", err)
		}
		restored = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return restored, nil
}

// DuplicateFunnel copies an active funnel and its active stages. Copied
// stages are renumbered densely from 1 in their current order.
func (r *Repo) DuplicateFunnel(ctx context.Context, companyID, id uuid.UUID, createdBy *uuid.UUID) (domain.Funnel, []domain.Stage, error) {
	var (
		copied domain.Funnel
		stages []domain.Stage
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		source, err := scanFunnel(tx.QueryRow(ctx, `
			SELECT `+funnelSelectCols+` FROM funnels
			WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrFunnelNotFound
			}
			return fmt.Errorf("get funnel: %w", err)
		}

		settings, err := marshalSettings(source.Settings)
		if err != nil {
			return fmt.Errorf("marshal funnel settings: %w", err)
		}
		copied, err = scanFunnel(tx.QueryRow(ctx, `
			INSERT INTO funnels (company_id, name, description, type, is_active, created_by, settings)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+funnelSelectCols,
			companyID, domain.CopyName(source.Name), source.Description, string(source.Type), source.IsActive, createdBy, settings))
		if err != nil {
			return fmt.Errorf("insert funnel copy: %w", err)
		}

		rows, err := tx.Query(ctx, `
			INSERT INTO stages (funnel_id, name, description, position, type, color, is_active, settings)
			SELECT $2, name, description, ROW_NUMBER() OVER (ORDER BY position), type, color, is_active, settings
			FROM stages
			WHERE funnel_id = $1 AND deleted_at IS NULL
			RETURNING `+stageSelectCols, source.ID, copied.ID)
		if err != nil {
			return fmt.Errorf("copy stages: %w", err)
		}
		defer rows.Close()

		stages, err = collectStages(rows)
		return err
	})
	if err != nil {
		return domain.Funnel{}, nil, err
	}
	sortStages(stages)
	return copied, stages, nil
}

func scanFunnel(s rowScanner) (domain.Funnel, error) {
	var (
		f        domain.Funnel
		typ      string
		settings []byte
	)
	if err := s.Scan(
		&f.ID, &f.CompanyID, &f.Name, &f.Description, &typ, &f.IsActive, &f.CreatedBy,
		&settings, &f.CreatedAt, &f.UpdatedAt, &f.DeletedAt,
	); err != nil {
		return domain.Funnel{}, err
	}
	f.Type = domain.FunnelType(typ)
	f.Settings = map[string]any{}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &f.Settings); err != nil {
			return domain.Funnel{}, fmt.Errorf("decode funnel settings: %w", err)
		}
	}
	return f, nil
}
