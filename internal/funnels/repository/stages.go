package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"crm_backend/internal/funnels/domain"
	"crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const stageSelectCols = `id, funnel_id, name, description, position, type, color, is_active, settings, created_at, updated_at, deleted_at`

// Orders are unique among live stages, so every shift first parks the
// affected rows at negative positions and then flips them back.
const (
	parkShiftedQuery = `
		UPDATE stages SET position = -(position + $4), updated_at = now()
		WHERE funnel_id = $1 AND deleted_at IS NULL AND position BETWEEN $2 AND $3`
	parkStageQuery = `
		UPDATE stages SET position = -$3::int, updated_at = now()
		WHERE id = $2 AND funnel_id = $1`
	parkCompactedQuery = `
		UPDATE stages s SET position = -r.rn, updated_at = now()
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY position) AS rn
			FROM stages
			WHERE funnel_id = $1 AND deleted_at IS NULL
		) r
		WHERE s.id = r.id AND s.position <> r.rn`
	unparkQuery = `
		UPDATE stages SET position = -position
		WHERE funnel_id = $1 AND deleted_at IS NULL AND position < 0`
	maxOrderQuery = `
		SELECT COALESCE(MAX(position), 0) FROM stages
		WHERE funnel_id = $1 AND deleted_at IS NULL`
)

// ListStages returns a funnel's stages by order.
func (r *Repo) ListStages(ctx context.Context, funnelID uuid.UUID, includeDeleted bool) ([]domain.Stage, error) {
	query := `SELECT ` + stageSelectCols + ` FROM stages WHERE funnel_id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY deleted_at NULLS FIRST, position ASC`

	rows, err := r.pool.Query(ctx, query, funnelID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	return collectStages(rows)
}

// GetStage loads a stage of funnelID, deleted or not.
func (r *Repo) GetStage(ctx context.Context, funnelID, stageID uuid.UUID) (domain.Stage, error) {
	s, err := scanStage(r.pool.QueryRow(ctx, `
		SELECT `+stageSelectCols+` FROM stages
		WHERE id = $1 AND funnel_id = $2`, stageID, funnelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stage{}, domain.ErrStageNotFound
		}
		return domain.Stage{}, fmt.Errorf("get stage: %w", err)
	}
	return s, nil
}

// CreateStage appends s to its funnel, or inserts it at the explicit order at
// after shifting later stages up.
func (r *Repo) CreateStage(ctx context.Context, s domain.Stage, at *int) (domain.Stage, error) {
	var created domain.Stage
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		maxOrder, err := lockFunnelOrders(ctx, tx, s.FunnelID)
		if err != nil {
			return err
		}

		s.Order = maxOrder + 1
		if at != nil {
			if err := domain.ValidateInsert(*at, maxOrder); err != nil {
				return err
			}
			if shift, ok := domain.PlanInsert(*at, maxOrder); ok {
				if err := applyShift(ctx, tx, s.FunnelID, shift); err != nil {
					return err
				}
			}
			s.Order = *at
		}

		created, err = insertStage(ctx, tx, s)
		return err
	})
	if err != nil {
		return domain.Stage{}, err
	}
	return created, nil
}

// UpdateStage applies a partial update to an active stage.
func (r *Repo) UpdateStage(ctx context.Context, funnelID, stageID uuid.UUID, params UpdateStageParams) (domain.Stage, error) {
	var (
		stageType *string
		settings  []byte
	)
	if params.Type != nil {
		t := string(*params.Type)
		stageType = &t
	}
	if params.Settings != nil {
		raw, err := marshalSettings(params.Settings)
		if err != nil {
			return domain.Stage{}, fmt.Errorf("marshal stage settings: %w", err)
		}
		settings = raw
	}

	s, err := scanStage(r.pool.QueryRow(ctx, `
		UPDATE stages
		SET name = COALESCE($3, name),
			description = COALESCE($4, description),
			type = COALESCE($5, type),
			color = COALESCE($6, color),
			is_active = COALESCE($7, is_active),
			settings = COALESCE($8::jsonb, settings),
			updated_at = now()
		WHERE id = $1 AND funnel_id = $2 AND deleted_at IS NULL
		RETURNING `+stageSelectCols,
		stageID, funnelID, params.Name, params.Description, stageType, params.Color, params.IsActive, settings))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stage{}, domain.ErrStageNotFound
		}
		return domain.Stage{}, fmt.Errorf("update stage: %w", err)
	}
	return s, nil
}

// MoveStage places an active stage at newOrder and shifts the stages in
// between by one, keeping orders dense. The funnel row is locked for the
// duration so concurrent moves serialize.
func (r *Repo) MoveStage(ctx context.Context, funnelID, stageID uuid.UUID, newOrder int) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		maxOrder, err := lockFunnelOrders(ctx, tx, funnelID)
		if err != nil {
			return err
		}

		var oldOrder int
		err = tx.QueryRow(ctx, `
			SELECT position FROM stages
			WHERE id = $1 AND funnel_id = $2 AND deleted_at IS NULL`, stageID, funnelID).Scan(&oldOrder)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrStageNotFound
			}
			return fmt.Errorf("get stage order: %w", err)
		}
		if err := domain.ValidateMove(newOrder, maxOrder); err != nil {
			return err
		}

		shift, ok := domain.PlanMove(oldOrder, newOrder)
		if !ok {
			return nil
		}
		if _, err := tx.Exec(ctx, parkShiftedQuery, funnelID, shift.Lo, shift.Hi, shift.Delta); err != nil {
			return fmt.Errorf("shift stages: %w", err)
		}
		if _, err := tx.Exec(ctx, parkStageQuery, funnelID, stageID, newOrder); err != nil {
			return fmt.Errorf("move stage: %w", err)
		}
		if _, err := tx.Exec(ctx, unparkQuery, funnelID); err != nil {
			return fmt.Errorf("unpark stages: %w", err)
		}
		return nil
	})
}

// SoftDeleteStage marks a stage deleted without renumbering its siblings.
func (r *Repo) SoftDeleteStage(ctx context.Context, funnelID, stageID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE stages SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND funnel_id = $2 AND deleted_at IS NULL`, stageID, funnelID)
	if err != nil {
		return fmt.Errorf("soft delete stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStageNotFound
	}
	return nil
}

// HardDeleteStage removes a stage, live or soft deleted, and renumbers the
// remaining live stages to 1..N. Stages still referenced by leads cannot be
// removed.
func (r *Repo) HardDeleteStage(ctx context.Context, funnelID, stageID uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := lockFunnelOrders(ctx, tx, funnelID); err != nil {
			return err
		}

		var inUse bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM leads WHERE stage_id = stages.id)
			FROM stages
			WHERE id = $1 AND funnel_id = $2`, stageID, funnelID).Scan(&inUse)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrStageNotFound
			}
			return fmt.Errorf("get stage: %w", err)
		}
		if inUse {
			return domain.ErrStageInUse
		}

		if _, err := tx.Exec(ctx, `DELETE FROM stages WHERE id = $1`, stageID); err != nil {
			if db.IsForeignKeyViolation(err) {
				return domain.ErrStageInUse
			}
			return fmt.Errorf("delete stage: %w", err)
		}

		return compactStages(ctx, tx, funnelID)
	})
}

// RestoreStage brings a soft deleted stage back at the end of its funnel.
func (r *Repo) RestoreStage(ctx context.Context, funnelID, stageID uuid.UUID) (domain.Stage, error) {
	var restored domain.Stage
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		maxOrder, err := lockFunnelOrders(ctx, tx, funnelID)
		if err != nil {
			return err
		}

		restored, err = scanStage(tx.QueryRow(ctx, `
			UPDATE stages SET deleted_at = NULL, position = $3, updated_at = now()
			WHERE id = $1 AND funnel_id = $2 AND deleted_at IS NOT NULL
			RETURNING `+stageSelectCols, stageID, funnelID, maxOrder+1))
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("restore stage: %w", err)
		}

		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM stages WHERE id = $1 AND funnel_id = $2)`,
			stageID, funnelID).Scan(&exists); err != nil {
			return fmt.Errorf("check stage: %w", err)
		}
		if exists {
			return domain.ErrStageNotDeleted
		}
		return domain.ErrStageNotFound
	})
	if err != nil {
		return domain.Stage{}, err
	}
	return restored, nil
}

// lockFunnelOrders locks an active funnel row and returns its highest live
// stage order.
func lockFunnelOrders(ctx context.Context, tx pgx.Tx, funnelID uuid.UUID) (int, error) {
	var deleted bool
	err := tx.QueryRow(ctx, `
		SELECT deleted_at IS NOT NULL FROM funnels
		WHERE id = $1
		FOR UPDATE`, funnelID).Scan(&deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrFunnelNotFound
		}
		return 0, fmt.Errorf("lock funnel: %w", err)
	}
	if deleted {
		return 0, domain.ErrFunnelDeleted
	}

	var maxOrder int
	if err := tx.QueryRow(ctx, maxOrderQuery, funnelID).Scan(&maxOrder); err != nil {
		return 0, fmt.Errorf("max stage order: %w", err)
	}
	return maxOrder, nil
}

func applyShift(ctx context.Context, tx pgx.Tx, funnelID uuid.UUID, shift domain.Shift) error {
	if _, err := tx.Exec(ctx, parkShiftedQuery, funnelID, shift.Lo, shift.Hi, shift.Delta); err != nil {
		return fmt.Errorf("shift stages: %w", err)
	}
	if _, err := tx.Exec(ctx, unparkQuery, funnelID); err != nil {
		return fmt.Errorf("unpark stages: %w", err)
	}
	return nil
}

func compactStages(ctx context.Context, tx pgx.Tx, funnelID uuid.UUID) error {
	if _, err := tx.Exec(ctx, parkCompactedQuery, funnelID); err != nil {
		return fmt.Errorf("compact stages: %w", err)
	}
	if _, err := tx.Exec(ctx, unparkQuery, funnelID); err != nil {
		return fmt.Errorf("unpark stages: %w", err)
	}
	return nil
}

func insertStage(ctx context.Context, q db.DBTX, s domain.Stage) (domain.Stage, error) {
	settings, err := marshalSettings(s.Settings)
	if err != nil {
		return domain.Stage{}, fmt.Errorf("marshal stage settings: %w", err)
	}
	if s.Color == "" {
		s.Color = domain.DefaultStageColor
	}

	created, err := scanStage(q.QueryRow(ctx, `
		INSERT INTO stages (funnel_id, name, description, position, type, color, is_active, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+stageSelectCols,
		s.FunnelID, s.Name, s.Description, s.Order, string(s.Type), s.Color, s.IsActive, settings))
	if err != nil {
		return domain.Stage{}, fmt.Errorf("insert stage: %w", err)
	}
	return created, nil
}

func collectStages(rows pgx.Rows) ([]domain.Stage, error) {
	stages := make([]domain.Stage, 0)
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

func scanStage(s rowScanner) (domain.Stage, error) {
	var (
		st       domain.Stage
		typ      string
		settings []byte
	)
	if err := s.Scan(
		&st.ID, &st.FunnelID, &st.Name, &st.Description, &st.Order, &typ, &st.Color, &st.IsActive,
		&settings, &st.CreatedAt, &st.UpdatedAt, &st.DeletedAt,
	); err != nil {
		return domain.Stage{}, err
	}
	st.Type = domain.StageType(typ)
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &st.Settings); err != nil {
			return domain.Stage{}, fmt.Errorf("decode stage settings: %w", err)
		}
	}
	return st, nil
}

func sortStages(stages []domain.Stage) {
	sort.Slice(stages, func(i, j int) bool { return stages[i].Order < stages[j].Order })
}
