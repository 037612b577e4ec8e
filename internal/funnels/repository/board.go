package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ListBoardLeads returns a funnel's active leads in active stages, newest
// first.
func (r *Repo) ListBoardLeads(ctx context.Context, companyID, funnelID uuid.UUID) ([]BoardLead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.stage_id, l.first_name, l.last_name, l.email, l.phone, l.status, l.priority,
			l.assigned_to, l.estimated_value, l.tags, l.stage_changed_at, l.created_at
		FROM leads l
		JOIN stages s ON s.id = l.stage_id AND s.deleted_at IS NULL
		WHERE l.company_id = $1 AND l.funnel_id = $2 AND l.deleted_at IS NULL
		ORDER BY l.created_at DESC`, companyID, funnelID)
	if err != nil {
		return nil, fmt.Errorf("list board leads: %w", err)
	}
	defer rows.Close()

	leads := make([]BoardLead, 0)
	for rows.Next() {
		var l BoardLead
		if err := rows.Scan(
			&l.ID, &l.StageID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Status, &l.Priority,
			&l.AssignedTo, &l.EstimatedValue, &l.Tags, &l.StageChangedAt, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan board lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
