// Package ports defines the interfaces the leads domain needs from other
// modules. The composition root wires the implementations.
package ports

import (
	"context"

	funnels "crm_backend/internal/funnels/domain"

	"github.com/google/uuid"
)

// FunnelReader reads the funnel and stages a lead belongs to.
// The funnels repository satisfies it.
type FunnelReader interface {
	GetFunnel(ctx context.Context, companyID, id uuid.UUID, includeDeleted bool) (funnels.Funnel, error)
	ListStages(ctx context.Context, funnelID uuid.UUID, includeDeleted bool) ([]funnels.Stage, error)
}
