package domain

import "crm_backend/platform/apperr"

var (
	ErrLeadNotFound = apperr.NotFound("lead not found")
	ErrUserNotFound = apperr.NotFound("user not found")

	// ErrInvalidStageForFunnel rejects a move to a stage that is missing,
	// deleted, or owned by another funnel.
	ErrInvalidStageForFunnel = apperr.Unprocessable("stage does not belong to the lead's funnel")
	// ErrNoAdjacentStage rejects a next/previous move from the last/first stage.
	ErrNoAdjacentStage = apperr.Unprocessable("no adjacent stage in this direction")
	ErrNoEntryStage    = apperr.Unprocessable("no entry stage found for this funnel")
	ErrFunnelNoStages  = apperr.Unprocessable("funnel has no active stages")
	ErrLeadNotDeleted  = apperr.Conflict("lead is not deleted")
)
