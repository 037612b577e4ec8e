package domain

import "crm_backend/platform/apperr"

var (
	ErrFunnelNotFound   = apperr.NotFound("funnel not found")
	ErrStageNotFound    = apperr.NotFound("stage not found")
	ErrTemplateNotFound = apperr.NotFound("funnel template not found")
	ErrInvalidOrder     = apperr.Unprocessable("invalid stage order")
	ErrStageInUse       = apperr.Conflict("stage still has leads")
	ErrFunnelDeleted    = apperr.Conflict("funnel is deleted")
	ErrStageNotDeleted  = apperr.Conflict("stage is not deleted")
	ErrFunnelNotDeleted = apperr.Conflict("funnel is not deleted")
)
