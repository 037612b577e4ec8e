package scheduler

import (
	"context"
	"time"

	"crm_backend/internal/events"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
)

// SLASubscriber schedules an SLA check whenever a lead lands in a stage that
// has one.
type SLASubscriber struct {
	scheduler SLAScheduler
	log       *logger.Logger
}

func NewSLASubscriber(scheduler SLAScheduler, log *logger.Logger) *SLASubscriber {
	return &SLASubscriber{scheduler: scheduler, log: log}
}

// RegisterHandlers subscribes to lead creation and stage changes.
func (s *SLASubscriber) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), s)
	bus.Subscribe(events.LeadStageChanged{}.EventName(), s)
}

// Handle implements events.Handler.
func (s *SLASubscriber) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		return s.schedule(ctx, e.CompanyID, e.LeadID, e.StageID, e.StageChangedAt, e.StageSLAHours)
	case events.LeadStageChanged:
		return s.schedule(ctx, e.CompanyID, e.LeadID, e.ToStageID, e.StageChangedAt, e.StageSLAHours)
	}
	return nil
}

func (s *SLASubscriber) schedule(ctx context.Context, companyID, leadID, stageID uuid.UUID, enteredAt time.Time, slaHours int) error {
	if slaHours <= 0 {
		return nil
	}

	runAt := enteredAt.Add(time.Duration(slaHours) * time.Hour)
	err := s.scheduler.ScheduleStageSLACheck(ctx, StageSLACheckPayload{
		LeadID:         leadID.String(),
		CompanyID:      companyID.String(),
		StageID:        stageID.String(),
		StageChangedAt: enteredAt,
	}, runAt)
	if err != nil {
		s.log.Error("failed to schedule sla check", "leadId", leadID, "stageId", stageID, "error", err)
		return err
	}
	s.log.Debug("sla check scheduled", "leadId", leadID, "stageId", stageID, "runAt", runAt)
	return nil
}

var _ events.Handler = (*SLASubscriber)(nil)
