package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"crm_backend/internal/events"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
)

type scheduledCheck struct {
	payload StageSLACheckPayload
	runAt   time.Time
}

type fakeScheduler struct {
	checks []scheduledCheck
}

func (f *fakeScheduler) ScheduleStageSLACheck(_ context.Context, payload StageSLACheckPayload, runAt time.Time) error {
	f.checks = append(f.checks, scheduledCheck{payload: payload, runAt: runAt})
	return nil
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("test", io.Discard)
}

func TestSubscriberSchedulesOnStageChange(t *testing.T) {
	sched := &fakeScheduler{}
	sub := NewSLASubscriber(sched, testLogger())

	enteredAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	event := events.LeadStageChanged{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         uuid.New(),
		CompanyID:      uuid.New(),
		FromStageID:    uuid.New(),
		ToStageID:      uuid.New(),
		StageSLAHours:  48,
		StageChangedAt: enteredAt,
	}
	if err := sub.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(sched.checks) != 1 {
		t.Fatalf("checks = %d, want 1", len(sched.checks))
	}
	got := sched.checks[0]
	if !got.runAt.Equal(enteredAt.Add(48 * time.Hour)) {
		t.Fatalf("runAt = %v", got.runAt)
	}
	if got.payload.StageID != event.ToStageID.String() || got.payload.LeadID != event.LeadID.String() {
		t.Fatalf("unexpected payload: %+v", got.payload)
	}
}

func TestSubscriberSkipsStagesWithoutSLA(t *testing.T) {
	sched := &fakeScheduler{}
	sub := NewSLASubscriber(sched, testLogger())

	err := sub.Handle(context.Background(), events.LeadCreated{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         uuid.New(),
		CompanyID:      uuid.New(),
		StageID:        uuid.New(),
		StageChangedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sched.checks) != 0 {
		t.Fatalf("checks = %d, want 0", len(sched.checks))
	}
}

func TestSubscriberSchedulesOnCreation(t *testing.T) {
	sched := &fakeScheduler{}
	sub := NewSLASubscriber(sched, testLogger())

	enteredAt := time.Now().UTC()
	event := events.LeadCreated{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         uuid.New(),
		CompanyID:      uuid.New(),
		StageID:        uuid.New(),
		StageSLAHours:  2,
		StageChangedAt: enteredAt,
	}
	if err := sub.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sched.checks) != 1 || !sched.checks[0].runAt.Equal(enteredAt.Add(2*time.Hour)) {
		t.Fatalf("unexpected checks: %+v", sched.checks)
	}
	if sched.checks[0].payload.CompanyID != event.CompanyID.String() {
		t.Fatalf("company = %s", sched.checks[0].payload.CompanyID)
	}
}
