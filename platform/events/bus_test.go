package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"crm_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
}

func (testEvent) EventName() string { return "test.happened" }

func TestPublishRunsAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	var calls atomic.Int32

	for i := 0; i < 3; i++ {
		bus.Subscribe("test.happened", HandlerFunc(func(context.Context, Event) error {
			calls.Add(1)
			return nil
		}))
	}

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestPublishSurvivesCancelledContext(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	var sawCancel atomic.Bool
	bus.Subscribe("test.happened", HandlerFunc(func(ctx context.Context, _ Event) error {
		sawCancel.Store(ctx.Err() != nil)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, testEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if sawCancel.Load() {
		t.Fatal("async handler must not inherit request cancellation")
	}
}

func TestPublishSyncReturnsFirstError(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	boom := errors.New("boom")
	var second atomic.Bool

	bus.Subscribe("test.happened", HandlerFunc(func(context.Context, Event) error { return boom }))
	bus.Subscribe("test.happened", HandlerFunc(func(context.Context, Event) error {
		second.Store(true)
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if second.Load() {
		t.Fatal("handlers after a failure must not run")
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
