package events

import (
	"context"
	"fmt"
	"sync"

	"crm_backend/platform/logger"
)

// InMemoryBus is a process-local Bus. Asynchronous handlers run detached
// from the publishing request so a cancelled request does not cancel them.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
	wg       sync.WaitGroup
}

// NewInMemoryBus creates an empty bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

var _ Bus = (*InMemoryBus)(nil)

// Subscribe registers handler for eventName.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

func (b *InMemoryBus) snapshot(eventName string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	handlers := b.handlers[eventName]
	out := make([]Handler, len(handlers))
	copy(out, handlers)
	return out
}

// Publish runs every handler in its own goroutine.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	detached := context.WithoutCancel(ctx)
	for _, h := range b.snapshot(event.EventName()) {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.log.EventHandlerFailed(event.EventName(), fmt.Errorf("panic: %v", r))
				}
			}()
			if err := h.Handle(detached, event); err != nil {
				b.log.EventHandlerFailed(event.EventName(), err)
			}
		}(h)
	}
}

// PublishSync runs handlers sequentially and stops at the first error.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	for _, h := range b.snapshot(event.EventName()) {
		if err := h.Handle(ctx, event); err != nil {
			return fmt.Errorf("%s: %w", event.EventName(), err)
		}
	}
	return nil
}

// Wait blocks until all asynchronous handlers have returned. Used on
// shutdown and in tests.
func (b *InMemoryBus) Wait() {
	b.wg.Wait()
}
