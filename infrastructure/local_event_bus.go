package infrastructure

import (
	"context"
	"sync"

	"lotto/domain/events"

	log "github.com/sirupsen/logrus"
)

// LocalEventBus dispatches events to in-process handlers when no message bus is configured
type LocalEventBus struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]func(context.Context, events.Event) error
	wg       sync.WaitGroup
}

// NewLocalEventBus creates a new in-process event bus
func NewLocalEventBus() *LocalEventBus {
	return &LocalEventBus{
		handlers: make(map[events.EventType][]func(context.Context, events.Event) error),
	}
}

// RegisterLocalHandler adds a handler for a specific event type
func (b *LocalEventBus) RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on local event bus")
}

// Publish hands the event to every registered handler on its own goroutine
func (b *LocalEventBus) Publish(event events.Event) error {
	b.mu.RLock()
	handlers := append([]func(context.Context, events.Event) error(nil), b.handlers[event.Type()]...)
	b.mu.RUnlock()

	// Handlers outlive the transaction that produced the event
	ctx := context.Background()

	for i, handler := range handlers {
		b.wg.Add(1)
		go func(h func(context.Context, events.Event) error, handlerIndex int) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()

			if err := h(ctx, event); err != nil {
				log.WithFields(log.Fields{
					"eventType":    event.Type(),
					"handlerIndex": handlerIndex,
					"error":        err,
				}).Error("Local event handler failed")
			}
		}(handler, i)
	}

	return nil
}

// Wait blocks until every dispatched handler has returned
func (b *LocalEventBus) Wait() {
	b.wg.Wait()
}
