package events

import (
	"context"
	"sync"

	"summa/domain/events"

	log "github.com/sirupsen/logrus"
)

// Handler is a function that handles events
type Handler func(ctx context.Context, event events.Event)

// Bus dispatches events to in-process handlers
type Bus struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]Handler
	wg       sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[events.EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType events.EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// SubscribeAll adds a handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range events.AllEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event events.Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

	// Handlers run asynchronously so a slow view never blocks a write
	for i, handler := range handlers {
		b.wg.Add(1)
		go func(h Handler, handlerIndex int) {
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
			h(ctx, event)
		}(handler, i)
	}
}

// Publish emits the event with a background context
func (b *Bus) Publish(event events.Event) error {
	b.Emit(context.Background(), event)
	return nil
}

// Wait blocks until every handler started so far has returned
func (b *Bus) Wait() {
	b.wg.Wait()
}

// Publisher is anything a TransactionalBus can release events into
type Publisher interface {
	Publish(event events.Event) error
}

// TransactionalBus holds pending events coupled to a unit of work and
// releases them to the underlying publisher on Flush.
type TransactionalBus struct {
	real    Publisher
	mu      sync.Mutex
	pending []events.Event // stashed until Flush
}

func NewTransactionalBus(real Publisher) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
	return nil
}

// Flush is called after a successful commit. A failing event does not
// stop the rest: the writes are already durable.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	log.WithFields(log.Fields{
		"pendingEventCount": len(pending),
	}).Debug("Flushing pending events from transactional bus")

	// The transaction context may already be done; handlers outlive it
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range pending {
		if bus, ok := b.real.(*Bus); ok {
			bus.Emit(eventCtx, ev)
			continue
		}
		if err := b.real.Publish(ev); err != nil {
			log.WithFields(log.Fields{
				"eventType": ev.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()

	log.WithField("discardedEventCount", len(b.pending)).Debug("Discarding pending events from transactional bus")
	b.pending = nil
}
