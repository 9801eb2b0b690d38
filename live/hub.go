package live

import (
	"context"
	"sync"

	"summa/domain/events"
	busevents "summa/events"

	log "github.com/sirupsen/logrus"
)

// Hub routes change events to the subscriptions listening on their topics
type Hub struct {
	mu        sync.RWMutex
	listeners map[string]map[uint64]chan struct{}
	nextID    uint64
}

// NewHub creates a hub fed by every event emitted on bus. A nil bus leaves
// Notify as the only trigger.
func NewHub(bus *busevents.Bus) *Hub {
	h := &Hub{listeners: make(map[string]map[uint64]chan struct{})}
	if bus != nil {
		bus.SubscribeAll(h.handleEvent)
	}
	return h
}

func (h *Hub) handleEvent(ctx context.Context, event events.Event) {
	topics := event.Topics()
	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"topics":    topics,
	}).Debug("Routing change event to live subscriptions")
	h.Notify(topics...)
}

// Notify wakes every listener of the given topics. Wakeups coalesce: a
// listener that has not picked up the previous one is not queued twice.
func (h *Hub) Notify(topics ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, topic := range topics {
		for _, ch := range h.listeners[topic] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// listen registers one wakeup channel on all topics and returns it with its release func
func (h *Hub) listen(topics []string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan struct{}, 1)
	for _, topic := range topics {
		if h.listeners[topic] == nil {
			h.listeners[topic] = make(map[uint64]chan struct{})
		}
		h.listeners[topic][id] = ch
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, topic := range topics {
				delete(h.listeners[topic], id)
				if len(h.listeners[topic]) == 0 {
					delete(h.listeners, topic)
				}
			}
		})
	}
	return ch, release
}

// ListenerCount returns how many subscriptions listen on topic
func (h *Hub) ListenerCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[topic])
}
