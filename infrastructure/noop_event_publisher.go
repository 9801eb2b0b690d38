package infrastructure

import (
	"summa/domain/events"
)

// NoopEventPublisher drops every event. The migrate and sessions commands use
// it since nothing is listening there.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
