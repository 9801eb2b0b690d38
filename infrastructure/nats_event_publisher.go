package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"summa/domain/events"
	busevents "summa/events"
	"summa/infrastructure/observability"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// EventEnvelope is the wire format of a change event on NATS
type EventEnvelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"sourceService"`
	Payload       json.RawMessage `json:"payload"`
}

// MessagePublisher is the part of NATSClient the event publisher needs
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NATSEventPublisher emits events on the local bus and forwards them to NATS
// so other instances can refresh their subscriptions
type NATSEventPublisher struct {
	client        MessagePublisher
	subjectMapper *EventSubjectMapper
	local         *busevents.Bus
	source        string
}

// NewNATSEventPublisher creates a new NATS event publisher. A nil client keeps
// events in-process.
func NewNATSEventPublisher(client MessagePublisher, subjectMapper *EventSubjectMapper, local *busevents.Bus, source string) *NATSEventPublisher {
	return &NATSEventPublisher{
		client:        client,
		subjectMapper: subjectMapper,
		local:         local,
		source:        source,
	}
}

// Publish emits the event locally and then publishes it to NATS
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()

	if p.local != nil {
		p.local.Emit(ctx, event)
	}

	if p.client == nil {
		return nil
	}

	subject := p.subjectMapper.MapEventToSubject(event)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: p.source,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := p.client.Publish(ctx, subject, data); err != nil {
		// The stream is missing until EnsureEventStream ran; local delivery already happened
		if errors.Is(err, nats.ErrNoStreamResponse) {
			log.WithField("subject", subject).Warn("No stream bound to subject, event kept local")
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	observability.GetMetrics().RecordNATSMessagePublished(string(event.Type()))

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}
