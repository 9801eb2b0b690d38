package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"summa/domain/events"
	busevents "summa/events"
	"summa/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// MessageSubscriber is the part of NATSClient the event subscriber needs
type MessageSubscriber interface {
	Subscribe(subject string, handler func([]byte) error) error
}

// NATSEventSubscriber re-emits events published by other instances on the local bus
type NATSEventSubscriber struct {
	client        MessageSubscriber
	subjectMapper *EventSubjectMapper
	local         *busevents.Bus
	source        string
}

// NewNATSEventSubscriber creates a new NATS event subscriber. Envelopes whose
// source equals source are skipped since they were emitted locally already.
func NewNATSEventSubscriber(client MessageSubscriber, subjectMapper *EventSubjectMapper, local *busevents.Bus, source string) *NATSEventSubscriber {
	return &NATSEventSubscriber{
		client:        client,
		subjectMapper: subjectMapper,
		local:         local,
		source:        source,
	}
}

// SubscribeAll subscribes to the subject of every event type
func (s *NATSEventSubscriber) SubscribeAll() error {
	for _, subject := range s.subjectMapper.GetAllSubjects() {
		if err := s.client.Subscribe(subject, func(data []byte) error {
			return s.handleMessage(subject, data)
		}); err != nil {
			return err
		}
	}
	return nil
}

// handleMessage deserializes a NATS message and emits it on the local bus
func (s *NATSEventSubscriber) handleMessage(subject string, data []byte) error {
	var envelope EventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		log.WithFields(log.Fields{
			"subject": subject,
			"error":   err,
		}).Error("Failed to unmarshal event envelope")
		return fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}

	if envelope.SourceService == s.source {
		return nil
	}

	eventType := events.EventType(envelope.EventType)
	observability.GetMetrics().RecordNATSMessageReceived(envelope.EventType)

	event, err := s.deserializeEvent(eventType, envelope.Payload)
	if err != nil {
		log.WithFields(log.Fields{
			"subject":     subject,
			"eventType":   eventType,
			"eventId":     envelope.EventID,
			"error":       err,
			"payloadSize": len(envelope.Payload),
		}).Error("Failed to deserialize event payload")
		return fmt.Errorf("failed to deserialize event payload: %w", err)
	}

	log.WithFields(log.Fields{
		"subject":   subject,
		"eventType": eventType,
		"eventId":   envelope.EventID,
		"source":    envelope.SourceService,
	}).Debug("Re-emitting remote event on local bus")

	s.local.Emit(context.Background(), event)
	return nil
}

// deserializeEvent decodes the payload into the value type local handlers expect
func (s *NATSEventSubscriber) deserializeEvent(eventType events.EventType, payload []byte) (events.Event, error) {
	ptr, err := events.New(eventType)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(payload, ptr); err != nil {
		return nil, err
	}

	// events.New hands out pointers; publishers emit values
	event, ok := reflect.ValueOf(ptr).Elem().Interface().(events.Event)
	if !ok {
		return nil, fmt.Errorf("event type %s does not decode to an event value", eventType)
	}
	return event, nil
}
