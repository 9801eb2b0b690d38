package infrastructure

import (
	"fmt"

	"summa/domain/events"
)

// EventSubjectMapper handles mapping between change events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventTypeToSubject converts an event type to its NATS subject
func (m *EventSubjectMapper) MapEventTypeToSubject(eventType events.EventType) string {
	switch eventType {
	case events.EventTypeGameSessionCreated:
		return "summa.game_sessions.created"
	case events.EventTypeGameSessionUpdated:
		return "summa.game_sessions.updated"
	case events.EventTypePlayerAdded:
		return "summa.players.added"
	case events.EventTypePlayerUpdated:
		return "summa.players.updated"
	case events.EventTypePlayerRemoved:
		return "summa.players.removed"
	case events.EventTypeUserUpdated:
		return "summa.users.updated"
	default:
		return fmt.Sprintf("summa.unknown.%s", eventType)
	}
}

// MapEventToSubject converts an event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return m.MapEventTypeToSubject(event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) (events.EventType, bool) {
	for _, eventType := range events.AllEventTypes {
		if m.MapEventTypeToSubject(eventType) == subject {
			return eventType, true
		}
	}
	return "", false
}

// GetAllSubjects returns every subject events are published to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	subjects := make([]string, 0, len(events.AllEventTypes))
	for _, eventType := range events.AllEventTypes {
		subjects = append(subjects, m.MapEventTypeToSubject(eventType))
	}
	return subjects
}

// GetStreamSubjects returns the wildcard subjects bound to the event stream
func (m *EventSubjectMapper) GetStreamSubjects() []string {
	return []string{"summa.game_sessions.*", "summa.players.*", "summa.users.*"}
}
