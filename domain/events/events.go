package events

import "fmt"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeGameSessionCreated EventType = "game_session_created"
	EventTypeGameSessionUpdated EventType = "game_session_updated"
	EventTypePlayerAdded        EventType = "player_added"
	EventTypePlayerUpdated      EventType = "player_updated"
	EventTypePlayerRemoved      EventType = "player_removed"
	EventTypeUserUpdated        EventType = "user_updated"
)

// AllEventTypes lists every event type, in publication order of the subject mapper
var AllEventTypes = []EventType{
	EventTypeGameSessionCreated,
	EventTypeGameSessionUpdated,
	EventTypePlayerAdded,
	EventTypePlayerUpdated,
	EventTypePlayerRemoved,
	EventTypeUserUpdated,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	// Topics names the live views this change invalidates
	Topics() []string
}

// GameSessionTopic is the topic of a single session document
func GameSessionTopic(gameSessionID string) string {
	return fmt.Sprintf("game_sessions/%s", gameSessionID)
}

// PlayersTopic is the topic of a session's player collection
func PlayersTopic(gameSessionID string) string {
	return fmt.Sprintf("game_sessions/%s/players", gameSessionID)
}

// UserTopic is the topic of a single user document
func UserTopic(userID string) string {
	return fmt.Sprintf("users/%s", userID)
}

// UserSessionsTopic is the topic of the session list a user takes part in
func UserSessionsTopic(userID string) string {
	return fmt.Sprintf("users/%s/game_sessions", userID)
}

// UsersTopic covers lookups by username, which cannot be keyed by id
const UsersTopic = "users"

// GameSessionCreatedEvent is emitted after a session is written
type GameSessionCreatedEvent struct {
	GameSessionID string `json:"gameSessionId"`
	CreatorID     string `json:"creatorId"`
	Name          string `json:"name"`
}

func (e GameSessionCreatedEvent) Type() EventType {
	return EventTypeGameSessionCreated
}

func (e GameSessionCreatedEvent) Topics() []string {
	return []string{GameSessionTopic(e.GameSessionID), UserSessionsTopic(e.CreatorID)}
}

// GameSessionUpdatedEvent is emitted after an administrative edit, including ending a session
type GameSessionUpdatedEvent struct {
	GameSessionID  string   `json:"gameSessionId"`
	Ended          bool     `json:"ended"`
	ParticipantIDs []string `json:"participantIds"` // creator and players, whose session lists change
}

func (e GameSessionUpdatedEvent) Type() EventType {
	return EventTypeGameSessionUpdated
}

func (e GameSessionUpdatedEvent) Topics() []string {
	topics := []string{GameSessionTopic(e.GameSessionID)}
	for _, id := range e.ParticipantIDs {
		topics = append(topics, UserSessionsTopic(id))
	}
	return topics
}

// PlayerAddedEvent is emitted when a user is seated in a session
type PlayerAddedEvent struct {
	GameSessionID string  `json:"gameSessionId"`
	UserID        string  `json:"userId"`
	Buyins        int     `json:"buyins"`
	StackBb       float64 `json:"stackBb"`
}

func (e PlayerAddedEvent) Type() EventType {
	return EventTypePlayerAdded
}

func (e PlayerAddedEvent) Topics() []string {
	return []string{PlayersTopic(e.GameSessionID), UserSessionsTopic(e.UserID)}
}

// PlayerUpdatedEvent is emitted when buy-ins or the stack of a player change
type PlayerUpdatedEvent struct {
	GameSessionID string  `json:"gameSessionId"`
	UserID        string  `json:"userId"`
	Buyins        int     `json:"buyins"`
	StackBb       float64 `json:"stackBb"`
}

func (e PlayerUpdatedEvent) Type() EventType {
	return EventTypePlayerUpdated
}

func (e PlayerUpdatedEvent) Topics() []string {
	return []string{PlayersTopic(e.GameSessionID)}
}

// PlayerRemovedEvent is emitted when a player leaves or is removed from a session
type PlayerRemovedEvent struct {
	GameSessionID string `json:"gameSessionId"`
	UserID        string `json:"userId"`
	RemovedBy     string `json:"removedBy"`
}

func (e PlayerRemovedEvent) Type() EventType {
	return EventTypePlayerRemoved
}

func (e PlayerRemovedEvent) Topics() []string {
	return []string{PlayersTopic(e.GameSessionID), UserSessionsTopic(e.UserID)}
}

// UserUpdatedEvent is emitted when a profile is created or changed
type UserUpdatedEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

func (e UserUpdatedEvent) Type() EventType {
	return EventTypeUserUpdated
}

func (e UserUpdatedEvent) Topics() []string {
	return []string{UserTopic(e.UserID), UsersTopic}
}

// New returns a zero value of the event struct for eventType, ready for decoding
func New(eventType EventType) (Event, error) {
	switch eventType {
	case EventTypeGameSessionCreated:
		return &GameSessionCreatedEvent{}, nil
	case EventTypeGameSessionUpdated:
		return &GameSessionUpdatedEvent{}, nil
	case EventTypePlayerAdded:
		return &PlayerAddedEvent{}, nil
	case EventTypePlayerUpdated:
		return &PlayerUpdatedEvent{}, nil
	case EventTypePlayerRemoved:
		return &PlayerRemovedEvent{}, nil
	case EventTypeUserUpdated:
		return &UserUpdatedEvent{}, nil
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}
