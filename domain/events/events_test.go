package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopics(t *testing.T) {
	t.Parallel()

	added := PlayerAddedEvent{GameSessionID: "s1", UserID: "u1"}
	assert.ElementsMatch(t, []string{"game_sessions/s1/players", "users/u1/game_sessions"}, added.Topics())

	updated := GameSessionUpdatedEvent{GameSessionID: "s1", ParticipantIDs: []string{"u1", "u2"}}
	assert.Equal(t, []string{"game_sessions/s1", "users/u1/game_sessions", "users/u2/game_sessions"}, updated.Topics())

	user := UserUpdatedEvent{UserID: "u1"}
	assert.Contains(t, user.Topics(), UsersTopic)
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, eventType := range AllEventTypes {
		event, err := New(eventType)
		require.NoError(t, err)
		assert.Equal(t, eventType, event.Type())
	}

	_, err := New("bogus")
	assert.Error(t, err)
}
