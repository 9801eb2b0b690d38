package entities

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSession() GameSession {
	return GameSession{
		ID:        "session-1",
		Name:      "Friday cash game",
		StartedAt: time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC),
		BuyinBb:   100,
		Rate:      0.5,
		CreatorID: "user-1",
	}
}

func TestGameSession_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*GameSession)
		wantField string
	}{
		{name: "valid session", mutate: func(*GameSession) {}},
		{name: "buyin of zero", mutate: func(s *GameSession) { s.BuyinBb = 0 }, wantField: "buyinBb"},
		{name: "negative buyin", mutate: func(s *GameSession) { s.BuyinBb = -5 }, wantField: "buyinBb"},
		{name: "zero rate", mutate: func(s *GameSession) { s.Rate = 0 }, wantField: "rate"},
		{name: "negative rate", mutate: func(s *GameSession) { s.Rate = -1 }, wantField: "rate"},
		{name: "empty name", mutate: func(s *GameSession) { s.Name = "" }, wantField: "name"},
		{name: "name too long", mutate: func(s *GameSession) { s.Name = strings.Repeat("a", 256) }, wantField: "name"},
		{name: "missing creator", mutate: func(s *GameSession) { s.CreatorID = "" }, wantField: "creatorId"},
		{name: "missing start", mutate: func(s *GameSession) { s.StartedAt = time.Time{} }, wantField: "startedAt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := validSession()
			tt.mutate(&session)

			err := session.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, "game session", verr.Entity)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
		})
	}
}

func TestGameSession_NameAtLimitIsValid(t *testing.T) {
	t.Parallel()

	session := validSession()
	session.Name = strings.Repeat("a", MaxGameSessionNameLength)
	assert.NoError(t, session.Validate())
}

func TestGameSession_OngoingClassification(t *testing.T) {
	t.Parallel()

	session := validSession()
	assert.True(t, session.IsOngoing())
	assert.False(t, session.IsEnded())

	past := time.Now().Add(-time.Hour)
	session.EndedAt = &past
	assert.False(t, session.IsOngoing())
	assert.True(t, session.IsEnded())
}

func TestGameSession_Duration(t *testing.T) {
	t.Parallel()

	session := validSession()
	now := session.StartedAt.Add(90 * time.Minute)
	assert.Equal(t, 90*time.Minute, session.Duration(now))

	ended := session.StartedAt.Add(2 * time.Hour)
	session.EndedAt = &ended
	assert.Equal(t, 2*time.Hour, session.Duration(now))
}

func TestGameSessionInput_Validate(t *testing.T) {
	t.Parallel()

	valid := GameSessionInput{Name: "Home game", BuyinBb: 1, Rate: 0.25}
	assert.NoError(t, valid.Validate())

	invalid := GameSessionInput{Name: "Home game", BuyinBb: 0, Rate: 0.25}
	err := invalid.Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestGameSessionPatch_Validate(t *testing.T) {
	t.Parallel()

	zero := 0
	negativeRate := -2.0
	empty := ""
	name := "Renamed"
	ended := At(time.Now())

	tests := []struct {
		name    string
		patch   GameSessionPatch
		wantErr bool
	}{
		{name: "empty patch", patch: GameSessionPatch{}},
		{name: "name only", patch: GameSessionPatch{Name: &name}},
		{name: "end time", patch: GameSessionPatch{EndedAt: &ended}},
		{name: "zero buyin", patch: GameSessionPatch{BuyinBb: &zero}, wantErr: true},
		{name: "negative rate", patch: GameSessionPatch{Rate: &negativeRate}, wantErr: true},
		{name: "blank name", patch: GameSessionPatch{Name: &empty}, wantErr: true},
		{name: "end and reopen together", patch: GameSessionPatch{EndedAt: &ended, ClearEndedAt: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.patch.Validate()
			if tt.wantErr {
				assert.True(t, IsValidation(err), "expected ValidationError, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
