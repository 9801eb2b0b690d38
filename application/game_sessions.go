package application

import (
	"context"
	"fmt"

	"summa/domain/entities"
	"summa/domain/events"
	"summa/domain/interfaces"
	"summa/live"
)

// GameSessionsHook reads and writes game sessions
type GameSessionsHook struct {
	hub      *live.Hub
	sessions interfaces.GameSessionService
	players  interfaces.PlayerService
	users    interfaces.UserService
}

// Watch follows one session. Data is nil while the session does not exist.
func (h *GameSessionsHook) Watch(ctx context.Context, id string) *live.Subscription[*entities.GameSession] {
	return live.Subscribe(ctx, h.hub, KindGameSession, []string{events.GameSessionTopic(id)},
		func(ctx context.Context) (*entities.GameSession, error) {
			return h.sessions.GetByID(ctx, id)
		})
}

// WatchOngoing follows the running sessions a user created or plays in
func (h *GameSessionsHook) WatchOngoing(ctx context.Context, userID string) *live.Subscription[[]*entities.GameSession] {
	return live.Subscribe(ctx, h.hub, KindOngoingGameSession, []string{events.UserSessionsTopic(userID)},
		func(ctx context.Context) ([]*entities.GameSession, error) {
			return h.Ongoing(ctx, userID)
		})
}

// Ongoing loads the running sessions of a user once
func (h *GameSessionsHook) Ongoing(ctx context.Context, userID string) ([]*entities.GameSession, error) {
	sessions, err := h.sessions.ListOngoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []*entities.GameSession{}
	}
	return sessions, nil
}

// WatchSummary follows a session together with its players. Data is nil
// while the session does not exist.
func (h *GameSessionsHook) WatchSummary(ctx context.Context, id string) *live.Subscription[*entities.SessionSummary] {
	topics := []string{events.GameSessionTopic(id), events.PlayersTopic(id)}
	return live.Subscribe(ctx, h.hub, KindSessionSummary, topics,
		func(ctx context.Context) (*entities.SessionSummary, error) {
			return h.Summary(ctx, id)
		})
}

// Summary loads a session with its named players once, nil when the session
// is missing
func (h *GameSessionsHook) Summary(ctx context.Context, id string) (*entities.SessionSummary, error) {
	session, err := h.sessions.GetByID(ctx, id)
	if err != nil || session == nil {
		return nil, err
	}
	players, err := h.players.List(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := entities.Summarize(session, players)
	if len(summary.Players) == 0 {
		return summary, nil
	}
	users, err := h.users.GetByIDs(ctx, summary.PlayerIDs())
	if err != nil {
		return nil, err
	}
	summary.NamePlayers(users)
	return summary, nil
}

// Create starts a new session owned by actor and returns its id
func (h *GameSessionsHook) Create(ctx context.Context, actor *entities.UserAccount, input *entities.GameSessionInput) (string, error) {
	session, err := h.sessions.Create(ctx, actor, input)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

// End records when a session finished. A zero time ends it now by the server clock.
func (h *GameSessionsHook) End(ctx context.Context, actor *entities.UserAccount, id string, at entities.Timestamp) (*entities.GameSession, error) {
	if !at.IsServer() && at.Time().IsZero() {
		at = entities.ServerTimestamp()
	}
	session, err := h.sessions.End(ctx, actor, id, at)
	if err != nil {
		return nil, fmt.Errorf("failed to end game session %s: %w", id, err)
	}
	return session, nil
}
