package application

import (
	"summa/domain/interfaces"
	"summa/live"
)

// Subscription kinds, used as the metric label of live queries
const (
	KindGameSession        = "game_session"
	KindOngoingGameSession = "ongoing_game_sessions"
	KindSessionSummary     = "session_summary"
	KindPlayers            = "players"
	KindUser               = "user"
)

// Hooks is the data-access surface for callers: live reads and validated
// writes for each entity and relationship
type Hooks struct {
	hub      *live.Hub
	sessions interfaces.GameSessionService
	players  interfaces.PlayerService
	users    interfaces.UserService
}

// NewHooks creates the hooks over the domain services
func NewHooks(hub *live.Hub, sessions interfaces.GameSessionService, players interfaces.PlayerService, users interfaces.UserService) *Hooks {
	return &Hooks{
		hub:      hub,
		sessions: sessions,
		players:  players,
		users:    users,
	}
}

// GameSessions returns the session hook
func (h *Hooks) GameSessions() *GameSessionsHook {
	return &GameSessionsHook{hub: h.hub, sessions: h.sessions, players: h.players, users: h.users}
}

// Players returns the hook of one session's player collection
func (h *Hooks) Players(gameSessionID string) *PlayersHook {
	return &PlayersHook{hub: h.hub, players: h.players, gameSessionID: gameSessionID}
}

// Player returns the hook of a single player
func (h *Hooks) Player(gameSessionID, userID string) *PlayerHook {
	return &PlayerHook{players: h.players, gameSessionID: gameSessionID, userID: userID}
}

// Users returns the user hook
func (h *Hooks) Users() *UsersHook {
	return &UsersHook{hub: h.hub, users: h.users}
}
