package application

import (
	"context"

	"summa/domain/entities"
	"summa/domain/events"
	"summa/domain/interfaces"
	"summa/live"
)

// PlayersHook reads and writes the player collection of one session
type PlayersHook struct {
	hub           *live.Hub
	players       interfaces.PlayerService
	gameSessionID string
}

// Watch follows the players of the session. An empty slice means nobody is seated.
func (h *PlayersHook) Watch(ctx context.Context) *live.Subscription[[]*entities.GameSessionPlayer] {
	return live.Subscribe(ctx, h.hub, KindPlayers, []string{events.PlayersTopic(h.gameSessionID)},
		h.List)
}

// List loads the players of the session once
func (h *PlayersHook) List(ctx context.Context) ([]*entities.GameSessionPlayer, error) {
	players, err := h.players.List(ctx, h.gameSessionID)
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []*entities.GameSessionPlayer{}
	}
	return players, nil
}

// AddPlayer seats the user with the given username. Re-adding a seated user
// resets their record.
func (h *PlayersHook) AddPlayer(ctx context.Context, actor *entities.UserAccount, username string) (*entities.GameSessionPlayer, error) {
	return h.players.AddPlayer(ctx, actor, h.gameSessionID, username)
}

// RemovePlayer removes a player from the session
func (h *PlayersHook) RemovePlayer(ctx context.Context, actor *entities.UserAccount, userID string) error {
	return h.players.RemovePlayer(ctx, actor, h.gameSessionID, userID)
}

// PlayerHook writes a single player's record
type PlayerHook struct {
	players       interfaces.PlayerService
	gameSessionID string
	userID        string
}

// UpdateStackBb sets the player's current stack
func (h *PlayerHook) UpdateStackBb(ctx context.Context, actor *entities.UserAccount, stackBb float64) (*entities.GameSessionPlayer, error) {
	return h.players.UpdateStackBb(ctx, actor, h.gameSessionID, h.userID, stackBb)
}

// UpdateBuyins sets the player's buy-in count
func (h *PlayerHook) UpdateBuyins(ctx context.Context, actor *entities.UserAccount, buyins int) (*entities.GameSessionPlayer, error) {
	return h.players.UpdateBuyins(ctx, actor, h.gameSessionID, h.userID, buyins)
}

// Update writes whichever of stack and buy-ins the patch carries
func (h *PlayerHook) Update(ctx context.Context, actor *entities.UserAccount, patch *entities.GameSessionPlayerPatch) (*entities.GameSessionPlayer, error) {
	return h.players.Update(ctx, actor, h.gameSessionID, h.userID, patch)
}
