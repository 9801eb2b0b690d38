package application

import (
	"context"

	"summa/domain/entities"
	"summa/domain/events"
	"summa/domain/interfaces"
	"summa/live"
)

// UsersHook reads user profiles and updates the caller's own
type UsersHook struct {
	hub   *live.Hub
	users interfaces.UserService
}

// WatchByID follows one profile, nil while it does not exist
func (h *UsersHook) WatchByID(ctx context.Context, id string) *live.Subscription[*entities.User] {
	return live.Subscribe(ctx, h.hub, KindUser, []string{events.UserTopic(id)},
		func(ctx context.Context) (*entities.User, error) {
			return h.users.GetByID(ctx, id)
		})
}

// WatchByUsername follows whoever holds username. Any profile change reloads
// it since a rename moves the name between users.
func (h *UsersHook) WatchByUsername(ctx context.Context, username string) *live.Subscription[*entities.User] {
	return live.Subscribe(ctx, h.hub, KindUser, []string{events.UsersTopic},
		func(ctx context.Context) (*entities.User, error) {
			return h.users.GetByUsername(ctx, username)
		})
}

// GetByUsername looks a profile up once
func (h *UsersHook) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return h.users.GetByUsername(ctx, username)
}

// UpdateMe writes the present fields of the actor's own profile
func (h *UsersHook) UpdateMe(ctx context.Context, actor *entities.UserAccount, patch *entities.UserPatch) (*entities.User, error) {
	return h.users.UpdateProfile(ctx, actor.ID, patch)
}
