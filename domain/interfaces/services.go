package interfaces

import (
	"context"

	"summa/domain/entities"
)

// GameSessionService defines the interface for session operations
type GameSessionService interface {
	// GetByID returns a session, nil when missing
	GetByID(ctx context.Context, id string) (*entities.GameSession, error)

	// Create writes a new running session stamped with the server clock
	Create(ctx context.Context, actor *entities.UserAccount, input *entities.GameSessionInput) (*entities.GameSession, error)

	// Update applies an administrative edit; only the creator or an admin may do this
	Update(ctx context.Context, actor *entities.UserAccount, id string, patch *entities.GameSessionPatch) (*entities.GameSession, error)

	// End records the end time of a session
	End(ctx context.Context, actor *entities.UserAccount, id string, at entities.Timestamp) (*entities.GameSession, error)

	// ListOngoing returns the running sessions of a user, newest first
	ListOngoing(ctx context.Context, userID string) ([]*entities.GameSession, error)

	// ListForUser returns recent sessions of a user, newest first
	ListForUser(ctx context.Context, userID string, limit int) ([]*entities.GameSession, error)
}

// PlayerService defines the interface for player operations within a session
type PlayerService interface {
	// List returns the players of a session
	List(ctx context.Context, gameSessionID string) ([]*entities.GameSessionPlayer, error)

	// AddPlayer seats the user with the given username with default buy-ins and stack
	AddPlayer(ctx context.Context, actor *entities.UserAccount, gameSessionID, username string) (*entities.GameSessionPlayer, error)

	// RemovePlayer removes a player from a session
	RemovePlayer(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string) error

	// UpdateStackBb sets the current stack of a player
	UpdateStackBb(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string, stackBb float64) (*entities.GameSessionPlayer, error)

	// UpdateBuyins sets the buy-in count of a player
	UpdateBuyins(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string, buyins int) (*entities.GameSessionPlayer, error)

	// Update writes the present fields of patch
	Update(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string, patch *entities.GameSessionPlayerPatch) (*entities.GameSessionPlayer, error)
}

// UserService defines the interface for user and account operations
type UserService interface {
	// GetByID returns a user, nil when missing
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByUsername returns a user, nil when missing
	GetByUsername(ctx context.Context, username string) (*entities.User, error)

	// GetByIDs returns the existing users among ids
	GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error)

	// GetAccount returns the private account of a user, nil when missing
	GetAccount(ctx context.Context, id string) (*entities.UserAccount, error)

	// EnsureAccount returns the account for a verified identity, creating it on first sign-in
	EnsureAccount(ctx context.Context, seed *entities.NewAccount) (*entities.UserAccount, bool, error)

	// UpdateProfile writes the present fields of a user's own profile
	UpdateProfile(ctx context.Context, id string, patch *entities.UserPatch) (*entities.User, error)
}
