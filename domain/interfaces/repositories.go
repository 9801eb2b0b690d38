package interfaces

import (
	"context"

	"summa/domain/entities"
)

// UserRepository defines the interface for public profile data access
type UserRepository interface {
	// GetByID retrieves a user by id, nil when missing
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByUsername retrieves a user by username, nil when missing
	GetByUsername(ctx context.Context, username string) (*entities.User, error)

	// GetByIDs retrieves every existing user among ids
	GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error)

	// Create inserts a new user
	Create(ctx context.Context, user *entities.User) error

	// Update writes the present fields of patch and returns the stored user
	Update(ctx context.Context, id string, patch *entities.UserPatch) (*entities.User, error)
}

// UserAccountRepository defines the interface for private account data access
type UserAccountRepository interface {
	// GetByID retrieves an account joined with its profile, nil when missing
	GetByID(ctx context.Context, id string) (*entities.UserAccount, error)

	// Create inserts the account row of an existing user
	Create(ctx context.Context, account *entities.UserAccount) error

	// Update writes the present fields of patch
	Update(ctx context.Context, id string, patch *entities.UserAccountPatch) error
}

// GameSessionRepository defines the interface for game session data access
type GameSessionRepository interface {
	// GetByID retrieves a session by id, nil when missing
	GetByID(ctx context.Context, id string) (*entities.GameSession, error)

	// Create inserts a session from the fields present in patch
	Create(ctx context.Context, id string, patch *entities.GameSessionPatch) (*entities.GameSession, error)

	// Update writes the present fields of patch and returns the stored session
	Update(ctx context.Context, id string, patch *entities.GameSessionPatch) (*entities.GameSession, error)

	// ListOngoingForUser returns running sessions the user created or plays in, newest first
	ListOngoingForUser(ctx context.Context, userID string, limit int) ([]*entities.GameSession, error)

	// ListForUser returns all sessions the user created or plays in, newest first
	ListForUser(ctx context.Context, userID string, limit int) ([]*entities.GameSession, error)
}

// GameSessionPlayerRepository defines the interface for player data access
type GameSessionPlayerRepository interface {
	// Get retrieves one player, nil when missing
	Get(ctx context.Context, gameSessionID, userID string) (*entities.GameSessionPlayer, error)

	// ListBySession returns the players of a session
	ListBySession(ctx context.Context, gameSessionID string) ([]*entities.GameSessionPlayer, error)

	// Upsert writes the whole player record, replacing an existing one
	Upsert(ctx context.Context, player *entities.GameSessionPlayer) error

	// Update writes the present fields of patch and returns the stored player
	Update(ctx context.Context, gameSessionID, userID string, patch *entities.GameSessionPlayerPatch) (*entities.GameSessionPlayer, error)

	// Delete removes a player
	Delete(ctx context.Context, gameSessionID, userID string) error
}
