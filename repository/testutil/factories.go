package testutil

import (
	"fmt"
	"time"

	"summa/domain/entities"

	"github.com/google/uuid"
)

// CreateTestUser creates a valid user with a unique id
func CreateTestUser(username string) *entities.User {
	return &entities.User{
		ID:       uuid.NewString(),
		Username: username,
		Name:     fmt.Sprintf("Test %s", username),
	}
}

// CreateTestAccount creates a valid account for user
func CreateTestAccount(user *entities.User, isAdmin bool) *entities.UserAccount {
	return &entities.UserAccount{
		User:    *user,
		Email:   user.Username + "@example.com",
		IsAdmin: isAdmin,
	}
}

// CreateTestGameSessionPatch creates a full patch for inserting a running session
func CreateTestGameSessionPatch(name, creatorID string, startedAt time.Time) *entities.GameSessionPatch {
	buyin := 100
	rate := 0.5
	start := entities.At(startedAt)
	return &entities.GameSessionPatch{
		Name:      &name,
		StartedAt: &start,
		BuyinBb:   &buyin,
		Rate:      &rate,
		CreatorID: &creatorID,
	}
}

// CreateTestPlayer creates a player with the default opening stack
func CreateTestPlayer(gameSessionID, userID string) *entities.GameSessionPlayer {
	return &entities.GameSessionPlayer{
		GameSessionID: gameSessionID,
		UserID:        userID,
		Buyins:        1,
		StackBb:       200,
	}
}
