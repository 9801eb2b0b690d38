package services

import (
	"context"
	"errors"
	"fmt"

	"summa/domain/entities"
	"summa/domain/events"
	"summa/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// maxUsernameAttempts bounds the numbered suffixes tried for a taken username
const maxUsernameAttempts = 20

// userService implements the UserService interface
type userService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory interfaces.UnitOfWorkFactory) interfaces.UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

// GetByID returns a user, nil when missing
func (s *userService) GetByID(ctx context.Context, id string) (*entities.User, error) {
	user, err := s.uowFactory.Direct().UserRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByUsername returns a user, nil when missing
func (s *userService) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	user, err := s.uowFactory.Direct().UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetByIDs returns the existing users among ids
func (s *userService) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	users, err := s.uowFactory.Direct().UserRepository().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// GetAccount returns the private account of a user, nil when missing
func (s *userService) GetAccount(ctx context.Context, id string) (*entities.UserAccount, error) {
	account, err := s.uowFactory.Direct().UserAccountRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user account: %w", err)
	}
	return account, nil
}

// EnsureAccount returns the account of a verified identity. On first sign-in
// the profile and the account are created together; the bool reports creation.
// Concurrent first sign-ins of one identity all get the account that won.
func (s *userService) EnsureAccount(ctx context.Context, seed *entities.NewAccount) (*entities.UserAccount, bool, error) {
	existing, err := s.GetAccount(ctx, seed.ID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	account, err := s.provision(ctx, seed)
	if err == nil {
		return account, true, nil
	}
	if !errors.Is(err, entities.ErrAlreadyExists) && !entities.IsValidation(err) {
		return nil, false, err
	}

	existing, readErr := s.GetAccount(ctx, seed.ID)
	if readErr != nil {
		return nil, false, readErr
	}
	if existing == nil {
		return nil, false, err
	}
	log.WithField("userId", seed.ID).Debug("Account provisioned concurrently")
	return existing, false, nil
}

func (s *userService) provision(ctx context.Context, seed *entities.NewAccount) (*entities.UserAccount, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, seed.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		username, err := s.freeUsername(ctx, uow.UserRepository(), seed.UsernameCandidate())
		if err != nil {
			return nil, err
		}

		name := seed.Name
		if name == "" {
			name = username
		}
		user = &entities.User{
			ID:        seed.ID,
			Username:  username,
			Name:      name,
			AvatarURL: seed.AvatarURL,
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	account := &entities.UserAccount{User: *user, Email: seed.Email}
	if err := uow.UserAccountRepository().Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create user account: %w", err)
	}

	if err := uow.EventBus().Publish(events.UserUpdatedEvent{UserID: user.ID, Username: user.Username}); err != nil {
		return nil, fmt.Errorf("failed to publish user updated event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userId":   user.ID,
		"username": user.Username,
	}).Info("Provisioned user account")

	return account, nil
}

// freeUsername returns candidate or the first free numbered variant of it
func (s *userService) freeUsername(ctx context.Context, users interfaces.UserRepository, candidate string) (string, error) {
	for i := 1; i <= maxUsernameAttempts; i++ {
		username := candidate
		if i > 1 {
			username = fmt.Sprintf("%s_%d", candidate, i)
		}

		taken, err := users.GetByUsername(ctx, username)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if taken == nil {
			return username, nil
		}
	}
	return candidate + "_" + uuid.NewString()[:8], nil
}

// UpdateProfile writes the present fields of a user's own profile
func (s *userService) UpdateProfile(ctx context.Context, id string, patch *entities.UserPatch) (*entities.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	users := s.uowFactory.Direct().UserRepository()
	if patch.IsEmpty() {
		user, err := users.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return nil, &entities.NotFoundError{Resource: "user", Key: id}
		}
		return user, nil
	}

	if patch.Username != nil {
		holder, err := users.GetByUsername(ctx, *patch.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if holder != nil && holder.ID != id {
			return nil, &entities.ValidationError{
				Entity: "user",
				Fields: []entities.FieldError{{Field: "username", Rule: "unique"}},
			}
		}
	}

	user, err := users.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := s.uowFactory.Publisher().Publish(events.UserUpdatedEvent{UserID: user.ID, Username: user.Username}); err != nil {
		log.WithFields(log.Fields{
			"userId": user.ID,
			"error":  err,
		}).Error("Failed to publish user updated event")
	}

	return user, nil
}
