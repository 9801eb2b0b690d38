package services

import (
	"context"
	"fmt"
	"strings"

	"summa/domain/entities"
	"summa/domain/events"
	"summa/domain/interfaces"
	"summa/infrastructure/observability"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultBuyins is the buy-in count of a newly seated player
const DefaultBuyins = 1

// playerService implements the PlayerService interface. Player writes are
// single-row and run outside a unit of work.
type playerService struct {
	uowFactory     interfaces.UnitOfWorkFactory
	initialStackBb float64
}

// NewPlayerService creates a new player service
func NewPlayerService(uowFactory interfaces.UnitOfWorkFactory, initialStackBb float64) interfaces.PlayerService {
	return &playerService{
		uowFactory:     uowFactory,
		initialStackBb: initialStackBb,
	}
}

// List returns the players of a session
func (s *playerService) List(ctx context.Context, gameSessionID string) ([]*entities.GameSessionPlayer, error) {
	players, err := s.uowFactory.Direct().GameSessionPlayerRepository().ListBySession(ctx, gameSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// AddPlayer seats a user with the default buy-ins and stack. The session and
// the user are read concurrently and the upsert is not guarded by a
// transaction: concurrent invitations of the same user both write and the
// last one wins, resetting any existing seat.
func (s *playerService) AddPlayer(ctx context.Context, actor *entities.UserAccount, gameSessionID, username string) (*entities.GameSessionPlayer, error) {
	repos := s.uowFactory.Direct()
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")

	var (
		session *entities.GameSession
		user    *entities.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		session, err = repos.GameSessionRepository().GetByID(gctx, gameSessionID)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = repos.UserRepository().GetByUsername(gctx, username)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to look up player: %w", err)
	}

	if session == nil {
		return nil, &entities.NotFoundError{Resource: "game session", Key: gameSessionID}
	}
	if user == nil {
		return nil, &entities.NotFoundError{Resource: "user", Key: "@" + username}
	}

	player := &entities.GameSessionPlayer{
		GameSessionID: session.ID,
		UserID:        user.ID,
		Buyins:        DefaultBuyins,
		StackBb:       s.initialStackBb,
	}
	if err := repos.GameSessionPlayerRepository().Upsert(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to add player: %w", err)
	}

	s.publish(events.PlayerAddedEvent{
		GameSessionID: player.GameSessionID,
		UserID:        player.UserID,
		Buyins:        player.Buyins,
		StackBb:       player.StackBb,
	})
	observability.GetMetrics().RecordPlayerMutation(observability.PlayerMutationAdd)

	log.WithFields(log.Fields{
		"gameSessionId": gameSessionID,
		"userId":        user.ID,
		"actorId":       actor.ID,
	}).Info("Player added")

	return player, nil
}

// RemovePlayer removes a player from a session
func (s *playerService) RemovePlayer(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string) error {
	repos := s.uowFactory.Direct()

	session, err := s.requireSession(ctx, repos, gameSessionID)
	if err != nil {
		return err
	}
	if !canModifyPlayer(actor, session, userID) {
		return entities.ErrForbidden
	}

	if err := repos.GameSessionPlayerRepository().Delete(ctx, gameSessionID, userID); err != nil {
		return fmt.Errorf("failed to remove player: %w", err)
	}

	s.publish(events.PlayerRemovedEvent{
		GameSessionID: gameSessionID,
		UserID:        userID,
		RemovedBy:     actor.ID,
	})
	observability.GetMetrics().RecordPlayerMutation(observability.PlayerMutationRemove)

	return nil
}

// UpdateStackBb sets the current stack of a player
func (s *playerService) UpdateStackBb(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string, stackBb float64) (*entities.GameSessionPlayer, error) {
	return s.update(ctx, actor, gameSessionID, userID, &entities.GameSessionPlayerPatch{StackBb: &stackBb}, observability.PlayerMutationStack)
}

// UpdateBuyins sets the buy-in count of a player
func (s *playerService) UpdateBuyins(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string, buyins int) (*entities.GameSessionPlayer, error) {
	return s.update(ctx, actor, gameSessionID, userID, &entities.GameSessionPlayerPatch{Buyins: &buyins}, observability.PlayerMutationBuyins)
}

// Update writes the present fields of patch
func (s *playerService) Update(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string, patch *entities.GameSessionPlayerPatch) (*entities.GameSessionPlayer, error) {
	return s.update(ctx, actor, gameSessionID, userID, patch, observability.PlayerMutationGeneric)
}

func (s *playerService) update(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string, patch *entities.GameSessionPlayerPatch, mutation string) (*entities.GameSessionPlayer, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, &entities.ValidationError{
			Entity: "game session player",
			Fields: []entities.FieldError{{Field: "stackBb", Rule: "required_without", Param: "buyins"}},
		}
	}

	repos := s.uowFactory.Direct()
	session, err := s.requireSession(ctx, repos, gameSessionID)
	if err != nil {
		return nil, err
	}
	if !canModifyPlayer(actor, session, userID) {
		return nil, entities.ErrForbidden
	}

	player, err := repos.GameSessionPlayerRepository().Update(ctx, gameSessionID, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	s.publish(events.PlayerUpdatedEvent{
		GameSessionID: player.GameSessionID,
		UserID:        player.UserID,
		Buyins:        player.Buyins,
		StackBb:       player.StackBb,
	})
	observability.GetMetrics().RecordPlayerMutation(mutation)

	return player, nil
}

func (s *playerService) requireSession(ctx context.Context, repos interfaces.Repositories, id string) (*entities.GameSession, error) {
	session, err := repos.GameSessionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	if session == nil {
		return nil, &entities.NotFoundError{Resource: "game session", Key: id}
	}
	return session, nil
}

// publish reports failures without failing the write, which is already durable
func (s *playerService) publish(event events.Event) {
	if err := s.uowFactory.Publisher().Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish player event")
	}
}
