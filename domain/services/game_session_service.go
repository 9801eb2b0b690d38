package services

import (
	"context"
	"fmt"

	"summa/domain/entities"
	"summa/domain/events"
	"summa/domain/interfaces"
	"summa/infrastructure/observability"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// OngoingGameSessionsLimit caps the ongoing-sessions list of a user
const OngoingGameSessionsLimit = 5

// gameSessionService implements the GameSessionService interface
type gameSessionService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewGameSessionService creates a new game session service
func NewGameSessionService(uowFactory interfaces.UnitOfWorkFactory) interfaces.GameSessionService {
	return &gameSessionService{
		uowFactory: uowFactory,
	}
}

// GetByID returns a session, nil when missing
func (s *gameSessionService) GetByID(ctx context.Context, id string) (*entities.GameSession, error) {
	session, err := s.uowFactory.Direct().GameSessionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	return session, nil
}

// Create writes a running session whose start time comes from the database clock
func (s *gameSessionService) Create(ctx context.Context, actor *entities.UserAccount, input *entities.GameSessionInput) (*entities.GameSession, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	startedAt := entities.ServerTimestamp()
	patch := &entities.GameSessionPatch{
		Name:         &input.Name,
		StartedAt:    &startedAt,
		ClearEndedAt: true,
		BuyinBb:      &input.BuyinBb,
		Rate:         &input.Rate,
		CreatorID:    &actor.ID,
	}

	session, err := uow.GameSessionRepository().Create(ctx, uuid.NewString(), patch)
	if err != nil {
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}

	if err := uow.EventBus().Publish(events.GameSessionCreatedEvent{
		GameSessionID: session.ID,
		CreatorID:     session.CreatorID,
		Name:          session.Name,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish game session created event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	observability.GetMetrics().UpdateActiveGameSessions(1)
	log.WithFields(log.Fields{
		"gameSessionId": session.ID,
		"creatorId":     session.CreatorID,
	}).Info("Game session created")

	return session, nil
}

// Update applies an administrative edit
func (s *gameSessionService) Update(ctx context.Context, actor *entities.UserAccount, id string, patch *entities.GameSessionPatch) (*entities.GameSession, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	current, err := uow.GameSessionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	if current == nil {
		return nil, &entities.NotFoundError{Resource: "game session", Key: id}
	}
	if !canAdminister(actor, current) {
		return nil, entities.ErrForbidden
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated, err := uow.GameSessionRepository().Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update game session: %w", err)
	}

	players, err := uow.GameSessionPlayerRepository().ListBySession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	participants := lo.Uniq(append(
		[]string{current.CreatorID, updated.CreatorID},
		lo.Map(players, func(p *entities.GameSessionPlayer, _ int) string { return p.UserID })...,
	))

	if err := uow.EventBus().Publish(events.GameSessionUpdatedEvent{
		GameSessionID:  id,
		Ended:          updated.IsEnded(),
		ParticipantIDs: participants,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish game session updated event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	switch {
	case current.IsOngoing() && updated.IsEnded():
		observability.GetMetrics().UpdateActiveGameSessions(-1)
	case current.IsEnded() && updated.IsOngoing():
		observability.GetMetrics().UpdateActiveGameSessions(1)
	}

	log.WithFields(log.Fields{
		"gameSessionId": id,
		"actorId":       actor.ID,
		"ended":         updated.IsEnded(),
	}).Info("Game session updated")

	return updated, nil
}

// End records the end time of a session
func (s *gameSessionService) End(ctx context.Context, actor *entities.UserAccount, id string, at entities.Timestamp) (*entities.GameSession, error) {
	return s.Update(ctx, actor, id, &entities.GameSessionPatch{EndedAt: &at})
}

// ListOngoing returns the running sessions of a user, newest first
func (s *gameSessionService) ListOngoing(ctx context.Context, userID string) ([]*entities.GameSession, error) {
	sessions, err := s.uowFactory.Direct().GameSessionRepository().ListOngoingForUser(ctx, userID, OngoingGameSessionsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ongoing game sessions: %w", err)
	}
	return sessions, nil
}

// ListForUser returns recent sessions of a user, newest first
func (s *gameSessionService) ListForUser(ctx context.Context, userID string, limit int) ([]*entities.GameSession, error) {
	if limit <= 0 {
		limit = OngoingGameSessionsLimit
	}
	sessions, err := s.uowFactory.Direct().GameSessionRepository().ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list game sessions: %w", err)
	}
	return sessions, nil
}
