package repository

import (
	"context"
	"errors"
	"fmt"

	"summa/database"
	"summa/domain/entities"
	"summa/infrastructure/observability"

	"github.com/jackc/pgx/v5"
)

const gameSessionColumns = "id, name, started_at, ended_at, buyin_bb, rate, creator_id"

// GameSessionRepository implements the GameSessionRepository interface
type GameSessionRepository struct {
	q Queryable
}

// NewGameSessionRepository creates a new game session repository
func NewGameSessionRepository(db *database.DB) *GameSessionRepository {
	return &GameSessionRepository{q: db.Pool}
}

func newGameSessionRepositoryWithTx(tx Queryable) *GameSessionRepository {
	return &GameSessionRepository{q: tx}
}

func scanGameSession(row pgx.Row) (*entities.GameSession, error) {
	var r gameSessionRow
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.StartedAt,
		&r.EndedAt,
		&r.BuyinBb,
		&r.Rate,
		&r.CreatorID,
	)
	if err != nil {
		return nil, err
	}
	return decodeGameSession(&r)
}

// GetByID retrieves a game session by id
func (r *GameSessionRepository) GetByID(ctx context.Context, id string) (*entities.GameSession, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("game_session", "GetByID")()

	query := `SELECT ` + gameSessionColumns + ` FROM game_sessions WHERE id = $1`
	session, err := scanGameSession(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game session %s: %w", id, err)
	}
	return session, nil
}

// Create inserts a session built from the fields present in patch
func (r *GameSessionRepository) Create(ctx context.Context, id string, patch *entities.GameSessionPatch) (*entities.GameSession, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("game_session", "Create")()

	cols, err := encodeGameSessionPatch(patch)
	if err != nil {
		return nil, err
	}
	cols = append(columns{valueColumn("id", id)}, cols...)

	names, values, args := cols.insertClause()
	query := fmt.Sprintf(`INSERT INTO game_sessions (%s) VALUES (%s) RETURNING %s`,
		names, values, gameSessionColumns)

	session, err := scanGameSession(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to create game session: %w", translateWriteError(err, cols))
	}
	return session, nil
}

// Update writes the present fields of patch and returns the stored session
func (r *GameSessionRepository) Update(ctx context.Context, id string, patch *entities.GameSessionPatch) (*entities.GameSession, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("game_session", "Update")()

	cols, err := encodeGameSessionPatch(patch)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		session, err := r.GetByID(ctx, id)
		if err == nil && session == nil {
			return nil, &entities.NotFoundError{Resource: "game session", Key: id}
		}
		return session, err
	}

	set, args := cols.setClause(0)
	query := fmt.Sprintf(`UPDATE game_sessions SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		set, len(args)+1, gameSessionColumns)

	session, err := scanGameSession(r.q.QueryRow(ctx, query, append(args, id)...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &entities.NotFoundError{Resource: "game session", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update game session %s: %w", id, translateWriteError(err, cols))
	}
	return session, nil
}

// ListOngoingForUser returns running sessions the user created or plays in, newest first
func (r *GameSessionRepository) ListOngoingForUser(ctx context.Context, userID string, limit int) ([]*entities.GameSession, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("game_session", "ListOngoingForUser")()

	query := `
		SELECT ` + gameSessionColumns + `
		FROM game_sessions gs
		WHERE gs.ended_at IS NULL
		  AND (gs.creator_id = $1 OR EXISTS (
			SELECT 1 FROM game_session_players p
			WHERE p.game_session_id = gs.id AND p.user_id = $1
		  ))
		ORDER BY gs.started_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, userID, limit)
}

// ListForUser returns every session the user created or plays in, newest first
func (r *GameSessionRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*entities.GameSession, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("game_session", "ListForUser")()

	query := `
		SELECT ` + gameSessionColumns + `
		FROM game_sessions gs
		WHERE gs.creator_id = $1 OR EXISTS (
			SELECT 1 FROM game_session_players p
			WHERE p.game_session_id = gs.id AND p.user_id = $1
		)
		ORDER BY gs.started_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, userID, limit)
}

func (r *GameSessionRepository) list(ctx context.Context, query string, args ...any) ([]*entities.GameSession, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query game sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*entities.GameSession{}
	for rows.Next() {
		session, err := scanGameSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game sessions: %w", err)
	}
	return sessions, nil
}
