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

const playerColumns = "game_session_id, user_id, buyins, stack_bb"

// GameSessionPlayerRepository implements the GameSessionPlayerRepository interface
type GameSessionPlayerRepository struct {
	q Queryable
}

// NewGameSessionPlayerRepository creates a new player repository
func NewGameSessionPlayerRepository(db *database.DB) *GameSessionPlayerRepository {
	return &GameSessionPlayerRepository{q: db.Pool}
}

func newGameSessionPlayerRepositoryWithTx(tx Queryable) *GameSessionPlayerRepository {
	return &GameSessionPlayerRepository{q: tx}
}

func scanPlayer(row pgx.Row) (*entities.GameSessionPlayer, error) {
	var r gameSessionPlayerRow
	if err := row.Scan(&r.GameSessionID, &r.UserID, &r.Buyins, &r.StackBb); err != nil {
		return nil, err
	}
	return decodeGameSessionPlayer(&r)
}

func playerNotFound(gameSessionID, userID string) error {
	return &entities.NotFoundError{Resource: "game session player", Key: gameSessionID + "/" + userID}
}

// Get retrieves one player of a session
func (r *GameSessionPlayerRepository) Get(ctx context.Context, gameSessionID, userID string) (*entities.GameSessionPlayer, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("game_session_player", "Get")()

	query := `SELECT ` + playerColumns + ` FROM game_session_players WHERE game_session_id = $1 AND user_id = $2`
	player, err := scanPlayer(r.q.QueryRow(ctx, query, gameSessionID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s in game session %s: %w", userID, gameSessionID, err)
	}
	return player, nil
}

// ListBySession returns the players of a session in join order
func (r *GameSessionPlayerRepository) ListBySession(ctx context.Context, gameSessionID string) ([]*entities.GameSessionPlayer, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("game_session_player", "ListBySession")()

	query := `
		SELECT ` + playerColumns + `
		FROM game_session_players
		WHERE game_session_id = $1
		ORDER BY created_at, user_id
	`
	rows, err := r.q.Query(ctx, query, gameSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := []*entities.GameSessionPlayer{}
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return players, nil
}

// Upsert writes the whole player record; an existing record is overwritten
func (r *GameSessionPlayerRepository) Upsert(ctx context.Context, player *entities.GameSessionPlayer) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("game_session_player", "Upsert")()

	cols, err := encodeGameSessionPlayer(player)
	if err != nil {
		return err
	}

	names, values, args := cols.insertClause()
	query := fmt.Sprintf(`
		INSERT INTO game_session_players (%s) VALUES (%s)
		ON CONFLICT (game_session_id, user_id) DO UPDATE
		SET buyins = EXCLUDED.buyins, stack_bb = EXCLUDED.stack_bb, updated_at = NOW()
	`, names, values)

	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert player: %w", translateWriteError(err, cols))
	}
	return nil
}

// Update writes the present fields of patch and returns the stored player
func (r *GameSessionPlayerRepository) Update(ctx context.Context, gameSessionID, userID string, patch *entities.GameSessionPlayerPatch) (*entities.GameSessionPlayer, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("game_session_player", "Update")()

	cols, err := encodeGameSessionPlayerPatch(patch)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		player, err := r.Get(ctx, gameSessionID, userID)
		if err == nil && player == nil {
			return nil, playerNotFound(gameSessionID, userID)
		}
		return player, err
	}

	set, args := cols.setClause(0)
	query := fmt.Sprintf(`
		UPDATE game_session_players SET %s, updated_at = NOW()
		WHERE game_session_id = $%d AND user_id = $%d
		RETURNING %s
	`, set, len(args)+1, len(args)+2, playerColumns)

	player, err := scanPlayer(r.q.QueryRow(ctx, query, append(args, gameSessionID, userID)...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, playerNotFound(gameSessionID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update player %s in game session %s: %w", userID, gameSessionID, err)
	}
	return player, nil
}

// Delete removes a player from a session
func (r *GameSessionPlayerRepository) Delete(ctx context.Context, gameSessionID, userID string) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("game_session_player", "Delete")()

	tag, err := r.q.Exec(ctx,
		`DELETE FROM game_session_players WHERE game_session_id = $1 AND user_id = $2`,
		gameSessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete player %s from game session %s: %w", userID, gameSessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return playerNotFound(gameSessionID, userID)
	}
	return nil
}
