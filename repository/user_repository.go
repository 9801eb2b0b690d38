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

const userColumns = "id, username, name, avatar_url"

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var r userRow
	if err := row.Scan(&r.ID, &r.Username, &r.Name, &r.AvatarURL); err != nil {
		return nil, err
	}
	return decodeUser(&r)
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "GetByID")()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "GetByUsername")()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 LIMIT 1`
	user, err := scanUser(r.q.QueryRow(ctx, query, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return user, nil
}

// GetByIDs retrieves every existing user among ids, ordered by username
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "GetByIDs")()

	if len(ids) == 0 {
		return []*entities.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY username`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []*entities.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "Create")()

	cols, err := encodeUser(user)
	if err != nil {
		return err
	}

	names, values, args := cols.insertClause()
	query := fmt.Sprintf(`INSERT INTO users (%s) VALUES (%s)`, names, values)
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create user: %w", translateWriteError(err, cols))
	}
	return nil
}

// Update writes the present fields of patch and returns the stored user
func (r *UserRepository) Update(ctx context.Context, id string, patch *entities.UserPatch) (*entities.User, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "Update")()

	cols, err := encodeUserPatch(patch)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		user, err := r.GetByID(ctx, id)
		if err == nil && user == nil {
			return nil, &entities.NotFoundError{Resource: "user", Key: id}
		}
		return user, err
	}

	set, args := cols.setClause(0)
	query := fmt.Sprintf(`UPDATE users SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		set, len(args)+1, userColumns)

	user, err := scanUser(r.q.QueryRow(ctx, query, append(args, id)...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &entities.NotFoundError{Resource: "user", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", id, translateWriteError(err, cols))
	}
	return user, nil
}
