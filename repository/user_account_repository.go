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

// UserAccountRepository implements the UserAccountRepository interface
type UserAccountRepository struct {
	q Queryable
}

// NewUserAccountRepository creates a new user account repository
func NewUserAccountRepository(db *database.DB) *UserAccountRepository {
	return &UserAccountRepository{q: db.Pool}
}

func newUserAccountRepositoryWithTx(tx Queryable) *UserAccountRepository {
	return &UserAccountRepository{q: tx}
}

// GetByID retrieves an account together with its public profile
func (r *UserAccountRepository) GetByID(ctx context.Context, id string) (*entities.UserAccount, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("user_account", "GetByID")()

	query := `
		SELECT u.id, u.username, u.name, u.avatar_url, a.email, a.permissions
		FROM user_accounts a
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1
	`

	var row userAccountRow
	err := r.q.QueryRow(ctx, query, id).Scan(
		&row.ID,
		&row.Username,
		&row.Name,
		&row.AvatarURL,
		&row.Email,
		&row.Permissions,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user account %s: %w", id, err)
	}

	return decodeUserAccount(&row)
}

// Create inserts the account row of an existing user
func (r *UserAccountRepository) Create(ctx context.Context, account *entities.UserAccount) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("user_account", "Create")()

	cols, err := encodeUserAccount(account)
	if err != nil {
		return err
	}

	names, values, args := cols.insertClause()
	query := fmt.Sprintf(`INSERT INTO user_accounts (%s) VALUES (%s)`, names, values)
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create user account: %w", translateWriteError(err, cols))
	}
	return nil
}

// Update writes the present fields of patch
func (r *UserAccountRepository) Update(ctx context.Context, id string, patch *entities.UserAccountPatch) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("user_account", "Update")()

	cols, err := encodeUserAccountPatch(patch)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}

	set, args := cols.setClause(0)
	query := fmt.Sprintf(`UPDATE user_accounts SET %s, updated_at = NOW() WHERE user_id = $%d`, set, len(args)+1)

	tag, err := r.q.Exec(ctx, query, append(args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update user account %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &entities.NotFoundError{Resource: "user account", Key: id}
	}
	return nil
}
