package repository

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"summa/domain/entities"

	"github.com/jackc/pgx/v5/pgtype"
)

// Row types mirror the storage representation: references are foreign-key
// ids and times are nullable timestamptz values.

type userRow struct {
	ID        string
	Username  string
	Name      string
	AvatarURL string
}

type userAccountRow struct {
	userRow
	Email       string
	Permissions []string
}

type gameSessionRow struct {
	ID        string
	Name      string
	StartedAt pgtype.Timestamptz
	EndedAt   pgtype.Timestamptz
	BuyinBb   int32
	Rate      float64
	CreatorID string
}

type gameSessionPlayerRow struct {
	GameSessionID string
	UserID        string
	Buyins        int32
	StackBb       float64
}

func decodeUser(row *userRow) (*entities.User, error) {
	user := &entities.User{
		ID:        row.ID,
		Username:  row.Username,
		Name:      row.Name,
		AvatarURL: row.AvatarURL,
	}
	if err := user.Validate(); err != nil {
		return nil, &entities.DecodeError{Entity: "user", Key: row.ID, Err: err}
	}
	return user, nil
}

func decodeUserAccount(row *userAccountRow) (*entities.UserAccount, error) {
	account := &entities.UserAccount{
		User: entities.User{
			ID:        row.ID,
			Username:  row.Username,
			Name:      row.Name,
			AvatarURL: row.AvatarURL,
		},
		Email:   row.Email,
		IsAdmin: slices.Contains(row.Permissions, entities.PermissionAdmin),
	}
	if err := account.Validate(); err != nil {
		return nil, &entities.DecodeError{Entity: "user account", Key: row.ID, Err: err}
	}
	return account, nil
}

func decodeGameSession(row *gameSessionRow) (*entities.GameSession, error) {
	session := &entities.GameSession{
		ID:        row.ID,
		Name:      row.Name,
		BuyinBb:   int(row.BuyinBb),
		Rate:      row.Rate,
		CreatorID: row.CreatorID,
	}
	if row.StartedAt.Valid {
		session.StartedAt = row.StartedAt.Time.UTC()
	}
	if row.EndedAt.Valid {
		ended := row.EndedAt.Time.UTC()
		session.EndedAt = &ended
	}
	if err := session.Validate(); err != nil {
		return nil, &entities.DecodeError{Entity: "game session", Key: row.ID, Err: err}
	}
	return session, nil
}

func decodeGameSessionPlayer(row *gameSessionPlayerRow) (*entities.GameSessionPlayer, error) {
	player := &entities.GameSessionPlayer{
		GameSessionID: row.GameSessionID,
		UserID:        row.UserID,
		Buyins:        int(row.Buyins),
		StackBb:       row.StackBb,
	}
	if err := player.Validate(); err != nil {
		return nil, &entities.DecodeError{
			Entity: "game session player",
			Key:    row.GameSessionID + "/" + row.UserID,
			Err:    err,
		}
	}
	return player, nil
}

// column is one encoded field. Either value is bound as a parameter or
// raw is spliced in as an SQL expression.
type column struct {
	name  string
	value any
	raw   string
	ref   string // referenced table for identifier columns
}

type columns []column

func valueColumn(name string, value any) column {
	return column{name: name, value: value}
}

// referenceColumn resolves an identifier into a foreign key on table
func referenceColumn(name, table, id string) column {
	return column{name: name, value: id, ref: table}
}

// timestampColumn passes the server-clock sentinel through to the database
func timestampColumn(name string, ts entities.Timestamp) column {
	if ts.IsServer() {
		return column{name: name, raw: "NOW()"}
	}
	return column{name: name, value: ts.Time()}
}

// setClause renders "a = $n, b = NOW()" with parameters numbered from offset+1
func (cs columns) setClause(offset int) (string, []any) {
	parts := make([]string, 0, len(cs))
	args := make([]any, 0, len(cs))
	for _, c := range cs {
		if c.raw != "" {
			parts = append(parts, fmt.Sprintf("%s = %s", c.name, c.raw))
			continue
		}
		args = append(args, c.value)
		parts = append(parts, fmt.Sprintf("%s = $%d", c.name, offset+len(args)))
	}
	return strings.Join(parts, ", "), args
}

// insertClause renders the column list and the matching VALUES list
func (cs columns) insertClause() (string, string, []any) {
	names := make([]string, 0, len(cs))
	values := make([]string, 0, len(cs))
	args := make([]any, 0, len(cs))
	for _, c := range cs {
		names = append(names, c.name)
		if c.raw != "" {
			values = append(values, c.raw)
			continue
		}
		args = append(args, c.value)
		values = append(values, fmt.Sprintf("$%d", len(args)))
	}
	return strings.Join(names, ", "), strings.Join(values, ", "), args
}

func containsColumn(constraint, columnName string) bool {
	return strings.Contains(constraint, columnName)
}

func keyString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func encodeUser(user *entities.User) (columns, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return columns{
		valueColumn("id", user.ID),
		valueColumn("username", user.Username),
		valueColumn("name", user.Name),
		valueColumn("avatar_url", user.AvatarURL),
	}, nil
}

func encodeUserPatch(patch *entities.UserPatch) (columns, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var cs columns
	if patch.Username != nil {
		cs = append(cs, valueColumn("username", *patch.Username))
	}
	if patch.Name != nil {
		cs = append(cs, valueColumn("name", *patch.Name))
	}
	if patch.AvatarURL != nil {
		cs = append(cs, valueColumn("avatar_url", *patch.AvatarURL))
	}
	return cs, nil
}

func encodeUserAccount(account *entities.UserAccount) (columns, error) {
	if err := account.Validate(); err != nil {
		return nil, err
	}
	permissions := []string{}
	if account.IsAdmin {
		permissions = append(permissions, entities.PermissionAdmin)
	}
	return columns{
		referenceColumn("user_id", "users", account.ID),
		valueColumn("email", account.Email),
		valueColumn("permissions", permissions),
	}, nil
}

func encodeUserAccountPatch(patch *entities.UserAccountPatch) (columns, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var cs columns
	if patch.Email != nil {
		cs = append(cs, valueColumn("email", *patch.Email))
	}
	if patch.IsAdmin != nil {
		// Union or remove, leaving other permissions alone
		expr := "array_remove(permissions, 'ADMIN')"
		if *patch.IsAdmin {
			expr = "array_append(array_remove(permissions, 'ADMIN'), 'ADMIN')"
		}
		cs = append(cs, column{name: "permissions", raw: expr})
	}
	return cs, nil
}

func encodeGameSessionPatch(patch *entities.GameSessionPatch) (columns, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var cs columns
	if patch.Name != nil {
		cs = append(cs, valueColumn("name", *patch.Name))
	}
	if patch.StartedAt != nil {
		cs = append(cs, timestampColumn("started_at", *patch.StartedAt))
	}
	if patch.EndedAt != nil {
		cs = append(cs, timestampColumn("ended_at", *patch.EndedAt))
	}
	if patch.ClearEndedAt {
		cs = append(cs, valueColumn("ended_at", (*time.Time)(nil)))
	}
	if patch.BuyinBb != nil {
		cs = append(cs, valueColumn("buyin_bb", *patch.BuyinBb))
	}
	if patch.Rate != nil {
		cs = append(cs, valueColumn("rate", *patch.Rate))
	}
	if patch.CreatorID != nil {
		cs = append(cs, referenceColumn("creator_id", "users", *patch.CreatorID))
	}
	return cs, nil
}

func encodeGameSessionPlayer(player *entities.GameSessionPlayer) (columns, error) {
	if err := player.Validate(); err != nil {
		return nil, err
	}
	return columns{
		referenceColumn("game_session_id", "game_sessions", player.GameSessionID),
		referenceColumn("user_id", "users", player.UserID),
		valueColumn("buyins", player.Buyins),
		valueColumn("stack_bb", player.StackBb),
	}, nil
}

func encodeGameSessionPlayerPatch(patch *entities.GameSessionPlayerPatch) (columns, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var cs columns
	if patch.Buyins != nil {
		cs = append(cs, valueColumn("buyins", *patch.Buyins))
	}
	if patch.StackBb != nil {
		cs = append(cs, valueColumn("stack_bb", *patch.StackBb))
	}
	return cs, nil
}
