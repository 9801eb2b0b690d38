package repository

import (
	"context"
	"testing"

	"summa/domain/entities"
	"summa/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	testutil.SkipIfShort(t)
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	accounts := NewUserAccountRepository(testDB.DB)
	ctx := context.Background()

	alice := testutil.CreateTestUser("alice")
	bob := testutil.CreateTestUser("bob")
	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, bob))

	t.Run("get by id and username", func(t *testing.T) {
		got, err := repo.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice, got)

		got, err = repo.GetByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, got.ID)
	})

	t.Run("missing user is nil", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = repo.GetByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("get by ids skips missing", func(t *testing.T) {
		users, err := repo.GetByIDs(ctx, []string{bob.ID, "nobody", alice.ID})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "bob", users[1].Username)
	})

	t.Run("duplicate username is a validation error", func(t *testing.T) {
		clash := testutil.CreateTestUser("alice")
		err := repo.Create(ctx, clash)
		require.Error(t, err)
		assert.True(t, entities.IsValidation(err))
	})

	t.Run("duplicate id already exists", func(t *testing.T) {
		twin := *alice
		twin.Username = "alice_twin"
		err := repo.Create(ctx, &twin)
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrAlreadyExists)
		assert.False(t, entities.IsValidation(err))
	})

	t.Run("update profile", func(t *testing.T) {
		name := "Alice Cooper"
		updated, err := repo.Update(ctx, alice.ID, &entities.UserPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, name, updated.Name)
		assert.Equal(t, "alice", updated.Username)
	})

	t.Run("update missing user", func(t *testing.T) {
		name := "Ghost"
		_, err := repo.Update(ctx, "nobody", &entities.UserPatch{Name: &name})
		assert.True(t, entities.IsNotFound(err))
	})

	t.Run("account round trip and admin flag", func(t *testing.T) {
		require.NoError(t, accounts.Create(ctx, testutil.CreateTestAccount(alice, false)))

		account, err := accounts.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", account.Email)
		assert.False(t, account.IsAdmin)

		grant := true
		require.NoError(t, accounts.Update(ctx, alice.ID, &entities.UserAccountPatch{IsAdmin: &grant}))
		// granting twice leaves a single permission entry
		require.NoError(t, accounts.Update(ctx, alice.ID, &entities.UserAccountPatch{IsAdmin: &grant}))

		account, err = accounts.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.True(t, account.IsAdmin)

		var permissions []string
		require.NoError(t, testDB.DB.QueryRow(ctx,
			`SELECT permissions FROM user_accounts WHERE user_id = $1`, alice.ID).Scan(&permissions))
		assert.Equal(t, []string{entities.PermissionAdmin}, permissions)

		err = accounts.Create(ctx, testutil.CreateTestAccount(alice, false))
		assert.ErrorIs(t, err, entities.ErrAlreadyExists)
	})

	t.Run("account for missing user", func(t *testing.T) {
		ghost := testutil.CreateTestUser("ghost")
		err := accounts.Create(ctx, testutil.CreateTestAccount(ghost, false))
		assert.True(t, entities.IsNotFound(err))
	})
}
