package services

import (
	"context"
	"fmt"
	"testing"

	"summa/domain/entities"
	"summa/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_EnsureAccount_Existing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	existing := account("u1", true)
	f.direct.UserAccounts.On("GetByID", ctx, "u1").Return(existing, nil)

	service := NewUserService(f.factory)
	got, created, err := service.EnsureAccount(ctx, &entities.NewAccount{ID: "u1", Email: "u1@example.com"})

	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, existing, got)
	f.assertExpectations(t)
}

func TestUserService_EnsureAccount_ProvisionsWithFreeUsername(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	f.expectTransaction(ctx, true)

	f.direct.UserAccounts.On("GetByID", ctx, "u2").Return(nil, nil)
	f.txRepos.Users.On("GetByID", ctx, "u2").Return(nil, nil)
	f.txRepos.Users.On("GetByUsername", ctx, "alice").Return(&entities.User{ID: "someone"}, nil)
	f.txRepos.Users.On("GetByUsername", ctx, "alice_2").Return(nil, nil)
	f.txRepos.Users.On("Create", ctx, &entities.User{
		ID: "u2", Username: "alice_2", Name: "Alice", AvatarURL: "https://example.com/a.png",
	}).Return(nil)
	f.txRepos.UserAccounts.On("Create", ctx, mock.MatchedBy(func(a *entities.UserAccount) bool {
		return a.ID == "u2" && a.Email == "alice@example.com" && !a.IsAdmin
	})).Return(nil)
	f.txBus.On("Publish", events.UserUpdatedEvent{UserID: "u2", Username: "alice_2"}).Return(nil)

	service := NewUserService(f.factory)
	got, created, err := service.EnsureAccount(ctx, &entities.NewAccount{
		ID:        "u2",
		Email:     "alice@example.com",
		Name:      "Alice",
		AvatarURL: "https://example.com/a.png",
	})

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "alice_2", got.Username)
	f.assertExpectations(t)
}

func TestUserService_EnsureAccount_ConcurrentFirstSignIn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userConflict := fmt.Errorf("users (id)=(u3): %w", entities.ErrAlreadyExists)
	usernameConflict := &entities.ValidationError{
		Entity: "user",
		Fields: []entities.FieldError{{Field: "username", Rule: "unique"}},
	}
	winner := account("u3", false)

	tests := []struct {
		name          string
		userErr       error
		accountErr    error
		afterConflict *entities.UserAccount
		wantErr       bool
	}{
		{name: "user row taken", userErr: userConflict, afterConflict: winner},
		{name: "username taken by the same identity", userErr: usernameConflict, afterConflict: winner},
		{name: "account row taken", accountErr: fmt.Errorf("user_accounts: %w", entities.ErrAlreadyExists), afterConflict: winner},
		{name: "conflict without an account", userErr: usernameConflict, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			f.factory.On("Create").Return(f.uow)
			f.uow.On("Begin", ctx).Return(nil)
			f.uow.On("Rollback").Return(nil)

			f.direct.UserAccounts.On("GetByID", ctx, "u3").Return(nil, nil).Once()
			if tt.afterConflict != nil {
				f.direct.UserAccounts.On("GetByID", ctx, "u3").Return(tt.afterConflict, nil).Once()
			} else {
				f.direct.UserAccounts.On("GetByID", ctx, "u3").Return(nil, nil).Once()
			}
			f.txRepos.Users.On("GetByID", ctx, "u3").Return(nil, nil)
			f.txRepos.Users.On("GetByUsername", ctx, "u3").Return(nil, nil)
			f.txRepos.Users.On("Create", ctx, mock.Anything).Return(tt.userErr)
			if tt.userErr == nil {
				f.txRepos.UserAccounts.On("Create", ctx, mock.Anything).Return(tt.accountErr)
			}

			service := NewUserService(f.factory)
			got, created, err := service.EnsureAccount(ctx, &entities.NewAccount{ID: "u3", Email: "u3@example.com"})

			if tt.wantErr {
				assert.True(t, entities.IsValidation(err))
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Same(t, tt.afterConflict, got)
			}
			assert.False(t, created)
			f.txBus.AssertNotCalled(t, "Publish", mock.Anything)
			f.uow.AssertNotCalled(t, "Commit")
			f.assertExpectations(t)
		})
	}
}

func TestUserService_GetByIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	users := []*entities.User{{ID: "a", Username: "alice"}}
	f.direct.Users.On("GetByIDs", ctx, []string{"a", "gone"}).Return(users, nil).Once()

	got, err := NewUserService(f.factory).GetByIDs(ctx, []string{"a", "gone"})

	require.NoError(t, err)
	assert.Equal(t, users, got)
	f.assertExpectations(t)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("username held by someone else", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		taken := "bob"
		f.direct.Users.On("GetByUsername", ctx, "bob").Return(&entities.User{ID: "bob"}, nil)

		service := NewUserService(f.factory)
		_, err := service.UpdateProfile(ctx, "alice", &entities.UserPatch{Username: &taken})

		var ve *entities.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "unique", ve.Fields[0].Rule)
		f.assertExpectations(t)
	})

	t.Run("rename publishes an update", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		username := "alice_cooper"
		name := "Alice Cooper"
		patch := &entities.UserPatch{Username: &username, Name: &name}
		updated := &entities.User{ID: "alice", Username: username, Name: name}

		f.direct.Users.On("GetByUsername", ctx, username).Return(nil, nil)
		f.direct.Users.On("Update", ctx, "alice", patch).Return(updated, nil)
		f.publisher.On("Publish", events.UserUpdatedEvent{UserID: "alice", Username: username}).Return(nil)

		service := NewUserService(f.factory)
		got, err := service.UpdateProfile(ctx, "alice", patch)

		require.NoError(t, err)
		assert.Equal(t, updated, got)
		f.assertExpectations(t)
	})

	t.Run("malformed username", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		bad := "no spaces allowed"
		service := NewUserService(f.factory)
		_, err := service.UpdateProfile(ctx, "alice", &entities.UserPatch{Username: &bad})

		assert.True(t, entities.IsValidation(err))
	})
}
