package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		user      User
		wantField string
	}{
		{
			name: "valid user",
			user: User{ID: "u1", Username: "river_rat", Name: "River Rat", AvatarURL: "https://example.com/a.png"},
		},
		{
			name: "avatar is optional",
			user: User{ID: "u1", Username: "river_rat", Name: "River Rat"},
		},
		{
			name:      "username with dash",
			user:      User{ID: "u1", Username: "river-rat", Name: "River Rat"},
			wantField: "username",
		},
		{
			name:      "username with space",
			user:      User{ID: "u1", Username: "river rat", Name: "River Rat"},
			wantField: "username",
		},
		{
			name:      "empty username",
			user:      User{ID: "u1", Name: "River Rat"},
			wantField: "username",
		},
		{
			name:      "empty name",
			user:      User{ID: "u1", Username: "river_rat"},
			wantField: "name",
		},
		{
			name:      "malformed avatar",
			user:      User{ID: "u1", Username: "river_rat", Name: "River Rat", AvatarURL: "not a url"},
			wantField: "avatarUrl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.user.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
		})
	}
}

func TestUserAccount_Validate(t *testing.T) {
	t.Parallel()

	account := UserAccount{
		User:  User{ID: "u1", Username: "nit", Name: "Nit"},
		Email: "nit@example.com",
	}
	assert.NoError(t, account.Validate())

	account.Email = "nit-at-example"
	err := account.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Fields[0].Field)

	account.Email = "nit@example.com"
	account.Username = "bad name"
	assert.True(t, IsValidation(account.Validate()))
}

func TestUserPatch_Validate(t *testing.T) {
	t.Parallel()

	good := "new_handle"
	bad := "new handle"
	blank := ""

	assert.NoError(t, (&UserPatch{Username: &good}).Validate())
	assert.True(t, IsValidation((&UserPatch{Username: &bad}).Validate()))
	assert.True(t, IsValidation((&UserPatch{Name: &blank}).Validate()))
	assert.True(t, (&UserPatch{}).IsEmpty())
}

func TestErrors(t *testing.T) {
	t.Parallel()

	nf := &NotFoundError{Resource: "user", Key: "@ghost"}
	assert.Equal(t, "user (@ghost) was not found", nf.Error())
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsNotFound(ErrForbidden))

	inner := &ValidationError{Entity: "game session", Fields: []FieldError{{Field: "rate", Rule: "gt", Param: "0"}}}
	de := &DecodeError{Entity: "game session", Key: "s1", Err: inner}
	assert.Contains(t, de.Error(), "rate: gt=0")
	assert.True(t, IsValidation(de))
}

func TestNewAccount_UsernameCandidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		seed NewAccount
		want string
	}{
		{name: "preferred username wins", seed: NewAccount{PreferredUsername: "shark", Email: "x@y.z"}, want: "shark"},
		{name: "email local part", seed: NewAccount{Email: "john.doe@example.com"}, want: "john_doe"},
		{name: "falls back to name", seed: NewAccount{Name: "Ann Lee"}, want: "Ann_Lee"},
		{name: "nothing usable", seed: NewAccount{Name: "!!!"}, want: "player"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.seed.UsernameCandidate()
			assert.Equal(t, tt.want, got)
			assert.True(t, ValidUsername(got))
		})
	}
}
