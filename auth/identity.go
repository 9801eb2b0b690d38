package auth

import (
	"context"
	"errors"

	"summa/domain/entities"
)

var (
	// ErrInvalidToken is returned when a bearer token or session cookie fails verification
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnauthenticated is returned when an operation needs a signed-in user
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Identity is what a verified token says about its holder
type Identity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// NewAccount seeds account provisioning for a first sign-in
func (i *Identity) NewAccount() *entities.NewAccount {
	return &entities.NewAccount{
		ID:        i.UID,
		Email:     i.Email,
		Name:      i.Name,
		AvatarURL: i.Picture,
	}
}

// TokenVerifier verifies identity provider bearer tokens
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// TokenSource hands out a current bearer token, refreshing it when needed
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource always returns the same token
type StaticTokenSource string

func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// AccountProvisioner returns the account of an identity, creating it on first use
type AccountProvisioner interface {
	EnsureAccount(ctx context.Context, seed *entities.NewAccount) (*entities.UserAccount, bool, error)
}
