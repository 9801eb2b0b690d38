package auth

import (
	"context"
	"fmt"

	"summa/domain/entities"

	log "github.com/sirupsen/logrus"
)

// Authenticator resolves bearer tokens and session cookies to user accounts,
// provisioning the account on first sign-in
type Authenticator struct {
	verifier TokenVerifier
	cookies  *SessionCookies
	accounts AccountProvisioner
}

// NewAuthenticator creates an authenticator
func NewAuthenticator(verifier TokenVerifier, cookies *SessionCookies, accounts AccountProvisioner) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		cookies:  cookies,
		accounts: accounts,
	}
}

// Cookies returns the session cookie signer
func (a *Authenticator) Cookies() *SessionCookies {
	return a.cookies
}

// VerifyToken checks a bearer token without touching storage
func (a *Authenticator) VerifyToken(ctx context.Context, rawToken string) (*Identity, error) {
	if rawToken == "" {
		return nil, ErrInvalidToken
	}
	return a.verifier.Verify(ctx, rawToken)
}

// FromToken resolves a bearer token to its account
func (a *Authenticator) FromToken(ctx context.Context, rawToken string) (*Identity, *entities.UserAccount, error) {
	identity, err := a.VerifyToken(ctx, rawToken)
	if err != nil {
		return nil, nil, err
	}
	account, err := a.resolve(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	return identity, account, nil
}

// FromCookie resolves a session cookie value to its account
func (a *Authenticator) FromCookie(ctx context.Context, value string) (*Identity, *entities.UserAccount, error) {
	if value == "" {
		return nil, nil, ErrInvalidToken
	}
	identity, err := a.cookies.Verify(value)
	if err != nil {
		return nil, nil, err
	}
	account, err := a.resolve(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	return identity, account, nil
}

func (a *Authenticator) resolve(ctx context.Context, identity *Identity) (*entities.UserAccount, error) {
	account, created, err := a.accounts.EnsureAccount(ctx, identity.NewAccount())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}
	if created {
		log.WithFields(log.Fields{
			"userId":   account.ID,
			"username": account.Username,
		}).Info("Provisioned account on first sign-in")
	}
	return account, nil
}
