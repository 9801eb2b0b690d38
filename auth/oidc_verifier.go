package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCVerifier verifies ID tokens issued by an OpenID Connect provider
type OIDCVerifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	clientID string
}

// NewOIDCVerifier discovers the provider at issuer
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider %s: %w", issuer, err)
	}
	return &OIDCVerifier{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		clientID: clientID,
	}, nil
}

// Verify checks the signature, audience and expiry of an ID token
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &Identity{
		UID:     idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

// OAuth2Config returns a client configuration for the provider's endpoints
func (v *OIDCVerifier) OAuth2Config(clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     v.clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     v.provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
}

// IDTokenSource extracts the ID token from an OAuth2 token source. The
// underlying source refreshes expired tokens on its own.
type IDTokenSource struct {
	source oauth2.TokenSource
}

// NewIDTokenSource wraps source
func NewIDTokenSource(source oauth2.TokenSource) *IDTokenSource {
	return &IDTokenSource{source: source}
}

func (s *IDTokenSource) Token(ctx context.Context) (string, error) {
	tok, err := s.source.Token()
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", fmt.Errorf("token response carries no id_token")
	}
	return raw, nil
}
