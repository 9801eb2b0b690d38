package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// TokenCarbonCopiesPath is where the session cookie is minted and cleared
const TokenCarbonCopiesPath = "/api/token-carbon-copies"

// Mirror keeps the server-side session cookie in step with the bearer token
type Mirror struct {
	baseURL string
	client  *http.Client
}

// NewMirror creates a mirror for the server at baseURL. The cookie the
// server sets is kept in the client's jar.
func NewMirror(baseURL string) *Mirror {
	jar, _ := cookiejar.New(nil)
	return &Mirror{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Push posts the current token so the server sets a fresh session cookie
func (m *Mirror) Push(ctx context.Context, token string) error {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+TokenCarbonCopiesPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return m.do(req, http.StatusOK)
}

// Delete asks the server to expire the session cookie
func (m *Mirror) Delete(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, m.baseURL+TokenCarbonCopiesPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return m.do(req, http.StatusNoContent)
}

// Cookie returns the session cookie value currently held, empty when none
func (m *Mirror) Cookie() string {
	u, err := url.Parse(m.baseURL)
	if err != nil {
		return ""
	}
	for _, c := range m.client.Jar.Cookies(u) {
		if c.Name == CookieName {
			return c.Value
		}
	}
	return ""
}

func (m *Mirror) do(req *http.Request, want int) error {
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return fmt.Errorf("%s %s returned status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return nil
}
