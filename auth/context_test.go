package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"summa/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvisioner struct {
	mock.Mock
}

func (m *mockProvisioner) EnsureAccount(ctx context.Context, seed *entities.NewAccount) (*entities.UserAccount, bool, error) {
	args := m.Called(ctx, seed)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.UserAccount), args.Bool(1), args.Error(2)
}

type failingTokenSource struct {
	err error
}

func (s failingTokenSource) Token(ctx context.Context) (string, error) {
	return "", s.err
}

type recordingMirror struct {
	mu      sync.Mutex
	pushed  []string
	deletes int
}

func (m *recordingMirror) Push(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushed = append(m.pushed, token)
	return nil
}

func (m *recordingMirror) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	return nil
}

func (m *recordingMirror) pushCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pushed)
}

func aliceAccount() *entities.UserAccount {
	return &entities.UserAccount{
		User:  entities.User{ID: alice.UID, Username: "alice", Name: alice.Name, AvatarURL: alice.Picture},
		Email: alice.Email,
	}
}

type contextFixture struct {
	verifier    *HMACVerifier
	cookies     *SessionCookies
	provisioner *mockProvisioner
	mirror      *recordingMirror
	auth        *Context
}

func newContextFixture(t *testing.T, refresh time.Duration) *contextFixture {
	f := &contextFixture{
		verifier:    NewHMACVerifier("secret", "summa-dev"),
		cookies:     NewSessionCookies("cookie-secret", time.Hour),
		provisioner: new(mockProvisioner),
		mirror:      &recordingMirror{},
	}
	authCtx, err := NewContext(NewAuthenticator(f.verifier, f.cookies, f.provisioner), f.mirror, refresh)
	require.NoError(t, err)
	t.Cleanup(func() { _ = authCtx.Close() })
	f.auth = authCtx
	return f
}

func (f *contextFixture) recordStates() func() []State {
	var mu sync.Mutex
	var states []State
	f.auth.OnChange(func(s Snapshot) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	})
	return func() []State {
		mu.Lock()
		defer mu.Unlock()
		return append([]State(nil), states...)
	}
}

func TestContext_SignInAndOut(t *testing.T) {
	f := newContextFixture(t, 0)
	ctx := context.Background()
	states := f.recordStates()

	f.provisioner.On("EnsureAccount", ctx, alice.NewAccount()).Return(aliceAccount(), true, nil).Once()

	token, err := f.verifier.Issue(alice, time.Minute)
	require.NoError(t, err)

	_, err = f.auth.Myself()
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, f.auth.SignIn(ctx, StaticTokenSource(token)))

	myself, err := f.auth.Myself()
	require.NoError(t, err)
	assert.Equal(t, "alice", myself.Username)
	assert.Equal(t, []string{token}, f.mirror.pushed)

	require.NoError(t, f.auth.SignOut(ctx))

	_, err = f.auth.Myself()
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 1, f.mirror.deletes)
	assert.Equal(t, []State{Authenticating, Authenticated, Unauthenticated}, states())

	f.provisioner.AssertExpectations(t)
}

func TestContext_SignInWithInvalidToken(t *testing.T) {
	f := newContextFixture(t, 0)
	states := f.recordStates()

	err := f.auth.SignIn(context.Background(), StaticTokenSource("forged"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	snapshot := f.auth.Snapshot()
	assert.Equal(t, Unauthenticated, snapshot.State)
	assert.ErrorIs(t, snapshot.Err, ErrInvalidToken)
	assert.Nil(t, snapshot.Myself)
	assert.Empty(t, f.mirror.pushed)
	assert.Equal(t, []State{Authenticating, Unauthenticated}, states())

	f.provisioner.AssertNotCalled(t, "EnsureAccount", mock.Anything, mock.Anything)
}

func TestContext_SignInProvisioningFailure(t *testing.T) {
	f := newContextFixture(t, 0)
	ctx := context.Background()

	f.provisioner.On("EnsureAccount", ctx, mock.Anything).Return(nil, false, errors.New("db down")).Once()

	token, err := f.verifier.Issue(alice, time.Minute)
	require.NoError(t, err)

	require.Error(t, f.auth.SignIn(ctx, StaticTokenSource(token)))
	assert.Equal(t, Unauthenticated, f.auth.Snapshot().State)
	assert.Empty(t, f.mirror.pushed)
}

func TestContext_RestoreFromCookie(t *testing.T) {
	f := newContextFixture(t, 0)
	ctx := context.Background()

	f.provisioner.On("EnsureAccount", ctx, alice.NewAccount()).Return(aliceAccount(), false, nil).Once()

	cookie, _, err := f.cookies.Create(alice)
	require.NoError(t, err)

	require.NoError(t, f.auth.Restore(ctx, cookie))
	myself, err := f.auth.Myself()
	require.NoError(t, err)
	assert.Equal(t, alice.UID, myself.ID)

	// Without a token source there is nothing to refresh
	assert.ErrorIs(t, f.auth.Refresh(ctx), ErrUnauthenticated)

	assert.Error(t, f.auth.Restore(ctx, "expired-or-forged"))
	assert.Equal(t, Unauthenticated, f.auth.Snapshot().State)
}

func TestContext_RefreshRepushesMirror(t *testing.T) {
	f := newContextFixture(t, 0)
	ctx := context.Background()

	f.provisioner.On("EnsureAccount", ctx, mock.Anything).Return(aliceAccount(), false, nil).Once()

	require.NoError(t, f.auth.SignIn(ctx, NewHMACTokenSource(f.verifier, alice, time.Minute)))
	require.NoError(t, f.auth.Refresh(ctx))

	require.Len(t, f.mirror.pushed, 2)
	assert.NotEqual(t, f.mirror.pushed[0], f.mirror.pushed[1])
}

func TestContext_RefreshFailureKeepsIdentity(t *testing.T) {
	f := newContextFixture(t, 0)
	ctx := context.Background()

	f.provisioner.On("EnsureAccount", ctx, mock.Anything).Return(aliceAccount(), false, nil).Once()

	// A token that expires right after sign-in
	source := NewHMACTokenSource(f.verifier, alice, time.Minute)
	require.NoError(t, f.auth.SignIn(ctx, source))
	source.ttl = -time.Minute

	assert.ErrorIs(t, f.auth.Refresh(ctx), ErrInvalidToken)

	snapshot := f.auth.Snapshot()
	assert.Equal(t, Authenticated, snapshot.State)
	assert.ErrorIs(t, snapshot.Err, ErrInvalidToken)
	assert.Len(t, f.mirror.pushed, 1)
}

func TestContext_ScheduledRefresh(t *testing.T) {
	f := newContextFixture(t, 50*time.Millisecond)
	ctx := context.Background()

	f.provisioner.On("EnsureAccount", ctx, mock.Anything).Return(aliceAccount(), false, nil).Once()

	require.NoError(t, f.auth.SignIn(ctx, NewHMACTokenSource(f.verifier, alice, time.Minute)))

	assert.Eventually(t, func() bool { return f.mirror.pushCount() >= 3 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.auth.SignOut(ctx))
	time.Sleep(100 * time.Millisecond)
	stopped := f.mirror.pushCount()
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, stopped, f.mirror.pushCount())
}

func TestContext_FailedSignInStopsRefresh(t *testing.T) {
	tests := []struct {
		name    string
		signIn  func(f *contextFixture, ctx context.Context) error
		wantErr error
	}{
		{
			name: "token source fails",
			signIn: func(f *contextFixture, ctx context.Context) error {
				return f.auth.SignIn(ctx, failingTokenSource{err: errors.New("provider unreachable")})
			},
		},
		{
			name: "token is rejected",
			signIn: func(f *contextFixture, ctx context.Context) error {
				return f.auth.SignIn(ctx, StaticTokenSource("forged"))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "cookie is rejected",
			signIn: func(f *contextFixture, ctx context.Context) error {
				return f.auth.Restore(ctx, "expired-or-forged")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newContextFixture(t, 50*time.Millisecond)
			ctx := context.Background()

			f.provisioner.On("EnsureAccount", ctx, mock.Anything).Return(aliceAccount(), false, nil).Once()

			require.NoError(t, f.auth.SignIn(ctx, NewHMACTokenSource(f.verifier, alice, time.Minute)))
			assert.Eventually(t, func() bool { return f.mirror.pushCount() >= 2 }, 2*time.Second, 10*time.Millisecond)

			err := tt.signIn(f, ctx)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, Unauthenticated, f.auth.Snapshot().State)
			assert.ErrorIs(t, f.auth.Refresh(ctx), ErrUnauthenticated)

			// Let a refresh that was already running finish
			time.Sleep(100 * time.Millisecond)
			stopped := f.mirror.pushCount()
			time.Sleep(250 * time.Millisecond)
			assert.Equal(t, stopped, f.mirror.pushCount())
		})
	}
}

func TestContext_OnChangeUnsubscribe(t *testing.T) {
	f := newContextFixture(t, 0)

	calls := 0
	unsubscribe := f.auth.OnChange(func(Snapshot) { calls++ })
	require.NoError(t, f.auth.SignOut(context.Background()))
	unsubscribe()
	require.NoError(t, f.auth.SignOut(context.Background()))

	assert.Equal(t, 1, calls)
}

func TestMirror_PushAndDelete(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, TokenCarbonCopiesPath, r.URL.Path)
		switch r.Method {
		case http.MethodPost:
			var body struct {
				Token string `json:"token"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			gotToken = body.Token
			http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "minted", Path: "/", HttpOnly: true})
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	mirror := NewMirror(server.URL)
	ctx := context.Background()

	require.NoError(t, mirror.Push(ctx, "bearer"))
	assert.Equal(t, "bearer", gotToken)
	assert.Equal(t, "minted", mirror.Cookie())

	require.NoError(t, mirror.Delete(ctx))
	assert.Empty(t, mirror.Cookie())
}

func TestMirror_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	err := NewMirror(server.URL).Push(context.Background(), "forged")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
