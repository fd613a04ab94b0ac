package session

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/William2207/uteshop/cli/internal/testserver"
	"github.com/William2207/uteshop/cli/pkg/api"
	"github.com/William2207/uteshop/cli/pkg/auth"
	"github.com/William2207/uteshop/cli/pkg/client"
	"github.com/William2207/uteshop/cli/pkg/credentials"
	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/events"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	srv   *testserver.Server
	api   *api.Client
	creds *credentials.Store
	bus   *events.Bus
	store *Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv := testserver.New(t)
	srv.AddUser("a@b.com", "secret", "An")

	gw := client.New(client.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	c := api.New(gw)
	creds := credentials.NewStore(filepath.Join(t.TempDir(), "credentials.json"), time.Hour)
	bus := events.NewBus()
	store := NewStore(c, creds, bus)

	gw.SetTokenSource(store)
	gw.SetRecovery(auth.NewRecovery(auth.PolicyErrorCode, store))

	return &harness{srv: srv, api: c, creds: creds, bus: bus, store: store}
}

func TestLoginStoresSession(t *testing.T) {
	h := newHarness(t)

	var loggedIn int
	h.bus.Subscribe(events.LoggedIn, func(events.Event) { loggedIn++ })

	require.NoError(t, h.store.Login(context.Background(), " a@b.com ", "secret"))

	st := h.store.State()
	assert.True(t, st.LoggedIn())
	assert.Equal(t, "T1", st.AccessToken)
	assert.Equal(t, "R1", st.RefreshToken)
	assert.Equal(t, "a@b.com", st.User.Email)
	assert.Equal(t, StatusIdle, st.Status)
	assert.Equal(t, 1, loggedIn)

	saved, err := h.creds.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "T1", saved.AccessToken)
	assert.Equal(t, "R1", saved.RefreshToken)
	assert.Equal(t, "a@b.com", saved.User.Email)
}

func TestLoginFailureKeepsPreviousSession(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Login(context.Background(), "a@b.com", "secret"))

	err := h.store.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	st := h.store.State()
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, testserver.MsgInvalidCredentials, st.Err)
	assert.Equal(t, "T1", st.AccessToken)
	assert.Equal(t, "R1", st.RefreshToken)
	require.NotNil(t, st.User)
	assert.Equal(t, 0, h.srv.Calls(http.MethodPost, "/api/auth/refresh"), "wrong password must not trigger a refresh")
}

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"malformed email", "not-an-email", "secret"},
		{"missing email", "", "secret"},
		{"missing password", "a@b.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			err := h.store.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, clierrors.IsValidation(err))
			assert.Equal(t, 0, h.srv.Calls(http.MethodPost, "/api/auth/login"))
			assert.Equal(t, StatusError, h.store.State().Status)
			assert.False(t, h.store.State().LoggedIn())
		})
	}
}

// Login T1/R1, then a 401 with a successful refresh to T2/R2 leaves the
// session on T2/R2 and the original request succeeds with T2.
func TestRefreshOnExpiredToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var refreshed int
	h.bus.Subscribe(events.TokensRefreshed, func(events.Event) { refreshed++ })

	require.NoError(t, h.store.Login(ctx, "a@b.com", "secret"))
	h.srv.ExpireAccessToken("T1")

	user, err := h.store.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)

	st := h.store.State()
	assert.Equal(t, "T2", st.AccessToken)
	assert.Equal(t, "R2", st.RefreshToken)
	assert.Equal(t, "Bearer T2", h.srv.LastAuth(http.MethodGet, "/api/auth/me"))
	assert.Equal(t, 2, h.srv.Calls(http.MethodGet, "/api/auth/me"))
	assert.Equal(t, 1, h.srv.Calls(http.MethodPost, "/api/auth/refresh"))
	assert.Equal(t, 1, refreshed)

	saved, err := h.creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "T2", saved.AccessToken)
	assert.Equal(t, "R2", saved.RefreshToken)
}

func TestRefreshWithoutRotationKeepsRefreshToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.SetRotateRefresh(false)

	require.NoError(t, h.store.Login(ctx, "a@b.com", "secret"))
	require.NoError(t, h.store.Refresh(ctx, "R1"))

	st := h.store.State()
	assert.Equal(t, "T2", st.AccessToken)
	assert.Equal(t, "R1", st.RefreshToken)

	saved, err := h.creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "R1", saved.RefreshToken)
}

func TestRefreshFailureForcesLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var loggedOut int
	h.bus.Subscribe(events.LoggedOut, func(events.Event) { loggedOut++ })

	require.NoError(t, h.store.Login(ctx, "a@b.com", "secret"))
	h.srv.ExpireAccessToken("T1")
	h.srv.RevokeRefreshTokens()

	_, err := h.store.Me(ctx)
	require.Error(t, err)

	apiErr, ok := clierrors.AsAPIError(err)
	require.True(t, ok, "the original 401 is propagated")
	assert.Equal(t, testserver.CodeTokenExpired, apiErr.Code)

	st := h.store.State()
	assert.False(t, st.LoggedIn())
	assert.Nil(t, st.User)
	assert.Empty(t, st.AccessToken)
	assert.Empty(t, st.RefreshToken)
	assert.Equal(t, 1, loggedOut)

	saved, err := h.creds.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestRefreshSessionWithoutRefreshToken(t *testing.T) {
	h := newHarness(t)

	var loggedOut int
	h.bus.Subscribe(events.LoggedOut, func(events.Event) { loggedOut++ })

	_, err := h.store.RefreshSession(context.Background())
	require.Error(t, err)
	assert.True(t, clierrors.IsType(err, clierrors.ErrorTypeSessionExpired))
	assert.Equal(t, 1, loggedOut)
	assert.Equal(t, 0, h.srv.Calls(http.MethodPost, "/api/auth/refresh"))
}

func TestRefreshResultAfterLogoutIsDiscarded(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Login(ctx, "a@b.com", "secret"))

	arrived, release := h.srv.Hold(http.MethodPost, "/api/auth/refresh")
	done := make(chan error, 1)
	go func() { done <- h.store.Refresh(ctx, "R1") }()

	<-arrived
	h.store.Logout()
	release()

	err := <-done
	require.Error(t, err)
	assert.False(t, h.store.State().LoggedIn())
	assert.Empty(t, h.store.AccessToken())
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Login(context.Background(), "a@b.com", "secret"))

	var states []State
	h.store.Subscribe(func(st State) { states = append(states, st) })
	var loggedOut int
	h.bus.Subscribe(events.LoggedOut, func(events.Event) { loggedOut++ })

	h.store.Logout()
	h.store.Logout()

	assert.Equal(t, 2, loggedOut)
	require.Len(t, states, 2)
	assert.False(t, states[0].LoggedIn())
	assert.False(t, h.store.State().LoggedIn())

	saved, err := h.creds.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestRestore(t *testing.T) {
	user := &models.User{ID: "u1", Email: "a@b.com", Name: "An"}

	tests := []struct {
		name      string
		stored    *credentials.Credentials
		wantToken string
		wantFile  bool
	}{
		{
			name:      "complete session",
			stored:    &credentials.Credentials{AccessToken: "T9", RefreshToken: "R9", User: user},
			wantToken: "T9",
			wantFile:  true,
		},
		{
			name:   "token without user",
			stored: &credentials.Credentials{AccessToken: "T9", RefreshToken: "R9"},
		},
		{
			name: "nothing stored",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.stored != nil {
				require.NoError(t, h.creds.Save(tt.stored))
			}

			require.NoError(t, h.store.Restore())
			assert.Equal(t, tt.wantToken, h.store.AccessToken())
			assert.Equal(t, tt.wantToken != "", h.store.State().LoggedIn())

			saved, err := h.creds.Load()
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, saved != nil)
		})
	}
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestEnsureFresh(t *testing.T) {
	user := &models.User{ID: "u1", Email: "a@b.com"}

	tests := []struct {
		name        string
		exp         time.Duration
		wantRefresh bool
	}{
		{"expired token", -time.Minute, true},
		{"about to expire", 10 * time.Second, true},
		{"fresh token", time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()

			// Obtain a live refresh token, then swap in a JWT access token.
			require.NoError(t, h.store.Login(ctx, "a@b.com", "secret"))
			access := signed(t, time.Now().Add(tt.exp))
			require.NoError(t, h.creds.Save(&credentials.Credentials{AccessToken: access, RefreshToken: "R1", User: user}))
			require.NoError(t, h.store.Restore())

			require.NoError(t, h.store.EnsureFresh(ctx))

			calls := h.srv.Calls(http.MethodPost, "/api/auth/refresh")
			if tt.wantRefresh {
				assert.Equal(t, 1, calls)
				assert.Equal(t, "T2", h.store.AccessToken())
			} else {
				assert.Equal(t, 0, calls)
				assert.Equal(t, access, h.store.AccessToken())
			}
		})
	}
}

func TestRefreshFailureAfterRelogin(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("c@d.com", "secret", "Chi")
	ctx := context.Background()
	require.NoError(t, h.store.Login(ctx, "a@b.com", "secret"))

	arrived, release := h.srv.Hold(http.MethodPost, "/api/auth/refresh")
	done := make(chan error, 1)
	go func() { done <- h.store.Refresh(ctx, "R1") }()

	<-arrived
	h.store.Logout()
	require.NoError(t, h.store.Login(ctx, "c@d.com", "secret"))

	var loggedOut int
	h.bus.Subscribe(events.LoggedOut, func(events.Event) { loggedOut++ })
	h.srv.RevokeRefreshTokens()
	release()

	err := <-done
	assert.True(t, clierrors.IsType(err, clierrors.ErrorTypeSessionExpired))

	st := h.store.State()
	require.True(t, st.LoggedIn(), "the newer session survives")
	assert.Equal(t, "c@d.com", st.User.Email)
	assert.Zero(t, loggedOut)

	saved, err := h.creds.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "c@d.com", saved.User.Email)
}

func TestLoginAsAnotherUserEndsPreviousSession(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("c@d.com", "secret", "Chi")
	ctx := context.Background()

	var loggedOut, loggedIn int
	h.bus.Subscribe(events.LoggedOut, func(events.Event) { loggedOut++ })
	h.bus.Subscribe(events.LoggedIn, func(events.Event) { loggedIn++ })

	require.NoError(t, h.store.Login(ctx, "a@b.com", "secret"))
	assert.Zero(t, loggedOut, "first login has nothing to end")

	require.NoError(t, h.store.Login(ctx, "a@b.com", "secret"))
	assert.Zero(t, loggedOut, "same user again keeps the session")

	require.NoError(t, h.store.Login(ctx, "c@d.com", "secret"))
	assert.Equal(t, 1, loggedOut)
	assert.Equal(t, 3, loggedIn)
	assert.Equal(t, "c@d.com", h.store.State().User.Email)
}

// gatedCredentials pauses UpdateUser until release is closed
type gatedCredentials struct {
	*credentials.Store
	entered chan struct{}
	release chan struct{}
}

func (g *gatedCredentials) UpdateUser(user *models.User) error {
	close(g.entered)
	<-g.release
	return g.Store.UpdateUser(user)
}

func TestSetUserRacingLogoutKeepsCredentialsDeleted(t *testing.T) {
	h := newHarness(t)
	gated := &gatedCredentials{Store: h.creds, entered: make(chan struct{}), release: make(chan struct{})}
	store := NewStore(h.api, gated, h.bus)
	require.NoError(t, store.Login(context.Background(), "a@b.com", "secret"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.SetUser(&models.User{ID: "u1", Name: "An Nguyen", Email: "a@b.com"})
	}()

	<-gated.entered
	store.Logout()
	close(gated.release)
	<-done

	saved, err := h.creds.Load()
	require.NoError(t, err)
	assert.Nil(t, saved, "a user update must not restore a logged-out session")
	assert.False(t, store.State().LoggedIn())
}

func TestSetUser(t *testing.T) {
	h := newHarness(t)

	// Ignored while logged out.
	h.store.SetUser(&models.User{ID: "u1", Name: "Ghost"})
	assert.Nil(t, h.store.State().User)

	require.NoError(t, h.store.Login(context.Background(), "a@b.com", "secret"))
	updated := &models.User{ID: "u1", Name: "An Nguyen", Email: "a@b.com", Phone: "0900000000"}
	h.store.SetUser(updated)

	updated.Name = "mutated after the call"
	st := h.store.State()
	assert.Equal(t, "An Nguyen", st.User.Name)
	assert.Equal(t, "0900000000", st.User.Phone)

	saved, err := h.creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "An Nguyen", saved.User.Name)
}

func TestStateIsACopy(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Login(context.Background(), "a@b.com", "secret"))

	st := h.store.State()
	st.User.Name = "changed"
	assert.NotEqual(t, "changed", h.store.State().User.Name)
}

func TestUnsubscribe(t *testing.T) {
	h := newHarness(t)

	var n int
	unsubscribe := h.store.Subscribe(func(State) { n++ })
	h.store.Logout()
	unsubscribe()
	h.store.Logout()

	assert.Equal(t, 1, n)
}

type failingAPI struct {
	err error
}

func (f failingAPI) Login(context.Context, models.LoginRequest) (*models.AuthResponse, error) {
	return nil, f.err
}

func (f failingAPI) Refresh(context.Context, string) (*models.TokenPair, error) {
	return nil, f.err
}

func (f failingAPI) Me(context.Context) (*models.User, error) {
	return nil, f.err
}

func TestCancelledRefreshKeepsSession(t *testing.T) {
	creds := credentials.NewStore(filepath.Join(t.TempDir(), "credentials.json"), time.Hour)
	user := &models.User{ID: "u1", Email: "a@b.com"}
	require.NoError(t, creds.Save(&credentials.Credentials{AccessToken: "T1", RefreshToken: "R1", User: user}))

	store := NewStore(failingAPI{err: context.Canceled}, creds, nil)
	require.NoError(t, store.Restore())

	err := store.Refresh(context.Background(), "R1")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, store.State().LoggedIn())
}
