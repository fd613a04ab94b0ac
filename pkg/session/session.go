// Package session is the single source of truth for authentication state.
// The state changes only through Login, Logout, Refresh and Restore; logout
// is broadcast on the event bus so other stores can reset themselves.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/William2207/uteshop/cli/pkg/auth"
	"github.com/William2207/uteshop/cli/pkg/credentials"
	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/events"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/validate"
)

// refreshSkew refreshes access tokens this long before their exp claim.
const refreshSkew = 30 * time.Second

// Status is the store's request status
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State is a snapshot of the session. AccessToken is empty exactly when User
// is nil.
type State struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	Status       Status
	Err          string
}

// LoggedIn reports whether the snapshot holds a session
func (s State) LoggedIn() bool {
	return s.User != nil && s.AccessToken != ""
}

// AuthAPI is the part of the storefront API the session needs
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Me(ctx context.Context) (*models.User, error)
}

// CredentialStore persists the session between runs
type CredentialStore interface {
	Load() (*credentials.Credentials, error)
	Save(creds *credentials.Credentials) error
	UpdateTokens(accessToken, refreshToken string, accessExpiresAt time.Time) error
	UpdateUser(user *models.User) error
	Delete() error
}

// Store holds the session
type Store struct {
	api   AuthAPI
	creds CredentialStore
	bus   *events.Bus

	mu         sync.RWMutex
	state      State
	generation uint64

	subMu       sync.RWMutex
	subscribers map[int]func(State)
	nextSubID   int
}

// NewStore creates a logged-out session store
func NewStore(api AuthAPI, creds CredentialStore, bus *events.Bus) *Store {
	if bus == nil {
		bus = events.NewBus()
	}
	return &Store{
		api:         api,
		creds:       creds,
		bus:         bus,
		subscribers: make(map[int]func(State)),
	}
}

// Bus returns the bus the store publishes on
func (s *Store) Bus() *events.Bus {
	return s.bus
}

// State returns a copy of the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// snapshot copies the state. Callers hold s.mu.
func (s *Store) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// AccessToken returns the current access token, empty when logged out
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// Subscribe registers fn to receive every new state. It returns the
// unsubscribe function.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(st State) {
	s.subMu.RLock()
	fns := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (s *Store) setStatus(status Status, errMsg string) {
	s.mu.Lock()
	s.state.Status = status
	s.state.Err = errMsg
	st := s.snapshot()
	s.mu.Unlock()
	s.notify(st)
}

// fail records err on the state without touching the session itself.
func (s *Store) fail(err error) {
	s.setStatus(StatusError, clierrors.CategorizeError(err).Message)
}

// Login authenticates and stores the user and token pair. On failure the
// error message is recorded and any previous session is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	req := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := validate.Struct(req); err != nil {
		s.fail(err)
		return err
	}

	s.setStatus(StatusLoading, "")

	resp, err := s.api.Login(ctx, req)
	if err == nil && (resp.User == nil || resp.Token == "") {
		err = clierrors.NewCLIError(clierrors.ErrorTypeServer, "Login response is missing the user or token", nil)
	}
	if err != nil {
		logger.Debug("Login failed", "email", req.Email, "error", err)
		s.fail(err)
		return err
	}

	s.mu.Lock()
	prev := s.state.User
	s.generation++
	s.state = State{
		User:         resp.User,
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		Status:       StatusIdle,
	}
	st := s.snapshot()
	s.mu.Unlock()

	// Switching accounts ends the previous user's session for other stores
	if prev != nil && prev.ID != resp.User.ID {
		logger.Info("Replaced session of another user", "previous_user_id", prev.ID)
		s.bus.Publish(events.Event{Type: events.LoggedOut})
	}

	accessExp, _ := auth.TokenExpiry(resp.Token)
	if err := s.creds.Save(&credentials.Credentials{
		AccessToken:     resp.Token,
		RefreshToken:    resp.RefreshToken,
		AccessExpiresAt: accessExp,
		User:            resp.User,
	}); err != nil {
		logger.Warn("Failed to save credentials", "error", err)
	}

	logger.Info("Logged in", "user_id", resp.User.ID)
	s.notify(st)
	s.bus.Publish(events.Event{Type: events.LoggedIn, Payload: st.User})
	return nil
}

// Logout clears the session, removes persisted credentials and broadcasts
// LoggedOut. It is safe to call when already logged out.
func (s *Store) Logout() {
	s.mu.Lock()
	s.generation++
	s.state = State{}
	st := s.snapshot()
	s.mu.Unlock()

	if err := s.creds.Delete(); err != nil {
		logger.Warn("Failed to delete credentials", "error", err)
	}

	logger.Info("Logged out")
	s.notify(st)
	s.bus.Publish(events.Event{Type: events.LoggedOut})
}

// Refresh exchanges refreshToken for a new token pair. Success swaps the
// pair in place; any failure other than cancellation forces Logout. A result
// arriving after the session it belongs to has ended is discarded.
func (s *Store) Refresh(ctx context.Context, refreshToken string) error {
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	pair, err := s.api.Refresh(ctx, refreshToken)
	if err == nil && pair.Token == "" {
		err = clierrors.NewCLIError(clierrors.ErrorTypeServer, "Refresh response is missing the token", nil)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		s.mu.RLock()
		stale := s.generation != gen
		s.mu.RUnlock()
		if stale {
			logger.Debug("Discarding refresh failure for an ended session", "error", err)
			return clierrors.SessionExpiredError(err)
		}
		logger.Warn("Token refresh failed, logging out", "error", err)
		s.Logout()
		return clierrors.SessionExpiredError(err)
	}

	s.mu.Lock()
	if s.generation != gen || s.state.User == nil {
		s.mu.Unlock()
		logger.Debug("Discarding refresh result for an ended session")
		return clierrors.SessionExpiredError(nil)
	}
	s.state.AccessToken = pair.Token
	if pair.RefreshToken != "" {
		s.state.RefreshToken = pair.RefreshToken
	}
	st := s.snapshot()
	s.mu.Unlock()

	accessExp, _ := auth.TokenExpiry(pair.Token)
	if err := s.creds.UpdateTokens(pair.Token, pair.RefreshToken, accessExp); err != nil {
		logger.Warn("Failed to persist refreshed tokens", "error", err)
	}

	logger.Debug("Session refreshed", "rotated", pair.RefreshToken != "")
	s.notify(st)
	s.bus.Publish(events.Event{Type: events.TokensRefreshed})
	return nil
}

// RefreshSession refreshes with the stored refresh token and returns the new
// access token. With no refresh token stored the session is ended.
func (s *Store) RefreshSession(ctx context.Context) (string, error) {
	s.mu.RLock()
	refreshToken := s.state.RefreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		s.Logout()
		return "", clierrors.SessionExpiredError(nil)
	}

	if err := s.Refresh(ctx, refreshToken); err != nil {
		return "", err
	}
	return s.AccessToken(), nil
}

// Restore loads the persisted session. Incomplete sessions (a token without
// a user) are discarded.
func (s *Store) Restore() error {
	creds, err := s.creds.Load()
	if err != nil {
		return err
	}
	if creds == nil {
		return nil
	}

	if creds.AccessToken == "" || creds.User == nil {
		logger.Debug("Discarding incomplete stored session")
		return s.creds.Delete()
	}

	s.mu.Lock()
	s.generation++
	s.state = State{
		User:         creds.User,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	}
	st := s.snapshot()
	s.mu.Unlock()

	s.notify(st)
	return nil
}

// EnsureFresh refreshes ahead of time when the access token's exp claim has
// passed, so the next request does not have to fail first.
func (s *Store) EnsureFresh(ctx context.Context) error {
	s.mu.RLock()
	token, refreshToken := s.state.AccessToken, s.state.RefreshToken
	s.mu.RUnlock()

	if token == "" || refreshToken == "" || !auth.TokenExpired(token, refreshSkew) {
		return nil
	}
	return s.Refresh(ctx, refreshToken)
}

// Me fetches the current user from the server and replaces the stored one
func (s *Store) Me(ctx context.Context) (*models.User, error) {
	user, err := s.api.Me(ctx)
	if err != nil {
		return nil, err
	}
	s.SetUser(user)
	return user, nil
}

// SetUser replaces the user record wholesale. It is ignored when logged out.
func (s *Store) SetUser(user *models.User) {
	if user == nil {
		return
	}

	s.mu.Lock()
	if s.state.User == nil {
		s.mu.Unlock()
		return
	}
	u := *user
	s.state.User = &u
	st := s.snapshot()
	s.mu.Unlock()

	if err := s.creds.UpdateUser(&u); err != nil {
		logger.Warn("Failed to persist user", "error", err)
	}

	s.notify(st)
}
