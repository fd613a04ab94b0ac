package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/William2207/uteshop/cli/internal/testserver"
	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_LoginPrompts(t *testing.T) {
	e := newEnv(t, "a@b.com\nsecret\n")
	svc := NewAuthService(e.rt)

	require.NoError(t, svc.Login(context.Background(), "", ""))

	st := e.rt.Session.State()
	require.True(t, st.LoggedIn())
	assert.Equal(t, "An", st.User.Name)
	assert.Contains(t, e.out.String(), "Login successful")
	assert.Contains(t, e.out.String(), "Logged in as An")
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	e := newEnv(t, "")
	svc := NewAuthService(e.rt)

	err := svc.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, testserver.MsgInvalidCredentials, clierrors.CategorizeError(err).Message)
	assert.False(t, e.rt.Session.State().LoggedIn())
}

func TestAuthService_LoginAgainDeclined(t *testing.T) {
	e := newEnv(t, "n\n")
	e.login(t)
	svc := NewAuthService(e.rt)

	require.NoError(t, svc.Login(context.Background(), "a@b.com", "secret"))
	assert.Equal(t, 1, e.srv.Calls(http.MethodPost, "/api/auth/login"))
	assert.Contains(t, e.out.String(), "Already logged in as a@b.com")
}

func TestAuthService_Logout(t *testing.T) {
	e := newEnv(t, "")
	svc := NewAuthService(e.rt)

	require.NoError(t, svc.Logout(context.Background()))
	assert.Contains(t, e.out.String(), "Not logged in")

	e.login(t)
	require.NoError(t, svc.Logout(context.Background()))
	assert.False(t, e.rt.Session.State().LoggedIn())
	assert.Contains(t, e.out.String(), "Logged out successfully")
}

func TestAuthService_MeRequiresLogin(t *testing.T) {
	e := newEnv(t, "")
	svc := NewAuthService(e.rt)

	err := svc.Me(context.Background())
	assert.True(t, clierrors.IsType(err, clierrors.ErrorTypeAuth))
	assert.Zero(t, e.srv.Calls(http.MethodGet, "/api/auth/me"))
}

func TestAuthService_Me(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	svc := NewAuthService(e.rt)

	require.NoError(t, svc.Me(context.Background()))
	assert.Contains(t, e.out.String(), "Email: a@b.com")
	assert.Contains(t, e.out.String(), "Name: An")
}

func TestAuthService_Refresh(t *testing.T) {
	e := newEnv(t, "")
	svc := NewAuthService(e.rt)

	assert.Error(t, svc.Refresh(context.Background()))

	e.login(t)
	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, "T2", e.rt.Session.AccessToken())
}

// A rejected code is asked for again without losing name and password.
func TestAuthService_RegisterRetriesCode(t *testing.T) {
	e := newEnv(t, "Bình\nsecret1\n111111\n123456\n")
	svc := NewAuthService(e.rt)

	require.NoError(t, svc.Register(context.Background(), "new@b.com"))

	assert.True(t, e.srv.HasUser("new@b.com"))
	assert.Equal(t, 2, e.srv.Calls(http.MethodPost, "/api/auth/register/verify-otp"))
	assert.Contains(t, e.out.String(), testserver.MsgInvalidOTP)
	assert.Contains(t, e.out.String(), "uteshop auth login --email new@b.com")
}

func TestAuthService_RegisterGivesUp(t *testing.T) {
	e := newEnv(t, "Bình\nsecret1\n111111\n222222\n333333\n")
	svc := NewAuthService(e.rt)

	err := svc.Register(context.Background(), "new@b.com")
	require.Error(t, err)
	assert.False(t, e.srv.HasUser("new@b.com"))
	assert.Equal(t, maxCodeAttempts, e.srv.Calls(http.MethodPost, "/api/auth/register/verify-otp"))
}

func TestAuthService_RegisterTakenEmail(t *testing.T) {
	e := newEnv(t, "")
	svc := NewAuthService(e.rt)

	err := svc.Register(context.Background(), "a@b.com")
	require.Error(t, err)
	assert.Equal(t, testserver.MsgEmailTaken, clierrors.CategorizeError(err).Message)
	assert.Zero(t, e.srv.Calls(http.MethodPost, "/api/auth/register/verify-otp"))
}

func TestAuthService_RegisterShortPassword(t *testing.T) {
	e := newEnv(t, "Bình\n123\n")
	svc := NewAuthService(e.rt)

	err := svc.Register(context.Background(), "new@b.com")
	assert.True(t, clierrors.IsValidation(err))
	assert.Zero(t, e.srv.Calls(http.MethodPost, "/api/auth/register/verify-otp"))
}
