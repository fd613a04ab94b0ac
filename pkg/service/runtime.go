package service

import (
	"context"
	"sync"

	"github.com/William2207/uteshop/cli/pkg/api"
	"github.com/William2207/uteshop/cli/pkg/auth"
	"github.com/William2207/uteshop/cli/pkg/cart"
	"github.com/William2207/uteshop/cli/pkg/client"
	"github.com/William2207/uteshop/cli/pkg/config"
	"github.com/William2207/uteshop/cli/pkg/credentials"
	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/events"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/prompter"
	"github.com/William2207/uteshop/cli/pkg/realtime"
	"github.com/William2207/uteshop/cli/pkg/session"
)

// Runtime wires the gateway, the stores and the event bus for one process
type Runtime struct {
	Gateway  *client.Gateway
	API      *api.Client
	Bus      *events.Bus
	Session  *session.Store
	Cart     *cart.Store
	Prompter *prompter.Prompter
	Realtime realtime.Config
}

// Options configures NewRuntime. Zero values fall back to the loaded config.
type Options struct {
	Client      client.Config
	Credentials session.CredentialStore
	Policy      auth.Policy
	Prompter    *prompter.Prompter
	Realtime    *realtime.Config
}

// NewRuntime builds a runtime and restores the persisted session
func NewRuntime(opts Options) (*Runtime, error) {
	if opts.Client.BaseURL == "" {
		opts.Client = client.ConfigFromSettings()
	}
	if opts.Credentials == nil {
		opts.Credentials = credentials.Default()
	}
	if opts.Policy == "" {
		policy, err := auth.ParsePolicy(config.GetString("auth.refresh_policy"))
		if err != nil {
			return nil, err
		}
		opts.Policy = policy
	}
	if opts.Prompter == nil {
		opts.Prompter = prompter.Default()
	}
	rtCfg := realtime.ConfigFromSettings()
	if opts.Realtime != nil {
		rtCfg = *opts.Realtime
	}

	gw := client.New(opts.Client)
	c := api.New(gw)
	bus := events.NewBus()
	sess := session.NewStore(c, opts.Credentials, bus)

	gw.SetTokenSource(sess)
	gw.SetRecovery(auth.NewRecovery(opts.Policy, sess))

	if err := sess.Restore(); err != nil {
		logger.Warn("Failed to restore session", "error", err)
	}

	return &Runtime{
		Gateway:  gw,
		API:      c,
		Bus:      bus,
		Session:  sess,
		Cart:     cart.NewStore(c, bus),
		Prompter: opts.Prompter,
		Realtime: rtCfg,
	}, nil
}

var (
	defaultRuntime *Runtime
	defaultErr     error
	defaultOnce    sync.Once
)

// Default returns the process-wide runtime built from the loaded config
func Default() (*Runtime, error) {
	defaultOnce.Do(func() {
		defaultRuntime, defaultErr = NewRuntime(Options{})
	})
	return defaultRuntime, defaultErr
}

// Close releases the runtime's subscriptions
func (r *Runtime) Close() {
	r.Cart.Close()
}

// RequireLogin fails when no session is stored and refreshes an access token
// whose exp has passed.
func (r *Runtime) RequireLogin(ctx context.Context) error {
	if !r.Session.State().LoggedIn() {
		return clierrors.AuthError("Not logged in")
	}
	return r.Session.EnsureFresh(ctx)
}

// RequireAdmin is RequireLogin for admin-only commands
func (r *Runtime) RequireAdmin(ctx context.Context) error {
	if err := r.RequireLogin(ctx); err != nil {
		return err
	}
	if !r.Session.State().User.IsAdmin() {
		return clierrors.ForbiddenError("Admin role required")
	}
	return nil
}
