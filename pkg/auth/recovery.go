package auth

import (
	"context"
	"fmt"
	"strings"

	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// Policy decides which 401 answers are worth a token refresh
type Policy string

const (
	// PolicyErrorCode refreshes only when the server names the token as the
	// problem (TOKEN_EXPIRED, INVALID_TOKEN, NO_TOKEN).
	PolicyErrorCode Policy = "error_code"
	// PolicyAlways refreshes on any 401.
	PolicyAlways Policy = "always"
)

// ParsePolicy reads a policy name, defaulting to PolicyErrorCode.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PolicyErrorCode:
		return PolicyErrorCode, nil
	case PolicyAlways:
		return PolicyAlways, nil
	default:
		return PolicyErrorCode, fmt.Errorf("unknown refresh policy %q (want %s or %s)", name, PolicyErrorCode, PolicyAlways)
	}
}

// Refresher exchanges the stored refresh token for a new access token. On
// failure it is expected to have ended the session already.
type Refresher interface {
	RefreshSession(ctx context.Context) (string, error)
}

// Recovery handles automatic session recovery. Concurrent callers share a
// single refresh call and all receive its result.
type Recovery struct {
	policy    Policy
	refresher Refresher
	group     singleflight.Group
}

// NewRecovery creates a new session recovery handler
func NewRecovery(policy Policy, refresher Refresher) *Recovery {
	if policy == "" {
		policy = PolicyErrorCode
	}
	return &Recovery{
		policy:    policy,
		refresher: refresher,
	}
}

// Policy returns the active refresh policy
func (r *Recovery) Policy() Policy {
	return r.policy
}

// ShouldRefresh reports whether err is a 401 the policy wants to recover
// from.
func (r *Recovery) ShouldRefresh(err error) bool {
	if !clierrors.IsUnauthorized(err) {
		return false
	}
	if r.policy == PolicyAlways {
		return true
	}
	return clierrors.IsTokenError(err)
}

// Recover refreshes the session and returns the new access token. The shared
// refresh is not cancelled when one waiting caller gives up.
func (r *Recovery) Recover(ctx context.Context) (string, error) {
	if r.refresher == nil {
		return "", clierrors.SessionExpiredError(nil)
	}

	ch := r.group.DoChan("refresh", func() (interface{}, error) {
		logger.Debug("Refreshing session")
		return r.refresher.RefreshSession(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			logger.Debug("Session refresh failed", "error", res.Err, "shared", res.Shared)
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}
