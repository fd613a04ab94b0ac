package api

import (
	"context"

	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
)

// Login authenticates user with email and password
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	logger.Debug("Attempting login", "email", req.Email)

	r := post("/api/auth/login", req)
	r.Public = true

	resp, err := fetch[models.AuthResponse](ctx, c, r, "")
	if err != nil {
		return nil, err
	}

	logger.Debug("Login successful", "email", req.Email)
	return resp, nil
}

// Refresh exchanges a refresh token for a new token pair. The refresh token
// in the answer may be empty when the server does not rotate it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	logger.Debug("Refreshing access token")

	r := post("/api/auth/refresh", models.RefreshRequest{RefreshToken: refreshToken})
	r.Public = true

	return fetch[models.TokenPair](ctx, c, r, "")
}

// Me gets the current authenticated user
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	logger.Debug("Fetching current user")
	return fetch[models.User](ctx, c, get("/api/auth/me", nil), "user")
}

// RequestRegisterOTP asks the server to mail a registration code to email
func (c *Client) RequestRegisterOTP(ctx context.Context, email string) (string, error) {
	logger.Debug("Requesting registration code", "email", email)

	r := post("/api/auth/register/request-otp", map[string]string{"email": email})
	r.Public = true
	return c.message(ctx, r)
}

// VerifyRegisterOTP completes registration with the mailed code
func (c *Client) VerifyRegisterOTP(ctx context.Context, req models.VerifyRegisterRequest) (string, error) {
	logger.Debug("Verifying registration code", "email", req.Email)

	r := post("/api/auth/register/verify-otp", req)
	r.Public = true
	return c.message(ctx, r)
}

// ForgotPassword asks the server to mail a password reset code
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	r := post("/api/auth/forgot-password", map[string]string{"email": email})
	r.Public = true
	return c.message(ctx, r)
}

// ResetPassword sets a new password using a mailed reset code
func (c *Client) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (string, error) {
	r := post("/api/auth/reset-password", req)
	r.Public = true
	return c.message(ctx, r)
}
