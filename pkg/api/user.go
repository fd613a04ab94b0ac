package api

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/William2207/uteshop/cli/pkg/client"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
)

// GetProfile fetches the logged-in user's profile
func (c *Client) GetProfile(ctx context.Context) (*models.User, error) {
	logger.Debug("Fetching profile")
	return fetch[models.User](ctx, c, get("/api/user/profile", nil), "user")
}

// UpdateProfile edits profile fields and returns the updated user
func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	logger.Debug("Updating profile")
	return fetch[models.User](ctx, c, put("/api/user/profile", req), "user")
}

// UploadAvatar replaces the avatar image
func (c *Client) UploadAvatar(ctx context.Context, fileName string, data []byte) (*models.User, error) {
	logger.Debug("Uploading avatar", "file", fileName, "bytes", len(data))

	req := client.Request{
		Method: http.MethodPost,
		Path:   "/api/user/avatar",
		Files:  []client.File{{Field: "avatar", Name: filepath.Base(fileName), Data: data}},
	}
	return fetch[models.User](ctx, c, req, "user")
}

// ChangePassword changes the password of the logged-in user
func (c *Client) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (string, error) {
	logger.Debug("Changing password")
	return c.message(ctx, put("/api/user/password", req))
}

// ListAddresses lists saved shipping addresses
func (c *Client) ListAddresses(ctx context.Context) ([]models.Address, error) {
	page, err := fetchPage[models.Address](ctx, c, get("/api/user/addresses", nil), "addresses")
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// CreateAddress saves a new address
func (c *Client) CreateAddress(ctx context.Context, addr models.Address) (*models.Address, error) {
	return fetch[models.Address](ctx, c, post("/api/user/addresses", addr), "address")
}

// UpdateAddress edits a saved address
func (c *Client) UpdateAddress(ctx context.Context, id string, addr models.Address) (*models.Address, error) {
	return fetch[models.Address](ctx, c, put(pathf("/api/user/addresses/%s", id), addr), "address")
}

// DeleteAddress removes a saved address
func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	_, err := c.do(ctx, del(pathf("/api/user/addresses/%s", id)))
	return err
}

// SetDefaultAddress marks an address as the default
func (c *Client) SetDefaultAddress(ctx context.Context, id string) (string, error) {
	return c.message(ctx, put(pathf("/api/user/addresses/%s/default", id), nil))
}

// ClaimReward converts a review reward into points or a voucher
func (c *Client) ClaimReward(ctx context.Context, req models.ClaimRewardRequest) (string, error) {
	logger.Debug("Claiming reward", "type", req.RewardType)
	return c.message(ctx, post("/api/user/claim-reward", req))
}
