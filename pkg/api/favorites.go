package api

import (
	"context"

	"github.com/William2207/uteshop/cli/pkg/models"
)

// Favorites lists the user's favorite products
func (c *Client) Favorites(ctx context.Context) ([]models.Product, error) {
	page, err := fetchPage[models.Product](ctx, c, get("/api/favorites", nil), "favorites")
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ToggleFavorite adds or removes a product from favorites
func (c *Client) ToggleFavorite(ctx context.Context, productID string) (*models.FavoriteToggle, error) {
	out, err := fetch[models.FavoriteToggle](ctx, c, post(pathf("/api/favorites/%s/toggle", productID), nil), "")
	if err != nil {
		return nil, err
	}
	if out.ProductID == "" {
		out.ProductID = productID
	}
	return out, nil
}

// IsFavorite reports whether a product is in favorites
func (c *Client) IsFavorite(ctx context.Context, productID string) (bool, error) {
	out, err := fetch[models.FavoriteToggle](ctx, c, get(pathf("/api/favorites/%s/check", productID), nil), "")
	if err != nil {
		return false, err
	}
	return out.IsFavorited, nil
}
