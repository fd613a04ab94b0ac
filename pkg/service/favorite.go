package service

import (
	"context"

	"github.com/William2207/uteshop/cli/pkg/output"
)

// FavoriteService manages the wishlist
type FavoriteService struct {
	rt *Runtime
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(rt *Runtime) *FavoriteService {
	return &FavoriteService{rt: rt}
}

// List prints favorited products
func (s *FavoriteService) List(ctx context.Context) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	products, err := s.rt.API.Favorites(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		output.PrintInfo("No favorites yet")
		return nil
	}
	return printProducts(products, products)
}

// Toggle adds or removes a product from the wishlist
func (s *FavoriteService) Toggle(ctx context.Context, productID string) error {
	if err := requireArg("product id", productID); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	res, err := s.rt.API.ToggleFavorite(ctx, productID)
	if err != nil {
		return err
	}
	if res.IsFavorited {
		output.PrintSuccess("♥ Added to favorites")
	} else {
		output.PrintSuccess("♡ Removed from favorites")
	}
	return nil
}

// Check reports whether a product is favorited
func (s *FavoriteService) Check(ctx context.Context, productID string) error {
	if err := requireArg("product id", productID); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	fav, err := s.rt.API.IsFavorite(ctx, productID)
	if err != nil {
		return err
	}
	return output.PrintRecord("", []output.Field{
		{Key: "Product", Value: productID},
		{Key: "Favorite", Value: boolToYesNo(fav)},
	}, map[string]interface{}{"productId": productID, "isFavorited": fav})
}

func boolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
