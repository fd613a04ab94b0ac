package api

import (
	"context"

	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
)

// addBody covers both shapes of the add answer: the cart under data, or
// spread next to the isNewProduct flag.
type addBody struct {
	models.Cart
	IsNewProduct bool `json:"isNewProduct"`
}

// GetCart fetches the server cart
func (c *Client) GetCart(ctx context.Context) (*models.Cart, error) {
	logger.Debug("Fetching cart")
	cart, err := fetch[models.Cart](ctx, c, get("/api/cart", nil), "cart")
	if err != nil {
		return nil, err
	}
	return normalizeCart(cart), nil
}

// AddToCart adds quantity of a product and returns the resulting cart
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*models.AddToCartResult, error) {
	logger.Debug("Adding to cart", "product_id", productID, "quantity", quantity)

	res, err := c.do(ctx, post("/api/cart/add", models.CartItemRequest{ProductID: productID, Quantity: quantity}))
	if err != nil {
		return nil, err
	}

	var body addBody
	if err := res.decode("", &body); err != nil {
		return nil, err
	}

	// the flag travels next to data when the cart is wrapped
	flag := struct {
		IsNewProduct *bool `json:"isNewProduct"`
	}{}
	if err := res.decodeEnvelope(&flag); err == nil && flag.IsNewProduct != nil {
		body.IsNewProduct = *flag.IsNewProduct
	}

	return &models.AddToCartResult{
		Cart:         *normalizeCart(&body.Cart),
		IsNewProduct: body.IsNewProduct,
		Message:      res.message,
	}, nil
}

// UpdateCartItem sets the quantity of a cart line
func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) (*models.Cart, error) {
	logger.Debug("Updating cart item", "product_id", productID, "quantity", quantity)
	cart, err := fetch[models.Cart](ctx, c, put("/api/cart/update", models.CartItemRequest{ProductID: productID, Quantity: quantity}), "cart")
	if err != nil {
		return nil, err
	}
	return normalizeCart(cart), nil
}

// RemoveFromCart deletes a cart line
func (c *Client) RemoveFromCart(ctx context.Context, productID string) (*models.Cart, error) {
	logger.Debug("Removing from cart", "product_id", productID)
	cart, err := fetch[models.Cart](ctx, c, del(pathf("/api/cart/remove/%s", productID)), "cart")
	if err != nil {
		return nil, err
	}
	return normalizeCart(cart), nil
}

// ClearCart empties the cart
func (c *Client) ClearCart(ctx context.Context) (*models.Cart, error) {
	logger.Debug("Clearing cart")
	cart, err := fetch[models.Cart](ctx, c, del("/api/cart/clear"), "cart")
	if err != nil {
		return nil, err
	}
	return normalizeCart(cart), nil
}

// CartCount returns the server's total item quantity
func (c *Client) CartCount(ctx context.Context) (int, error) {
	count, err := fetch[models.CartCount](ctx, c, get("/api/cart/count", nil), "")
	if err != nil {
		return 0, err
	}
	return count.TotalItems, nil
}

func normalizeCart(cart *models.Cart) *models.Cart {
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.ProductID == "" && item.Product != nil {
			item.ProductID = item.Product.ID
		}
		if item.UnitPrice.IsZero() && item.Product != nil {
			item.UnitPrice = item.Product.Price
		}
	}
	return cart
}
