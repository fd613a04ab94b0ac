package models

import "github.com/shopspring/decimal"

// CartItem is one line of the server cart. Older API revisions only send the
// nested product, newer ones send productId as well.
type CartItem struct {
	ProductID string          `json:"productId,omitempty"`
	Product   *ProductSummary `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Key returns the product id of the line.
func (i CartItem) Key() string {
	if i.ProductID != "" {
		return i.ProductID
	}
	if i.Product != nil {
		return i.Product.ID
	}
	return ""
}

// Cart is the server's authoritative cart snapshot.
type Cart struct {
	Items       []CartItem      `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// AddToCartResult is the add endpoint's answer. IsNewProduct tells whether a
// new line was created or an existing one incremented.
type AddToCartResult struct {
	Cart         Cart
	IsNewProduct bool
	Message      string
}

// CartItemRequest is the body of add and update.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartCount is the body of GET /api/cart/count.
type CartCount struct {
	TotalItems int `json:"totalItems"`
}
