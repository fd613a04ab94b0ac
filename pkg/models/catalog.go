package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSummary is the product reference embedded in carts, orders and
// favorites.
type ProductSummary struct {
	ID     string          `json:"_id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Images []string        `json:"images,omitempty"`
	Stock  int             `json:"stock,omitempty"`
}

// Product is the full catalogue record.
type Product struct {
	ID            string          `json:"_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	DiscountPrice decimal.Decimal `json:"discountPrice"`
	Category      string          `json:"category,omitempty"`
	Brand         string          `json:"brand,omitempty"`
	Images        []string        `json:"images,omitempty"`
	Stock         int             `json:"stock"`
	SoldCount     int             `json:"soldCount,omitempty"`
	ViewCount     int             `json:"viewCount,omitempty"`
	Rating        float64         `json:"averageRating,omitempty"`
	ReviewCount   int             `json:"reviewCount,omitempty"`
	CreatedAt     *time.Time      `json:"createdAt,omitempty"`
}

// EffectivePrice is the price a buyer pays now.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.IsPositive() && p.DiscountPrice.LessThan(p.Price) {
		return p.DiscountPrice
	}
	return p.Price
}

// ProductQuery filters GET /api/products.
type ProductQuery struct {
	Page     int
	Limit    int
	Sort     string
	Category string
	Search   string
	MinPrice string
	MaxPrice string
}

// HomeBlocks is the landing page payload.
type HomeBlocks struct {
	NewArrivals  []Product `json:"newArrivals"`
	BestSellers  []Product `json:"bestSellers"`
	MostViewed   []Product `json:"mostViewed"`
	TopDiscounts []Product `json:"topDiscounts"`
}

// Pagination accompanies list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Review is a product review.
type Review struct {
	ID        string     `json:"_id"`
	ProductID string     `json:"product"`
	User      *User      `json:"user,omitempty"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// ReviewRequest creates or edits a review.
type ReviewRequest struct {
	ProductID string `json:"productId,omitempty"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment" validate:"required,max=1000"`
}

// ReviewResult is returned after creating a review; it may carry a reward
// offer for the reviewer.
type ReviewResult struct {
	Review  Review        `json:"review"`
	Rewards []RewardOffer `json:"rewards,omitempty"`
}

// RewardOffer is one reward the reviewer may claim.
type RewardOffer struct {
	Type        string `json:"type"`
	VoucherCode string `json:"voucherCode,omitempty"`
	Value       int    `json:"value,omitempty"`
	Label       string `json:"label,omitempty"`
}

// FavoriteToggle is the answer of the toggle endpoint.
type FavoriteToggle struct {
	ProductID   string `json:"productId"`
	IsFavorited bool   `json:"isFavorited"`
}
