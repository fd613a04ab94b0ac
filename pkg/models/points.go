package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Point transaction kinds.
const (
	PointsEarned   = "EARNED"
	PointsRedeemed = "REDEEMED"
	PointsAdjusted = "ADJUSTED"
	PointsExpired  = "EXPIRED"
)

// PointTransaction is one loyalty ledger entry.
type PointTransaction struct {
	ID          string     `json:"_id,omitempty"`
	User        string     `json:"user,omitempty"`
	Type        string     `json:"type" validate:"required,oneof=EARNED REDEEMED ADJUSTED EXPIRED"`
	Points      int        `json:"points" validate:"required"`
	Description string     `json:"description,omitempty"`
	Order       string     `json:"order,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// PointsConfig holds the loyalty program rules.
type PointsConfig struct {
	PointsPerAmount  decimal.Decimal `json:"pointsPerAmount"`
	AmountPerPoint   decimal.Decimal `json:"amountPerPoint"`
	MaxRedeemPercent int             `json:"maxRedeemPercent"`
	ExpiryDays       int             `json:"expiryDays"`
}

// PointsRedeemRequest spends points on an order amount.
type PointsRedeemRequest struct {
	Points      int             `json:"points" validate:"min=1"`
	OrderAmount decimal.Decimal `json:"orderAmount"`
}

// PointsRedeemResult is the server's redemption answer.
type PointsRedeemResult struct {
	PointsUsed     int             `json:"pointsUsed"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Balance        int             `json:"balance"`
}

// PointsEarnRequest credits points for a delivered order.
type PointsEarnRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

// CustomerPoints is a row of the admin customer list.
type CustomerPoints struct {
	User        User `json:"user"`
	Balance     int  `json:"balance"`
	TotalEarned int  `json:"totalEarned"`
	TotalSpent  int  `json:"totalSpent"`
}

// PointsStats is the admin loyalty summary.
type PointsStats struct {
	TotalIssued    int `json:"totalIssued"`
	TotalRedeemed  int `json:"totalRedeemed"`
	ActiveMembers  int `json:"activeMembers"`
	OutstandingPts int `json:"outstandingPoints"`
}

// AdminPointTransactionRequest lets an admin adjust a customer's balance.
type AdminPointTransactionRequest struct {
	UserID      string `json:"userId" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=EARNED REDEEMED ADJUSTED EXPIRED"`
	Points      int    `json:"points" validate:"required"`
	Description string `json:"description,omitempty"`
}
