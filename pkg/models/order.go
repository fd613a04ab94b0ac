package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses as the API spells them.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderShipping  = "shipping"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// OrderStatuses lists valid statuses in lifecycle order.
var OrderStatuses = []string{
	OrderPending, OrderConfirmed, OrderPreparing, OrderShipping, OrderDelivered, OrderCancelled,
}

// OrderItem is one ordered line.
type OrderItem struct {
	Product  string          `json:"product"`
	Name     string          `json:"name,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order is a placed order.
type Order struct {
	ID              string          `json:"_id"`
	User            string          `json:"user,omitempty"`
	Items           []OrderItem     `json:"items"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	PointsUsed      int             `json:"pointsUsed,omitempty"`
	VoucherCode     string          `json:"voucherCode,omitempty"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   string          `json:"paymentStatus,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       *time.Time      `json:"createdAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
}

// CanCancel reports whether the customer may still cancel.
func (o Order) CanCancel() bool {
	return o.Status == OrderPending || o.Status == OrderConfirmed
}

// CODDetails accompanies cash-on-delivery orders.
type CODDetails struct {
	PhoneNumberConfirmed bool   `json:"phoneNumberConfirmed"`
	AdditionalNotes      string `json:"additionalNotes,omitempty"`
}

// CreateOrderRequest is the checkout body.
type CreateOrderRequest struct {
	Items           []OrderItem     `json:"items" validate:"required,min=1,dive"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	ShippingAddress string          `json:"shippingAddress" validate:"required"`
	PaymentMethod   string          `json:"paymentMethod" validate:"required,oneof=COD MOMO VNPAY"`
	VoucherCode     string          `json:"voucherCode,omitempty"`
	PointsToUse     int             `json:"pointsToUse,omitempty" validate:"min=0"`
	CODDetails      *CODDetails     `json:"codDetails,omitempty"`
}

// OrderQuery filters order listings.
type OrderQuery struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	Search        string
}

// OrderStats is the admin dashboard summary.
type OrderStats struct {
	TotalOrders   int             `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	StatusCounts  map[string]int  `json:"statusCounts"`
	PendingOrders int             `json:"pendingOrders"`
}

// Voucher discount types.
const (
	DiscountPercentage  = "PERCENTAGE"
	DiscountFixedAmount = "FIXED_AMOUNT"
	DiscountFreeShip    = "FREE_SHIP"
)

// Voucher is a discount code.
type Voucher struct {
	ID                string          `json:"_id,omitempty"`
	Code              string          `json:"code" validate:"required,alphanum,min=3,max=20"`
	Description       string          `json:"description,omitempty"`
	DiscountType      string          `json:"discountType" validate:"required,oneof=PERCENTAGE FIXED_AMOUNT FREE_SHIP"`
	DiscountValue     decimal.Decimal `json:"discountValue"`
	MaxDiscountAmount decimal.Decimal `json:"maxDiscountAmount"`
	MinOrderAmount    decimal.Decimal `json:"minOrderAmount"`
	StartDate         string          `json:"startDate" validate:"required"`
	EndDate           string          `json:"endDate" validate:"required"`
	MaxIssued         int             `json:"maxIssued" validate:"min=1"`
	IssuedCount       int             `json:"issuedCount,omitempty"`
	UsedCount         int             `json:"usedCount,omitempty"`
	MaxUsesPerUser    int             `json:"maxUsesPerUser" validate:"min=1"`
	IsActive          bool            `json:"isActive"`
}

// VoucherPreview is the server's evaluation of a code against an amount.
type VoucherPreview struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	Valid          bool            `json:"valid"`
	Message        string          `json:"message,omitempty"`
}
