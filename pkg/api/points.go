package api

import (
	"context"

	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
)

// PointHistory lists the user's loyalty transactions
func (c *Client) PointHistory(ctx context.Context, page, limit int) (*Page[models.PointTransaction], error) {
	return fetchPage[models.PointTransaction](ctx, c, get("/api/points/history", pageQuery(page, limit)), "transactions")
}

// PointsConfig fetches the loyalty program rules
func (c *Client) PointsConfig(ctx context.Context) (*models.PointsConfig, error) {
	return fetch[models.PointsConfig](ctx, c, get("/api/points/config", nil), "config")
}

// RedeemPoints spends points against an order amount
func (c *Client) RedeemPoints(ctx context.Context, req models.PointsRedeemRequest) (*models.PointsRedeemResult, error) {
	logger.Debug("Redeeming points", "points", req.Points)
	return fetch[models.PointsRedeemResult](ctx, c, post("/api/points/redeem", req), "")
}

// EarnPoints credits points for a delivered order
func (c *Client) EarnPoints(ctx context.Context, orderID string) (*models.PointTransaction, error) {
	logger.Debug("Earning points", "order_id", orderID)
	return fetch[models.PointTransaction](ctx, c, post("/api/points/earn", models.PointsEarnRequest{OrderID: orderID}), "transaction")
}

// AdminPointCustomers lists customers with their balances
func (c *Client) AdminPointCustomers(ctx context.Context, page, limit int, search string) (*Page[models.CustomerPoints], error) {
	query := pageQuery(page, limit)
	setIf(query, "search", search)
	return fetchPage[models.CustomerPoints](ctx, c, get("/api/admin/points/customers", query), "customers")
}

// AdminPointTransactions lists loyalty transactions of all users, or of
// userID when set
func (c *Client) AdminPointTransactions(ctx context.Context, page, limit int, userID string) (*Page[models.PointTransaction], error) {
	query := pageQuery(page, limit)
	setIf(query, "userId", userID)
	return fetchPage[models.PointTransaction](ctx, c, get("/api/admin/points/transactions", query), "transactions")
}

// CreatePointTransaction adjusts a customer's balance
func (c *Client) CreatePointTransaction(ctx context.Context, req models.AdminPointTransactionRequest) (*models.PointTransaction, error) {
	logger.Debug("Creating point transaction", "user_id", req.UserID, "type", req.Type, "points", req.Points)
	return fetch[models.PointTransaction](ctx, c, post("/api/admin/points/transactions", req), "transaction")
}

// PointsStats fetches the loyalty summary
func (c *Client) PointsStats(ctx context.Context) (*models.PointsStats, error) {
	return fetch[models.PointsStats](ctx, c, get("/api/admin/points/stats", nil), "stats")
}

// UpdatePointsConfig replaces the loyalty program rules
func (c *Client) UpdatePointsConfig(ctx context.Context, cfg models.PointsConfig) (*models.PointsConfig, error) {
	return fetch[models.PointsConfig](ctx, c, put("/api/admin/points/config", cfg), "config")
}
