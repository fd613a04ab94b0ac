package api

import (
	"context"
	"net/url"

	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
)

// CreateOrder places an order (checkout)
func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	logger.Debug("Creating order", "items", len(req.Items), "payment", req.PaymentMethod)
	return fetch[models.Order](ctx, c, post("/api/orders", req), "order")
}

// MyOrders lists the user's orders
func (c *Client) MyOrders(ctx context.Context, q models.OrderQuery) (*Page[models.Order], error) {
	return fetchPage[models.Order](ctx, c, get("/api/orders", orderQuery(q)), "orders")
}

// GetOrder fetches one order
func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return fetch[models.Order](ctx, c, get(pathf("/api/orders/%s", id), nil), "order")
}

// CancelOrder cancels a pending or confirmed order
func (c *Client) CancelOrder(ctx context.Context, id, reason string) (*models.Order, error) {
	logger.Debug("Cancelling order", "order_id", id)

	var body interface{}
	if reason != "" {
		body = map[string]string{"reason": reason}
	}
	return fetch[models.Order](ctx, c, put(pathf("/api/orders/%s/cancel", id), body), "order")
}

// AdminOrders lists all orders
func (c *Client) AdminOrders(ctx context.Context, q models.OrderQuery) (*Page[models.Order], error) {
	return fetchPage[models.Order](ctx, c, get("/api/admin/orders", orderQuery(q)), "orders")
}

// UpdateOrderStatus moves an order along its lifecycle
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	logger.Debug("Updating order status", "order_id", id, "status", status)
	return fetch[models.Order](ctx, c, put(pathf("/api/admin/orders/%s/status", id), map[string]string{"status": status}), "order")
}

// OrderStats fetches the admin dashboard summary
func (c *Client) OrderStats(ctx context.Context) (*models.OrderStats, error) {
	return fetch[models.OrderStats](ctx, c, get("/api/admin/orders/stats", nil), "stats")
}

func orderQuery(q models.OrderQuery) url.Values {
	query := pageQuery(q.Page, q.Limit)
	setIf(query, "status", q.Status)
	setIf(query, "paymentStatus", q.PaymentStatus)
	setIf(query, "search", q.Search)
	return query
}
