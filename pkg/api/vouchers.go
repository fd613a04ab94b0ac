package api

import (
	"context"

	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/shopspring/decimal"
)

// AvailableVouchers lists vouchers the user can apply
func (c *Client) AvailableVouchers(ctx context.Context) ([]models.Voucher, error) {
	page, err := fetchPage[models.Voucher](ctx, c, get("/api/vouchers/available", nil), "vouchers")
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ApplyVoucher previews a voucher against an order amount. Nothing is
// redeemed until checkout.
func (c *Client) ApplyVoucher(ctx context.Context, code string, orderAmount decimal.Decimal) (*models.VoucherPreview, error) {
	logger.Debug("Applying voucher", "code", code, "amount", orderAmount.String())

	body := map[string]interface{}{"code": code, "orderAmount": orderAmount}
	preview, err := fetch[models.VoucherPreview](ctx, c, post("/api/vouchers/apply", body), "")
	if err != nil {
		return nil, err
	}
	if preview.Code == "" {
		preview.Code = code
	}
	return preview, nil
}

// AdminVouchers lists all vouchers
func (c *Client) AdminVouchers(ctx context.Context, page, limit int) (*Page[models.Voucher], error) {
	return fetchPage[models.Voucher](ctx, c, get("/api/admin/vouchers", pageQuery(page, limit)), "vouchers")
}

// CreateVoucher creates a voucher
func (c *Client) CreateVoucher(ctx context.Context, v models.Voucher) (*models.Voucher, error) {
	logger.Debug("Creating voucher", "code", v.Code)
	return fetch[models.Voucher](ctx, c, post("/api/admin/vouchers", v), "voucher")
}

// UpdateVoucher replaces a voucher's settings
func (c *Client) UpdateVoucher(ctx context.Context, id string, v models.Voucher) (*models.Voucher, error) {
	return fetch[models.Voucher](ctx, c, put(pathf("/api/admin/vouchers/%s", id), v), "voucher")
}

// DeleteVoucher deletes a voucher
func (c *Client) DeleteVoucher(ctx context.Context, id string) error {
	_, err := c.do(ctx, del(pathf("/api/admin/vouchers/%s", id)))
	return err
}
