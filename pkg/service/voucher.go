package service

import (
	"context"
	"strconv"
	"strings"

	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/formatter"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/output"
	"github.com/William2207/uteshop/cli/pkg/validate"
	"github.com/shopspring/decimal"
)

// VoucherService lists, previews and administers vouchers
type VoucherService struct {
	rt *Runtime
}

// NewVoucherService creates a new voucher service
func NewVoucherService(rt *Runtime) *VoucherService {
	return &VoucherService{rt: rt}
}

// Available prints vouchers the user can apply
func (s *VoucherService) Available(ctx context.Context) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	vouchers, err := s.rt.API.AvailableVouchers(ctx)
	if err != nil {
		return err
	}
	if len(vouchers) == 0 {
		output.PrintInfo("No vouchers available")
		return nil
	}
	return printVouchers(vouchers, vouchers, false)
}

// Apply previews a code against amount, or against the cart total when
// amount is zero.
func (s *VoucherService) Apply(ctx context.Context, code string, amount decimal.Decimal) error {
	if err := requireArg("code", code); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	if amount.IsZero() {
		if err := s.rt.Cart.Fetch(ctx); err != nil {
			return err
		}
		amount = s.rt.Cart.State().TotalAmount
	}

	preview, err := s.rt.API.ApplyVoucher(ctx, strings.ToUpper(code), amount)
	if err != nil {
		return err
	}
	return printVoucherPreview(amount, preview)
}

// AdminList prints every voucher
func (s *VoucherService) AdminList(ctx context.Context, page, limit int) error {
	if err := s.rt.RequireAdmin(ctx); err != nil {
		return err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	res, err := s.rt.API.AdminVouchers(ctx, page, limit)
	if err != nil {
		return err
	}
	if len(res.Items) == 0 {
		output.PrintInfo("No vouchers")
		return nil
	}
	if err := printVouchers(res.Items, pageData(res), true); err != nil {
		return err
	}
	printPagination(res.Pagination)
	return nil
}

// AdminCreate validates and creates v
func (s *VoucherService) AdminCreate(ctx context.Context, v models.Voucher) error {
	if err := s.rt.RequireAdmin(ctx); err != nil {
		return err
	}
	v.Code = strings.ToUpper(v.Code)
	if err := validateVoucher(v); err != nil {
		return err
	}
	created, err := s.rt.API.CreateVoucher(ctx, v)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ Voucher %s created", created.Code)
	return nil
}

// AdminUpdate replaces a voucher's settings
func (s *VoucherService) AdminUpdate(ctx context.Context, id string, v models.Voucher) error {
	if err := requireArg("voucher id", id); err != nil {
		return err
	}
	if err := s.rt.RequireAdmin(ctx); err != nil {
		return err
	}
	v.Code = strings.ToUpper(v.Code)
	if err := validateVoucher(v); err != nil {
		return err
	}
	if _, err := s.rt.API.UpdateVoucher(ctx, id, v); err != nil {
		return err
	}
	output.PrintSuccess("✓ Voucher updated")
	return nil
}

// AdminDelete removes a voucher after confirmation unless force is set
func (s *VoucherService) AdminDelete(ctx context.Context, id string, force bool) error {
	if err := requireArg("voucher id", id); err != nil {
		return err
	}
	if err := s.rt.RequireAdmin(ctx); err != nil {
		return err
	}
	if !force {
		ok, err := s.rt.Prompter.Confirm("Delete voucher " + id + "?")
		if err != nil {
			return err
		}
		if !ok {
			output.PrintInfo("Cancelled")
			return nil
		}
	}
	if err := s.rt.API.DeleteVoucher(ctx, id); err != nil {
		return err
	}
	output.PrintSuccess("✓ Voucher deleted")
	return nil
}

// validateVoucher checks the tags plus the cross-field rules the form enforces
func validateVoucher(v models.Voucher) error {
	if err := validate.Struct(v); err != nil {
		return err
	}
	if !v.DiscountValue.IsPositive() && v.DiscountType != models.DiscountFreeShip {
		return clierrors.ValidationError("discountValue", "must be positive")
	}
	if v.DiscountType == models.DiscountPercentage && v.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return clierrors.ValidationError("discountValue", "must be at most 100 for a percentage")
	}
	if v.EndDate < v.StartDate {
		return clierrors.ValidationError("endDate", "must not be before startDate")
	}
	logger.Debug("Voucher validated", "code", v.Code)
	return nil
}

func voucherDiscount(v models.Voucher) string {
	switch v.DiscountType {
	case models.DiscountPercentage:
		s := v.DiscountValue.String() + "%"
		if v.MaxDiscountAmount.IsPositive() {
			s += " up to " + formatter.Money(v.MaxDiscountAmount)
		}
		return s
	case models.DiscountFreeShip:
		return "free shipping"
	default:
		return formatter.Money(v.DiscountValue)
	}
}

func printVouchers(vouchers []models.Voucher, data interface{}, admin bool) error {
	headers := []string{"Code", "Discount", "Min order", "Valid until"}
	if admin {
		headers = append([]string{"ID"}, append(headers, "Used", "Active")...)
	}

	rows := make([][]string, 0, len(vouchers))
	for _, v := range vouchers {
		row := []string{v.Code, voucherDiscount(v), formatter.Money(v.MinOrderAmount), v.EndDate}
		if admin {
			active := formatter.Error.Sprint("no")
			if v.IsActive {
				active = formatter.Success.Sprint("yes")
			}
			row = append([]string{v.ID}, append(row,
				strconv.Itoa(v.UsedCount)+"/"+strconv.Itoa(v.MaxIssued), active)...)
		}
		rows = append(rows, row)
	}
	return output.PrintTable(headers, rows, data)
}

func printVoucherPreview(amount decimal.Decimal, p *models.VoucherPreview) error {
	if !p.Valid && p.Message != "" && output.GetOutputFormat() != output.FormatJSON {
		output.PrintWarning("%s", p.Message)
	}
	return output.PrintRecord("Voucher "+p.Code, []output.Field{
		{Key: "Order amount", Value: formatter.Money(amount)},
		{Key: "Discount", Value: formatter.Money(p.DiscountAmount)},
		{Key: "You pay", Value: formatter.Bold.Sprint(formatter.Money(p.FinalAmount))},
	}, p)
}
