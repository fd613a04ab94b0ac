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

// PaymentMethods accepted at checkout.
var PaymentMethods = []string{"COD", "MOMO", "VNPAY"}

// CheckoutOptions preset checkout answers. Anything left empty is prompted for.
type CheckoutOptions struct {
	Address string
	Payment string
	Voucher string
	Points  int
	Note    string
	Yes     bool
}

// OrderService places and tracks orders
type OrderService struct {
	rt *Runtime
}

// NewOrderService creates a new order service
func NewOrderService(rt *Runtime) *OrderService {
	return &OrderService{rt: rt}
}

// Checkout turns the server cart into an order
func (s *OrderService) Checkout(ctx context.Context, opts CheckoutOptions) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	if err := s.rt.Cart.Fetch(ctx); err != nil {
		return err
	}
	st := s.rt.Cart.State()
	if len(st.Items) == 0 {
		return clierrors.NewCLIError(clierrors.ErrorTypeValidation, "Your cart is empty", nil).
			WithSuggestion("Add products with 'uteshop cart add <product-id>'.")
	}
	if output.GetOutputFormat() != output.FormatJSON {
		if err := printCart(st); err != nil {
			return err
		}
	}

	req := models.CreateOrderRequest{
		TotalPrice:  st.TotalAmount,
		PointsToUse: opts.Points,
	}
	for _, item := range st.Items {
		line := models.OrderItem{Product: item.Key(), Quantity: item.Quantity, Price: item.UnitPrice}
		if item.Product != nil {
			line.Name = item.Product.Name
		}
		req.Items = append(req.Items, line)
	}

	var err error
	if req.ShippingAddress, err = s.chooseAddress(ctx, opts.Address); err != nil {
		return err
	}
	if req.PaymentMethod, err = s.choosePayment(opts.Payment); err != nil {
		return err
	}
	if req.PaymentMethod == "COD" {
		req.CODDetails = &models.CODDetails{PhoneNumberConfirmed: true, AdditionalNotes: opts.Note}
	}

	payable := st.TotalAmount
	if opts.Voucher != "" {
		code := strings.ToUpper(opts.Voucher)
		preview, err := s.rt.API.ApplyVoucher(ctx, code, st.TotalAmount)
		if err != nil {
			return err
		}
		if !preview.Valid {
			return clierrors.ValidationError("voucher", orDefault(preview.Message, "cannot be applied to this order"))
		}
		req.VoucherCode = code
		payable = preview.FinalAmount
		output.PrintInfo("Voucher %s: -%s", code, formatter.Money(preview.DiscountAmount))
	}
	if req.PointsToUse > 0 {
		if user := s.rt.Session.State().User; user != nil && req.PointsToUse > user.Points {
			return clierrors.ValidationError("points", "exceeds your balance of "+strconv.Itoa(user.Points))
		}
	}

	if err := validate.Struct(req); err != nil {
		return err
	}

	if !opts.Yes {
		ok, err := s.rt.Prompter.Confirm("Place order for " + formatter.Money(payable) + " (" + req.PaymentMethod + ")?")
		if err != nil {
			return err
		}
		if !ok {
			output.PrintInfo("Cancelled")
			return nil
		}
	}

	order, err := s.rt.API.CreateOrder(ctx, req)
	if err != nil {
		return err
	}

	// the server empties the cart once the order exists
	if err := s.rt.Cart.Fetch(ctx); err != nil {
		logger.Warn("Failed to reload cart after checkout", "error", err)
	}

	output.PrintSuccess("✓ Order %s placed", order.ID)
	return printOrder(order)
}

func (s *OrderService) chooseAddress(ctx context.Context, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}

	addrs, err := s.rt.API.ListAddresses(ctx)
	if err != nil {
		logger.Debug("Failed to load addresses", "error", err)
	}
	if len(addrs) == 0 {
		fallback := ""
		if user := s.rt.Session.State().User; user != nil {
			fallback = user.Address
		}
		return s.rt.Prompter.StringDefault("Shipping address ", fallback)
	}

	options := make([]string, 0, len(addrs)+1)
	for _, a := range addrs {
		label := a.FullName + ", " + a.Phone + ", " + formatAddress(a)
		if a.IsDefault {
			label += " (default)"
		}
		options = append(options, label)
	}
	options = append(options, "Another address")

	idx, err := s.rt.Prompter.Select("Ship to:", options)
	if err != nil {
		return "", err
	}
	if idx == len(addrs) {
		return s.rt.Prompter.String("Shipping address: ")
	}
	return options[idx], nil
}

func (s *OrderService) choosePayment(preset string) (string, error) {
	if preset != "" {
		return strings.ToUpper(preset), nil
	}
	idx, err := s.rt.Prompter.Select("Payment method:", PaymentMethods)
	if err != nil {
		return "", err
	}
	return PaymentMethods[idx], nil
}

// List prints the user's orders
func (s *OrderService) List(ctx context.Context, q models.OrderQuery) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	normalizeOrderQuery(&q)
	page, err := s.rt.API.MyOrders(ctx, q)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		output.PrintInfo("No orders yet")
		return nil
	}
	if err := printOrders(page.Items, pageData(page)); err != nil {
		return err
	}
	printPagination(page.Pagination)
	return nil
}

// Show prints one order with its lines
func (s *OrderService) Show(ctx context.Context, id string) error {
	if err := requireArg("order id", id); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	order, err := s.rt.API.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	return printOrder(order)
}

// Cancel cancels a pending or confirmed order
func (s *OrderService) Cancel(ctx context.Context, id, reason string, force bool) error {
	if err := requireArg("order id", id); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}

	order, err := s.rt.API.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if !order.CanCancel() {
		return clierrors.NewCLIError(clierrors.ErrorTypeBusiness, "Order is "+order.Status+" and can no longer be cancelled", nil)
	}
	if !force {
		ok, err := s.rt.Prompter.Confirm("Cancel order " + id + "?")
		if err != nil {
			return err
		}
		if !ok {
			output.PrintInfo("Kept")
			return nil
		}
	}

	if _, err := s.rt.API.CancelOrder(ctx, id, reason); err != nil {
		return err
	}
	output.PrintSuccess("✓ Order cancelled")
	return nil
}

// AdminList prints all orders
func (s *OrderService) AdminList(ctx context.Context, q models.OrderQuery) error {
	if err := s.rt.RequireAdmin(ctx); err != nil {
		return err
	}
	normalizeOrderQuery(&q)
	page, err := s.rt.API.AdminOrders(ctx, q)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		output.PrintInfo("No orders")
		return nil
	}
	if err := printOrders(page.Items, pageData(page)); err != nil {
		return err
	}
	printPagination(page.Pagination)
	return nil
}

// AdminSetStatus moves an order to status
func (s *OrderService) AdminSetStatus(ctx context.Context, id, status string) error {
	if err := requireArg("order id", id); err != nil {
		return err
	}
	if err := validate.Var("status", status, "required,oneof="+strings.Join(models.OrderStatuses, " ")); err != nil {
		return err
	}
	if err := s.rt.RequireAdmin(ctx); err != nil {
		return err
	}
	order, err := s.rt.API.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ Order %s is now %s", order.ID, formatter.OrderStatus(order.Status))
	return nil
}

// AdminStats prints the order dashboard summary
func (s *OrderService) AdminStats(ctx context.Context) error {
	if err := s.rt.RequireAdmin(ctx); err != nil {
		return err
	}
	stats, err := s.rt.API.OrderStats(ctx)
	if err != nil {
		return err
	}

	fields := []output.Field{
		{Key: "Orders", Value: stats.TotalOrders},
		{Key: "Revenue", Value: formatter.Money(stats.TotalRevenue)},
		{Key: "Pending", Value: stats.PendingOrders},
	}
	for _, status := range models.OrderStatuses {
		if n, ok := stats.StatusCounts[status]; ok {
			fields = append(fields, output.Field{Key: "  " + formatter.OrderStatus(status), Value: n})
		}
	}
	return output.PrintRecord("Orders", fields, stats)
}

func normalizeOrderQuery(q *models.OrderQuery) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 10
	}
}

func printOrders(orders []models.Order, data interface{}) error {
	headers := []string{"ID", "Date", "Items", "Total", "Payment", "Status"}
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		qty := 0
		for _, item := range o.Items {
			qty += item.Quantity
		}
		rows = append(rows, []string{
			o.ID,
			formatter.Date(o.CreatedAt),
			strconv.Itoa(qty),
			formatter.Money(o.TotalPrice),
			o.PaymentMethod,
			formatter.OrderStatus(o.Status),
		})
	}
	return output.PrintTable(headers, rows, data)
}

func printOrder(o *models.Order) error {
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", o)
	}

	fields := []output.Field{
		{Key: "ID", Value: o.ID},
		{Key: "Status", Value: formatter.OrderStatus(o.Status)},
		{Key: "Payment", Value: strings.TrimSpace(o.PaymentMethod + " " + o.PaymentStatus)},
		{Key: "Ship to", Value: o.ShippingAddress},
	}
	if d := formatter.Date(o.CreatedAt); d != "" {
		fields = append(fields, output.Field{Key: "Placed", Value: d})
	}
	if o.VoucherCode != "" {
		fields = append(fields, output.Field{Key: "Voucher", Value: o.VoucherCode})
	}
	if o.DiscountAmount.IsPositive() {
		fields = append(fields, output.Field{Key: "Discount", Value: "-" + formatter.Money(o.DiscountAmount)})
	}
	if o.PointsUsed > 0 {
		fields = append(fields, output.Field{Key: "Points used", Value: o.PointsUsed})
	}
	fields = append(fields, output.Field{Key: "Total", Value: formatter.Bold.Sprint(formatter.Money(o.TotalPrice))})
	if err := output.PrintRecord("", fields, o); err != nil {
		return err
	}

	rows := make([][]string, 0, len(o.Items))
	for _, item := range o.Items {
		rows = append(rows, []string{
			orDefault(item.Name, item.Product),
			strconv.Itoa(item.Quantity),
			formatter.Money(item.Price),
			formatter.Money(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		})
	}
	output.Println()
	return output.PrintTable([]string{"Product", "Qty", "Price", "Subtotal"}, rows, o)
}
