package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/William2207/uteshop/cli/pkg/cart"
	"github.com/William2207/uteshop/cli/pkg/formatter"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/output"
	"github.com/shopspring/decimal"
)

// CartService drives the cart store from the terminal
type CartService struct {
	rt *Runtime
}

// NewCartService creates a new cart service
func NewCartService(rt *Runtime) *CartService {
	return &CartService{rt: rt}
}

// Show fetches and prints the cart
func (s *CartService) Show(ctx context.Context) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	if err := s.rt.Cart.Fetch(ctx); err != nil {
		return err
	}
	return printCart(s.rt.Cart.State())
}

// Add puts quantity units of a product in the cart
func (s *CartService) Add(ctx context.Context, productID string, quantity int) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}

	logger.Debug("Adding to cart", "product_id", productID, "quantity", quantity)
	res, err := s.rt.Cart.AddItem(ctx, productID, quantity)
	if err != nil {
		return err
	}

	st := s.rt.Cart.State()
	switch {
	case res.Message != "":
		output.PrintSuccess("✓ %s", res.Message)
	case res.IsNewProduct:
		output.PrintSuccess("✓ Added to cart")
	default:
		output.PrintSuccess("✓ Quantity updated")
	}
	output.PrintInfo("Cart: %d item%s, %s", st.TotalItems, pluralize(st.TotalItems), formatter.Money(st.TotalAmount))
	return nil
}

// Update sets the quantity of a line
func (s *CartService) Update(ctx context.Context, productID string, quantity int) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	if err := s.rt.Cart.UpdateItem(ctx, productID, quantity); err != nil {
		return err
	}
	output.PrintSuccess("✓ Quantity set to %d", quantity)
	return printCart(s.rt.Cart.State())
}

// Remove drops a line from the cart
func (s *CartService) Remove(ctx context.Context, productID string) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	if err := s.rt.Cart.RemoveItem(ctx, productID); err != nil {
		return err
	}
	output.PrintSuccess("✓ Removed from cart")
	return nil
}

// Clear empties the cart after confirmation unless force is set
func (s *CartService) Clear(ctx context.Context, force bool) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	if !force {
		confirm, err := s.rt.Prompter.Confirm("Remove every item from the cart?")
		if err != nil {
			return err
		}
		if !confirm {
			output.PrintInfo("Cancelled")
			return nil
		}
	}
	if err := s.rt.Cart.Clear(ctx); err != nil {
		return err
	}
	output.PrintSuccess("✓ Cart cleared")
	return nil
}

// Count prints the badge count without loading the lines
func (s *CartService) Count(ctx context.Context) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	n, err := s.rt.Cart.ItemCount(ctx)
	if err != nil {
		return err
	}
	return output.PrintRecord("", []output.Field{{Key: "Items", Value: n}}, models.CartCount{TotalItems: n})
}

func printCart(st cart.State) error {
	data := models.Cart{Items: st.Items, TotalItems: st.TotalItems, TotalAmount: st.TotalAmount}
	if len(st.Items) == 0 {
		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", data)
		}
		output.PrintInfo("Your cart is empty")
		return nil
	}

	headers := []string{"Product", "Name", "Qty", "Unit price", "Subtotal"}
	rows := make([][]string, 0, len(st.Items))
	for _, item := range st.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		rows = append(rows, []string{
			item.Key(),
			formatter.Truncate(name, 32),
			strconv.Itoa(item.Quantity),
			formatter.Money(item.UnitPrice),
			formatter.Money(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		})
	}
	if err := output.PrintTable(headers, rows, data); err != nil {
		return err
	}
	if output.GetOutputFormat() != output.FormatJSON {
		output.Println(fmt.Sprintf("%s %d item%s, %s", formatter.Bold.Sprint("Total:"),
			st.TotalItems, pluralize(st.TotalItems), formatter.Money(st.TotalAmount)))
	}
	return nil
}
