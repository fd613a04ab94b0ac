package cmd

import (
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	checkoutOpts service.CheckoutOptions
	orderQuery   models.OrderQuery
	cancelReason string
	cancelForce  bool
)

var orderCmd = &cobra.Command{
	Use:     "order",
	Aliases: []string{"orders"},
	Short:   "Checkout and order commands",
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the items in your cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewOrderService(rt).Checkout(cmd.Context(), checkoutOpts)
	},
}

var orderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewOrderService(rt).List(cmd.Context(), orderQuery)
	},
}

var orderShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewOrderService(rt).Show(cmd.Context(), args[0])
	},
}

var orderCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel a pending or confirmed order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewOrderService(rt).Cancel(cmd.Context(), args[0], cancelReason, cancelForce)
	},
}

func addOrderQueryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&orderQuery.Page, "page", 1, "Page number")
	f.IntVar(&orderQuery.Limit, "limit", 10, "Orders per page")
	f.StringVar(&orderQuery.Status, "status", "", "Filter by status (pending, confirmed, preparing, shipping, delivered, cancelled)")
}

func init() {
	orderCmd.AddCommand(checkoutCmd)
	orderCmd.AddCommand(orderListCmd)
	orderCmd.AddCommand(orderShowCmd)
	orderCmd.AddCommand(orderCancelCmd)

	f := checkoutCmd.Flags()
	f.StringVar(&checkoutOpts.Address, "address", "", "Shipping address (prompted when omitted)")
	f.StringVar(&checkoutOpts.Payment, "payment", "", "Payment method: COD, MOMO or VNPAY")
	f.StringVar(&checkoutOpts.Voucher, "voucher", "", "Voucher code")
	f.IntVar(&checkoutOpts.Points, "points", 0, "Loyalty points to spend")
	f.StringVar(&checkoutOpts.Note, "note", "", "Note for the courier (COD)")
	f.BoolVarP(&checkoutOpts.Yes, "yes", "y", false, "Skip confirmation")

	addOrderQueryFlags(orderListCmd)

	orderCancelCmd.Flags().StringVar(&cancelReason, "reason", "", "Why the order is cancelled")
	orderCancelCmd.Flags().BoolVarP(&cancelForce, "yes", "y", false, "Skip confirmation")
}
