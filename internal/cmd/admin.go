package cmd

import (
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	adminPage       int
	adminLimit      int
	adminSearch     string
	adminUserID     string
	adminForce      bool
	adminOrderQuery models.OrderQuery
	adminVoucher    models.Voucher
	voucherValue    string
	voucherMaxDisc  string
	voucherMinOrder string
	adjustRequest   models.AdminPointTransactionRequest
	pointsConfig    models.PointsConfig
	pointsPerAmount string
	amountPerPoint  string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin commands",
	Long:  "Store administration: vouchers, orders and loyalty points (admin-only)",
}

// Vouchers
var adminVouchersCmd = &cobra.Command{
	Use:   "vouchers",
	Short: "Manage vouchers",
}

var adminVouchersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all vouchers",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewVoucherService(rt).AdminList(cmd.Context(), adminPage, adminLimit)
	},
}

var adminVouchersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a voucher",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := voucherFromFlags()
		if err != nil {
			return err
		}
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewVoucherService(rt).AdminCreate(cmd.Context(), v)
	},
}

var adminVouchersUpdateCmd = &cobra.Command{
	Use:   "update <voucher-id>",
	Short: "Replace a voucher's settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := voucherFromFlags()
		if err != nil {
			return err
		}
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewVoucherService(rt).AdminUpdate(cmd.Context(), args[0], v)
	},
}

var adminVouchersDeleteCmd = &cobra.Command{
	Use:   "delete <voucher-id>",
	Short: "Delete a voucher",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewVoucherService(rt).AdminDelete(cmd.Context(), args[0], adminForce)
	},
}

// Orders
var adminOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Manage orders",
}

var adminOrdersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewOrderService(rt).AdminList(cmd.Context(), adminOrderQuery)
	},
}

var adminOrdersStatusCmd = &cobra.Command{
	Use:   "status <order-id> <status>",
	Short: "Move an order to a new status",
	Args:  cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 1 {
			return models.OrderStatuses, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewOrderService(rt).AdminSetStatus(cmd.Context(), args[0], args[1])
	},
}

var adminOrdersStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show order statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewOrderService(rt).AdminStats(cmd.Context())
	},
}

// Points
var adminPointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Manage loyalty points",
}

var adminPointsCustomersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List customers with their balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewPointsService(rt).AdminCustomers(cmd.Context(), adminPage, adminLimit, adminSearch)
	},
}

var adminPointsTransactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List point transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewPointsService(rt).AdminTransactions(cmd.Context(), adminPage, adminLimit, adminUserID)
	},
}

var adminPointsAdjustCmd = &cobra.Command{
	Use:   "adjust <user-id> <points>",
	Short: "Add or remove points for a customer",
	Long:  "Add or remove points for a customer. Pass negative amounts after --, e.g. uteshop admin points adjust <user-id> -- -50",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parseInt("points", args[1])
		if err != nil {
			return err
		}
		req := adjustRequest
		req.UserID = args[0]
		req.Points = points

		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewPointsService(rt).AdminAdjust(cmd.Context(), req)
	},
}

var adminPointsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show loyalty statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewPointsService(rt).AdminStats(cmd.Context())
	},
}

var adminPointsConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Change the loyalty program rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pointsConfig
		var err error
		if cfg.PointsPerAmount, err = parseMoney("points-per-amount", pointsPerAmount); err != nil {
			return err
		}
		if cfg.AmountPerPoint, err = parseMoney("amount-per-point", amountPerPoint); err != nil {
			return err
		}
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewPointsService(rt).AdminSetConfig(cmd.Context(), cfg)
	},
}

func voucherFromFlags() (models.Voucher, error) {
	v := adminVoucher
	var err error
	if v.DiscountValue, err = parseMoney("value", voucherValue); err != nil {
		return v, err
	}
	if v.MaxDiscountAmount, err = parseMoney("max-discount", voucherMaxDisc); err != nil {
		return v, err
	}
	if v.MinOrderAmount, err = parseMoney("min-order", voucherMinOrder); err != nil {
		return v, err
	}
	return v, nil
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&adminPage, "page", 1, "Page number")
	cmd.Flags().IntVar(&adminLimit, "limit", 20, "Items per page")
}

func init() {
	adminCmd.AddCommand(adminVouchersCmd)
	adminCmd.AddCommand(adminOrdersCmd)
	adminCmd.AddCommand(adminPointsCmd)

	adminVouchersCmd.AddCommand(adminVouchersListCmd)
	adminVouchersCmd.AddCommand(adminVouchersCreateCmd)
	adminVouchersCmd.AddCommand(adminVouchersUpdateCmd)
	adminVouchersCmd.AddCommand(adminVouchersDeleteCmd)
	addPageFlags(adminVouchersListCmd)
	for _, c := range []*cobra.Command{adminVouchersCreateCmd, adminVouchersUpdateCmd} {
		f := c.Flags()
		f.StringVar(&adminVoucher.Code, "code", "", "Voucher code")
		f.StringVar(&adminVoucher.Description, "description", "", "Description")
		f.StringVar(&adminVoucher.DiscountType, "type", "PERCENTAGE", "Discount type: PERCENTAGE, FIXED_AMOUNT or FREE_SHIP")
		f.StringVar(&voucherValue, "value", "", "Discount value (percent or VND)")
		f.StringVar(&voucherMaxDisc, "max-discount", "", "Maximum discount in VND for percentage vouchers")
		f.StringVar(&voucherMinOrder, "min-order", "", "Minimum order amount in VND")
		f.StringVar(&adminVoucher.StartDate, "start", "", "Start date (YYYY-MM-DD)")
		f.StringVar(&adminVoucher.EndDate, "end", "", "End date (YYYY-MM-DD)")
		f.IntVar(&adminVoucher.MaxIssued, "max-issued", 100, "How many times the voucher can be issued")
		f.IntVar(&adminVoucher.MaxUsesPerUser, "max-uses", 1, "Uses per customer")
		f.BoolVar(&adminVoucher.IsActive, "active", true, "Whether the voucher is active")
	}
	adminVouchersDeleteCmd.Flags().BoolVarP(&adminForce, "yes", "y", false, "Skip confirmation")

	adminOrdersCmd.AddCommand(adminOrdersListCmd)
	adminOrdersCmd.AddCommand(adminOrdersStatusCmd)
	adminOrdersCmd.AddCommand(adminOrdersStatsCmd)
	f := adminOrdersListCmd.Flags()
	f.IntVar(&adminOrderQuery.Page, "page", 1, "Page number")
	f.IntVar(&adminOrderQuery.Limit, "limit", 20, "Orders per page")
	f.StringVar(&adminOrderQuery.Status, "status", "", "Filter by status")
	f.StringVar(&adminOrderQuery.PaymentStatus, "payment-status", "", "Filter by payment status")
	f.StringVar(&adminOrderQuery.Search, "search", "", "Search by order id, customer or email")

	adminPointsCmd.AddCommand(adminPointsCustomersCmd)
	adminPointsCmd.AddCommand(adminPointsTransactionsCmd)
	adminPointsCmd.AddCommand(adminPointsAdjustCmd)
	adminPointsCmd.AddCommand(adminPointsStatsCmd)
	adminPointsCmd.AddCommand(adminPointsConfigCmd)
	addPageFlags(adminPointsCustomersCmd)
	adminPointsCustomersCmd.Flags().StringVar(&adminSearch, "search", "", "Search by name or email")
	addPageFlags(adminPointsTransactionsCmd)
	adminPointsTransactionsCmd.Flags().StringVar(&adminUserID, "user", "", "Only this user's transactions")
	adminPointsAdjustCmd.Flags().StringVar(&adjustRequest.Type, "type", models.PointsAdjusted, "Transaction type: EARNED, REDEEMED, ADJUSTED or EXPIRED")
	adminPointsAdjustCmd.Flags().StringVar(&adjustRequest.Description, "description", "", "Reason shown to the customer")
	pf := adminPointsConfigCmd.Flags()
	pf.StringVar(&pointsPerAmount, "points-per-amount", "", "VND spent per point earned")
	pf.StringVar(&amountPerPoint, "amount-per-point", "", "VND discount per point redeemed")
	pf.IntVar(&pointsConfig.MaxRedeemPercent, "max-redeem-percent", 0, "Largest share of an order payable with points")
	pf.IntVar(&pointsConfig.ExpiryDays, "expiry-days", 0, "Days before earned points expire")
}
