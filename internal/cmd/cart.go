package cmd

import (
	"github.com/William2207/uteshop/cli/pkg/service"
	"github.com/spf13/cobra"
)

var cartForce bool

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Shopping cart commands",
	Long:  "View and change your cart. The server keeps the authoritative copy.",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewCartService(rt).Show(cmd.Context())
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id> [quantity]",
	Short: "Add a product to the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quantity := 1
		if len(args) > 1 {
			n, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			quantity = n
		}

		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewCartService(rt).Add(cmd.Context(), args[0], quantity)
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <product-id> <quantity>",
	Short: "Set the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quantity, err := parseQuantity(args[1])
		if err != nil {
			return err
		}
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewCartService(rt).Update(cmd.Context(), args[0], quantity)
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:     "remove <product-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a product from the cart",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewCartService(rt).Remove(cmd.Context(), args[0])
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewCartService(rt).Clear(cmd.Context(), cartForce)
	},
}

var cartCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the number of items in the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewCartService(rt).Count(cmd.Context())
	},
}

func init() {
	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartUpdateCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)
	cartCmd.AddCommand(cartCountCmd)

	cartClearCmd.Flags().BoolVarP(&cartForce, "yes", "y", false, "Skip confirmation")
}
