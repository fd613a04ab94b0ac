package cmd

import (
	"github.com/William2207/uteshop/cli/pkg/service"
	"github.com/spf13/cobra"
)

var voucherAmount string

var voucherCmd = &cobra.Command{
	Use:     "voucher",
	Aliases: []string{"vouchers"},
	Short:   "Voucher commands",
}

var voucherListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vouchers you can use",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewVoucherService(rt).Available(cmd.Context())
	},
}

var voucherApplyCmd = &cobra.Command{
	Use:   "apply <code>",
	Short: "Preview a voucher against an amount or your cart",
	Long:  "Preview the discount of a voucher. Without --amount the current cart total is used. Nothing is redeemed until checkout.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseMoney("amount", voucherAmount)
		if err != nil {
			return err
		}
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewVoucherService(rt).Apply(cmd.Context(), args[0], amount)
	},
}

func init() {
	voucherCmd.AddCommand(voucherListCmd)
	voucherCmd.AddCommand(voucherApplyCmd)

	voucherApplyCmd.Flags().StringVar(&voucherAmount, "amount", "", "Order amount in VND (default: cart total)")
}
