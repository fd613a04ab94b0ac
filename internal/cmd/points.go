package cmd

import (
	"github.com/William2207/uteshop/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	pointsPage   int
	pointsLimit  int
	redeemAmount string
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Loyalty points commands",
}

var pointsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your balance and point transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewPointsService(rt).History(cmd.Context(), pointsPage, pointsLimit)
	},
}

var pointsConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show how points are earned and redeemed",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewPointsService(rt).Config(cmd.Context())
	},
}

var pointsRedeemCmd = &cobra.Command{
	Use:   "redeem <points>",
	Short: "Spend points against an order amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parseInt("points", args[0])
		if err != nil {
			return err
		}
		amount, err := parseMoney("amount", redeemAmount)
		if err != nil {
			return err
		}
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewPointsService(rt).Redeem(cmd.Context(), points, amount)
	},
}

func init() {
	pointsCmd.AddCommand(pointsHistoryCmd)
	pointsCmd.AddCommand(pointsConfigCmd)
	pointsCmd.AddCommand(pointsRedeemCmd)

	pointsHistoryCmd.Flags().IntVar(&pointsPage, "page", 1, "Page number")
	pointsHistoryCmd.Flags().IntVar(&pointsLimit, "limit", 20, "Transactions per page")

	pointsRedeemCmd.Flags().StringVar(&redeemAmount, "amount", "", "Order amount in VND")
	pointsRedeemCmd.MarkFlagRequired("amount")
}
