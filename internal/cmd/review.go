package cmd

import (
	"github.com/William2207/uteshop/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	reviewPage    int
	reviewLimit   int
	reviewRating  int
	reviewComment string
)

var reviewCmd = &cobra.Command{
	Use:     "review",
	Aliases: []string{"reviews"},
	Short:   "Product review commands",
}

var reviewListCmd = &cobra.Command{
	Use:   "list <product-id>",
	Short: "List reviews of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewReviewService(rt).List(cmd.Context(), args[0], reviewPage, reviewLimit)
	},
}

var reviewMineCmd = &cobra.Command{
	Use:   "mine <product-id>",
	Short: "Show your review of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewReviewService(rt).Mine(cmd.Context(), args[0])
	},
}

var reviewCreateCmd = &cobra.Command{
	Use:   "create <product-id>",
	Short: "Review a purchased product",
	Long:  "Review a purchased product. Rating and comment are prompted for when not given as flags.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewReviewService(rt).Create(cmd.Context(), args[0], reviewRating, reviewComment)
	},
}

var reviewUpdateCmd = &cobra.Command{
	Use:   "update <review-id>",
	Short: "Edit your review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewReviewService(rt).Update(cmd.Context(), args[0], reviewRating, reviewComment)
	},
}

var reviewDeleteCmd = &cobra.Command{
	Use:   "delete <review-id>",
	Short: "Delete your review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewReviewService(rt).Delete(cmd.Context(), args[0])
	},
}

func init() {
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewMineCmd)
	reviewCmd.AddCommand(reviewCreateCmd)
	reviewCmd.AddCommand(reviewUpdateCmd)
	reviewCmd.AddCommand(reviewDeleteCmd)

	reviewListCmd.Flags().IntVar(&reviewPage, "page", 1, "Page number")
	reviewListCmd.Flags().IntVar(&reviewLimit, "limit", 10, "Reviews per page")

	for _, c := range []*cobra.Command{reviewCreateCmd, reviewUpdateCmd} {
		c.Flags().IntVarP(&reviewRating, "rating", "r", 0, "Rating from 1 to 5")
		c.Flags().StringVarP(&reviewComment, "comment", "m", "", "Review text")
	}
}
