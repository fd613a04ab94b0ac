package cmd

import (
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	productQuery models.ProductQuery
	productLimit int
)

var productCmd = &cobra.Command{
	Use:     "product",
	Aliases: []string{"products"},
	Short:   "Browse the catalogue",
}

var productListCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List products",
	Long:  "List products, optionally filtered by a search term, category and price range",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := productQuery
		if len(args) > 0 {
			q.Search = args[0]
		}
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProductService(rt).List(cmd.Context(), q)
	},
}

var productShowCmd = &cobra.Command{
	Use:   "show <product-id>",
	Short: "Show product details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProductService(rt).Show(cmd.Context(), args[0])
	},
}

var productHomeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show new arrivals, best sellers, most viewed and top discounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProductService(rt).Home(cmd.Context())
	},
}

var productNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Show the newest products",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProductService(rt).New(cmd.Context(), productLimit)
	},
}

var productSimilarCmd = &cobra.Command{
	Use:   "similar <product-id>",
	Short: "Show products similar to one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProductService(rt).Similar(cmd.Context(), args[0], productLimit)
	},
}

func init() {
	productCmd.AddCommand(productListCmd)
	productCmd.AddCommand(productShowCmd)
	productCmd.AddCommand(productHomeCmd)
	productCmd.AddCommand(productNewCmd)
	productCmd.AddCommand(productSimilarCmd)

	f := productListCmd.Flags()
	f.IntVar(&productQuery.Page, "page", 1, "Page number")
	f.IntVar(&productQuery.Limit, "limit", 12, "Products per page")
	f.StringVar(&productQuery.Sort, "sort", "", "Sort order (newest, price_asc, price_desc, best_selling)")
	f.StringVar(&productQuery.Category, "category", "", "Category id")
	f.StringVar(&productQuery.MinPrice, "min-price", "", "Minimum price")
	f.StringVar(&productQuery.MaxPrice, "max-price", "", "Maximum price")

	productNewCmd.Flags().IntVar(&productLimit, "limit", 8, "Number of products")
	productSimilarCmd.Flags().IntVar(&productLimit, "limit", 8, "Number of products")
}
