package cmd

import (
	"github.com/William2207/uteshop/cli/pkg/service"
	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:     "favorite",
	Aliases: []string{"fav", "favorites"},
	Short:   "Wishlist commands",
}

var favoriteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite products",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewFavoriteService(rt).List(cmd.Context())
	},
}

var favoriteToggleCmd = &cobra.Command{
	Use:   "toggle <product-id>",
	Short: "Add or remove a product from favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewFavoriteService(rt).Toggle(cmd.Context(), args[0])
	},
}

var favoriteCheckCmd = &cobra.Command{
	Use:   "check <product-id>",
	Short: "Check whether a product is a favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewFavoriteService(rt).Check(cmd.Context(), args[0])
	},
}

func init() {
	favoriteCmd.AddCommand(favoriteListCmd)
	favoriteCmd.AddCommand(favoriteToggleCmd)
	favoriteCmd.AddCommand(favoriteCheckCmd)
}
