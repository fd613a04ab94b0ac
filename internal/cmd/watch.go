package cmd

import (
	"github.com/William2207/uteshop/cli/pkg/service"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream cart, order and points updates",
	Long:  "Connect to the realtime endpoint and print cart changes, order status updates and point balance changes until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewWatchService(rt).Watch(cmd.Context())
	},
}
