package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/William2207/uteshop/cli/pkg/config"
	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/output"
	"github.com/William2207/uteshop/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "uteshop",
	Short: "UTEShop CLI - shop the UTEShop storefront from your terminal",
	Long: `UTEShop CLI is a command-line client for the UTEShop storefront.
Browse products, keep your cart in sync, check out, track orders
and manage loyalty points without leaving the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}

		logger.Init(verbose)

		if !output.ValidateOutputFormat(outputFmt) {
			return clierrors.ValidationError("--output", "must be text, json or table")
		}
		return config.SetString("output.format", outputFmt)
	},
}

// Execute runs the root command until it returns or the user interrupts it
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprint(os.Stderr, clierrors.FormatError(err))
		stop()
		os.Exit(1)
	}
}

// loadRuntime returns the process runtime built from the loaded config
func loadRuntime() (*service.Runtime, error) {
	return service.Default()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/uteshop/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(voucherCmd)
	rootCmd.AddCommand(pointsCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}
