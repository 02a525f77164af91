package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	checkoutCmd "github.com/kirananta/storefront/checkout/cmd"
	"github.com/kirananta/storefront/internal/constants"
	"github.com/kirananta/storefront/internal/log"
	shiprocketCmd "github.com/kirananta/storefront/shiprocket/cmd"
)

func Start() {
	logger := log.InitLogger("/var/log/storefront.log").
		With().
		Str(log.KeyAppName, constants.AppStorefront).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: "storefront"}
	commands := []*cobra.Command{
		{
			Use:   "checkout",
			Short: "Run checkout service",
			Run: func(cmd *cobra.Command, args []string) {
				checkoutCmd.RunCheckoutService(cmd.Context())
			},
		},
		{
			Use:   "shipping",
			Short: "Run shipping service",
			Run: func(cmd *cobra.Command, args []string) {
				shiprocketCmd.RunShippingService(cmd.Context())
			},
		},
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
