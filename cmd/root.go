package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cartCmd "github.com/Alturino/spices/cart/cmd"
	"github.com/Alturino/spices/internal/config"
	"github.com/Alturino/spices/internal/constants"
	"github.com/Alturino/spices/internal/log"
)

func Start() {
	cfg := config.Get(context.Background(), constants.APP_CART_SERVICE)
	logger := log.Get(fmt.Sprintf("/var/log/%s.log", constants.APP_CART_SERVICE), cfg.Application).
		With().
		Str(constants.KEY_APP_NAME, constants.APP_MAIN_SPICES).
		Str(constants.KEY_TAG, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: "spices"}
	commands := []*cobra.Command{
		{
			Use:   "cart",
			Short: "Run cart service",
			Run: func(cmd *cobra.Command, args []string) {
				cartCmd.RunCartService(cmd.Context())
			},
		},
		{
			Use:   "migrate",
			Short: "Apply pending cart database migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return cartCmd.RunMigration(cmd.Context())
			},
		},
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
