package main

import (
	"context"
	"log"

	"github.com/fadilmartias/talent-match/internal/bootstrap"
	applogger "github.com/fadilmartias/talent-match/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const app = "matchctl"

var rootCmd = &cobra.Command{
	Use:           app,
	Short:         "matchctl maintains embeddings and inspects rankings of the matching engine",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().Bool("migrate", false, "run database migrations before the command")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("migrate", rootCmd.PersistentFlags().Lookup("migrate"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}
	viper.SetEnvPrefix(app)
	viper.AutomaticEnv()
}

// setup builds the logger and the service graph for a command.
func setup(ctx context.Context) (*zap.Logger, *bootstrap.Container, error) {
	logger, err := applogger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, nil, err
	}
	deps, err := bootstrap.New(ctx, logger, viper.GetBool("migrate"))
	if err != nil {
		return nil, nil, err
	}
	return logger, deps, nil
}
