package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codecollab/codecollab-server/internal/app"
	"github.com/codecollab/codecollab-server/internal/config"
	"github.com/codecollab/codecollab-server/internal/log"
)

var (
	flagConfig   string
	flagAddr     string
	flagLogLevel string
	flagDBPath   string
)

func main() {
	root := &cobra.Command{
		Use:           "codecollab-server",
		Short:         "Real-time collaborative code editor backend",
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().StringVar(&flagConfig, "config", "", "path to config file")
	root.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address (overrides config)")
	root.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	root.Flags().StringVar(&flagDBPath, "db", "", "path to the SQLite database file (overrides config)")

	if err := root.Execute(); err != nil {
		bootLog := log.New("error")
		bootLog.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(_ *cobra.Command, _ []string) error {
	bootLog := log.New("info")

	cfg, configPath, err := config.Load(bootLog, flagConfig)
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagDBPath != "" {
		cfg.DatabasePath = flagDBPath
	}

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", configPath).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, &cfg, logger)
	if err != nil {
		return err
	}

	if err := application.Run(ctx); err != nil {
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
