package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ametelkin/onair-server/internal/app"
	"github.com/ametelkin/onair-server/internal/config"
	"github.com/ametelkin/onair-server/internal/log"
)

var (
	flagConfig   string
	flagAddr     string
	flagLogLevel string
)

func main() {
	root := &cobra.Command{
		Use:           "onair-server",
		Short:         "Signaling server for a live call-in broadcast",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the signaling server",
		RunE:  runServe,
	}
	serve.Flags().StringVar(&flagConfig, "config", "", "path to config file")
	serve.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address (overrides config)")
	serve.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides config)")

	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	bootLogger := log.New("info")

	cfg, configPath, err := config.Load(bootLogger, flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", configPath).Str("addr", cfg.Addr).Msg("starting onair server")

	application, err := app.New(&cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
