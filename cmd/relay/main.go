package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"relaychat/internal/app"
	"relaychat/internal/config"
)

var version = "0.1.0"

var (
	configFile string
	addr       string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "relay",
		Short:        "Run the relaychat message relay",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger := app.NewLogger(cfg.Log, os.Stdout)
			slog.SetDefault(logger)

			logger.Info("relay_starting",
				slog.String("version", version),
				slog.String("addr", cfg.Server.Addr),
				slog.Bool("websocket_enabled", cfg.WebSocket.Enabled),
				slog.Bool("webhook_enabled", cfg.Webhook.Enabled),
				slog.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
				slog.Bool("metrics_enabled", cfg.Metrics.Enabled))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := app.NewServer(ctx, cfg, version, logger)
			if err != nil {
				return fmt.Errorf("build relay: %w", err)
			}
			if err := srv.Run(ctx); err != nil {
				logger.Error("relay_failed", slog.String("error", err.Error()))
				return err
			}
			logger.Info("relay_stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "path to YAML configuration file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
