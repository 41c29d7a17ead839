package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yash/laeportal/internal/config"
	"github.com/yash/laeportal/internal/logger"
	"github.com/yash/laeportal/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal HTTP server",
	Long: `Starts the HTTP API, the vehicle stream and the animation loop.
Configuration comes from the config file, then LAE_ environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
		if err != nil {
			return err
		}
		defer log.Sync()

		server.Version = Version

		app, err := NewApp(cfg, log)
		if err != nil {
			log.Error("startup failed", "error", err)
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads --config and applies --log-level on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}
