package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devkumarp/portfolio/internal/logging"
	"github.com/devkumarp/portfolio/internal/profile"
	"github.com/devkumarp/portfolio/internal/visits"
	"github.com/devkumarp/portfolio/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portfolio web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		gin.SetMode(cfg.Mode)

		logger, err := logging.New(cfg.LogLevel, cfg.Mode == gin.DebugMode)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer logger.Sync()

		prof, err := profile.Load(cfg.ProfilePath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps := web.Deps{Config: cfg, Profile: prof, Logger: logger}
		if cfg.Tracking.Enabled {
			store, err := visits.Open(cfg.Tracking.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()
			deps.Visits = store

			go store.RunRetention(ctx, cfg.Tracking.Retention, 24*time.Hour,
				func(err error) { logger.Warn("visit retention failed", zap.Error(err)) },
				func(n int64) { logger.Info("expired visits removed", zap.Int64("count", n)) },
			)
		}

		srv, err := web.New(deps)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides the config")
	rootCmd.AddCommand(serveCmd)
}
