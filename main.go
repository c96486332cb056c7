package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sirjanpreet/portfolio/internal/admin"
	"github.com/sirjanpreet/portfolio/internal/config"
	"github.com/sirjanpreet/portfolio/internal/content"
	"github.com/sirjanpreet/portfolio/internal/relay"
	"github.com/sirjanpreet/portfolio/internal/server"
	"github.com/sirjanpreet/portfolio/internal/visitors"
)

var (
	verbose bool
	logger  *zap.Logger
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:           "portfolio",
	Short:         "Personal portfolio site",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		if logger, err = zcfg.Build(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if cfg, err = config.Load(); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete visitor records older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := visitors.Open(cmd.Context(), cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Cleanup(cmd.Context(), cfg.VisitorRetention)
		if err != nil {
			return err
		}
		logger.Info("privacy cleanup", zap.Int64("removed", n), zap.Duration("retention", cfg.VisitorRetention))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print visitor statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := visitors.Open(cmd.Context(), cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context(), 20)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func runServe(ctx context.Context) error {
	site, err := content.LoadFile(cfg.ContentPath)
	if err != nil {
		return err
	}
	r, err := relay.New(cfg.Relay, logger)
	if err != nil {
		return err
	}

	opts := server.Options{
		Site:       site,
		Relay:      r,
		Logger:     logger,
		RolePeriod: cfg.RolePeriod,
		SessionTTL: cfg.SessionTTL,
		Retention:  cfg.VisitorRetention,
	}

	if cfg.TrackVisitors {
		store, err := visitors.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if n, err := store.Cleanup(ctx, cfg.VisitorRetention); err != nil {
			logger.Warn("privacy cleanup failed", zap.Error(err))
		} else if n > 0 {
			logger.Info("privacy cleanup", zap.Int64("removed", n))
		}

		h, err := admin.New(store, admin.Credentials(cfg.Admin), cfg.VisitorRetention, logger)
		switch {
		case errors.Is(err, admin.ErrNoCredentials):
			logger.Warn("admin dashboard disabled", zap.Error(err))
		case err != nil:
			return err
		default:
			opts.Admin = h
		}
		opts.Visitors = store
		logger.Info("visitor tracking enabled with hashed IP addresses")
	}

	srv, err := server.New(opts)
	if err != nil {
		return err
	}
	return srv.Run(ctx, ":"+cfg.Port, cfg.ShutdownTimeout)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, cleanupCmd, statsCmd)
}

func main() {
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
