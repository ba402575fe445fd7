package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/peerrent/rental-system/internal/api"
	"github.com/peerrent/rental-system/internal/infrastructure/config"
	mongodb "github.com/peerrent/rental-system/internal/infrastructure/db/mongo"
	redisdb "github.com/peerrent/rental-system/internal/infrastructure/db/redis"
	"github.com/peerrent/rental-system/internal/infrastructure/payment"
	"github.com/peerrent/rental-system/internal/realtime"
	"github.com/peerrent/rental-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the marketplace API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		log := logger.Init(logger.Options{
			Level:  cfg.LogLevel,
			Pretty: cfg.Env != "production",
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = mongoClient.Disconnect(disconnectCtx)
		}()

		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()

		bus := redisdb.NewRoomBus(rdb, log)
		hub := realtime.NewHub(bus, log)
		go hub.Run(ctx)

		payments := payment.NewStripeProcessor(cfg.StripeSecret)

		e := api.NewRouter(db, rdb, hub, payments, api.RouterConfig{
			JWTSecret:      cfg.JWTSecret,
			FrontendOrigin: cfg.FrontendOrigin,
		})

		go func() {
			addr := ":" + cfg.Port
			log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
			if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("server stopped")
				stop()
			}
		}()

		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "graceful shutdown failed: %v\n", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
