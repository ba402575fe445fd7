package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/peerrent/rental-system/internal/infrastructure/config"
	mongodb "github.com/peerrent/rental-system/internal/infrastructure/db/mongo"
)

// indexable is what every Mongo repository exposes for index creation.
type indexable interface {
	EnsureIndexes(ctx context.Context) error
}

// ensureIndexesCmd creates all MongoDB indexes the repositories rely on,
// including the unique per-day booking lock index. Run it once per
// environment before serving traffic.
var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the MongoDB indexes the service depends on",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer func() { _ = client.Disconnect(ctx) }()

		repos := map[string]indexable{
			"users":    mongodb.NewUserRepository(db),
			"items":    mongodb.NewItemRepository(db),
			"bookings": mongodb.NewBookingRepository(db),
			"reviews":  mongodb.NewReviewRepository(db),
		}
		for name, repo := range repos {
			if err := repo.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensure %s indexes: %w", name, err)
			}
			fmt.Printf("indexes ensured: %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ensureIndexesCmd)
}
