// Package setup implements the `openengine setup` command: idempotent
// provisioning of the Postgres schema and the qdrant collection.
package setup

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openengine/openengine/internal/config"
	"github.com/openengine/openengine/internal/database"
	"github.com/openengine/openengine/internal/logger"
	"github.com/openengine/openengine/internal/vector"
)

// Command returns the setup command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Provision Postgres tables and the qdrant collection",
		Long: `Setup creates the Postgres tables and the qdrant embedding collection
if they do not exist yet. It is safe to run repeatedly; existing objects
are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:       cfg.Logger.Level,
		Development: cfg.Logger.Development,
		Encoding:    cfg.Logger.Encoding,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.NewPostgresConnection(cfg.Postgres)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	log.Info("Postgres schema ready", "database", cfg.Postgres.DBName)

	vectors, err := vector.NewClient(cfg.Qdrant, cfg.Embedder.Dimension)
	if err != nil {
		return fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	defer vectors.Close()

	if err := vectors.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	log.Info("Qdrant collection ready",
		"collection", cfg.Qdrant.Collection,
		"dimension", cfg.Embedder.Dimension)

	return nil
}
