// Package httpd implements the `openengine httpd` command: the admin API
// daemon hosting crawl control, listings, search, and metrics.
package httpd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openengine/openengine/internal/api"
	"github.com/openengine/openengine/internal/auth"
	"github.com/openengine/openengine/internal/config"
	"github.com/openengine/openengine/internal/crawler"
	"github.com/openengine/openengine/internal/database"
	"github.com/openengine/openengine/internal/embedder"
	"github.com/openengine/openengine/internal/logger"
	"github.com/openengine/openengine/internal/metrics"
	"github.com/openengine/openengine/internal/scheduler"
	"github.com/openengine/openengine/internal/search"
	"github.com/openengine/openengine/internal/vector"
)

// shutdownTimeout bounds the graceful drain of in-flight requests.
const shutdownTimeout = 30 * time.Second

// Command returns the httpd command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Start the admin HTTP API server",
		Long: `Start the admin HTTP API server. It exposes the crawl lifecycle
controls, seed-site management, listings, public search, and metrics, and
runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
}

// run wires every component and serves until SIGINT or SIGTERM.
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

	vectors, err := vector.NewClient(cfg.Qdrant, cfg.Embedder.Dimension)
	if err != nil {
		return fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	defer vectors.Close()

	if err := vectors.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	emb := embedder.NewClient(cfg.Embedder)
	m := metrics.New()

	seedRepo := database.NewSeedRepository(db)
	resourceRepo := database.NewResourceRepository(db)
	potentialRepo := database.NewPotentialRepository(db)
	adminRepo := database.NewAdminRepository(db)

	orchestrator := crawler.NewOrchestrator(
		seedRepo, resourceRepo, potentialRepo, emb, vectors, m, log)
	manager := crawler.NewManager(orchestrator, m, log)

	jwtManager, err := auth.NewJWTManager(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create jwt manager: %w", err)
	}

	server := api.NewServer(api.Params{
		Config:     cfg,
		Logger:     log,
		Metrics:    m,
		JWTManager: jwtManager,
		Seeds:      seedRepo,
		Resources:  resourceRepo,
		Potentials: potentialRepo,
		Admins:     adminRepo,
		Crawls:     manager,
		Search:     search.NewService(emb, vectors),
	})

	if cfg.Crawler.Schedule != "" {
		sched, schedErr := scheduler.New(cfg.Crawler.Schedule, manager, crawler.Options{
			MaxIterations:  cfg.Crawler.MaxIterations,
			RevisitDelta:   cfg.Crawler.RevisitDelta,
			FetchTimeout:   cfg.Crawler.FetchTimeout,
			ParsedCapacity: cfg.Crawler.ParsedCapacity,
		}, log)
		if schedErr != nil {
			return schedErr
		}
		sched.Start()
		defer sched.Stop()
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig.String())
	}

	// Stop any active crawl before draining the server.
	_ = manager.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
