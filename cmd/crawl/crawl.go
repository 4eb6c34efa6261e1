// Package crawl implements the `openengine crawl` command: a one-shot
// foreground crawl run, useful for cron jobs and manual refreshes.
package crawl

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openengine/openengine/internal/config"
	"github.com/openengine/openengine/internal/crawler"
	"github.com/openengine/openengine/internal/database"
	"github.com/openengine/openengine/internal/embedder"
	"github.com/openengine/openengine/internal/logger"
	"github.com/openengine/openengine/internal/metrics"
	"github.com/openengine/openengine/internal/vector"
)

// Command returns the crawl command.
func Command() *cobra.Command {
	var (
		patterns      []string
		maxIterations int
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run a crawl in the foreground",
		Long: `Run one crawl in the foreground and exit when it finishes. The
crawl starts from the persisted seed sites plus any crawled URL due for a
revisit, and an interrupt ends it gracefully.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), patterns, maxIterations)
		},
	}

	cmd.Flags().StringArrayVar(&patterns, "regex", nil,
		"whitelist pattern scoping the crawl (repeatable; default: seed origins)")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", config.UnboundedIterations,
		"cap each worker's loop iterations (-1 for unbounded)")

	return cmd
}

func run(ctx context.Context, patterns []string, maxIterations int) error {
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

	m := metrics.New()
	orchestrator := crawler.NewOrchestrator(
		database.NewSeedRepository(db),
		database.NewResourceRepository(db),
		database.NewPotentialRepository(db),
		embedder.NewClient(cfg.Embedder),
		vectors, m, log)

	ctrl := crawler.NewController()
	messages := crawler.NewMessages(0)

	// First interrupt ends the crawl gracefully, a second one kills the
	// process the usual way.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("Received signal, ending crawl", "signal", sig.String())
		ctrl.Stop()
		signal.Stop(sigChan)
	}()

	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for {
			select {
			case msg := <-messages.C():
				log.Info(msg)
			case <-ctrl.Done():
				for _, msg := range messages.Drain() {
					log.Info(msg)
				}
				return
			}
		}
	}()

	err = orchestrator.Run(ctx, ctrl, messages, crawler.Options{
		Whitelist:      patterns,
		MaxIterations:  maxIterations,
		RevisitDelta:   cfg.Crawler.RevisitDelta,
		ParsedCapacity: cfg.Crawler.ParsedCapacity,
		FetchTimeout:   cfg.Crawler.FetchTimeout,
	})
	ctrl.Stop()
	<-drainDone

	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	return nil
}
