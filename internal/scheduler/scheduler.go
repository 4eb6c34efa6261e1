// Package scheduler triggers crawls on a cron schedule through the crawl
// manager, so scheduled and admin-started crawls share the single-crawl
// guard.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/openengine/openengine/internal/crawler"
	"github.com/openengine/openengine/internal/logger"
)

// Starter is the subset of the crawl manager the scheduler needs.
type Starter interface {
	Start(ctx context.Context, opts crawler.Options) error
}

// Scheduler runs crawls on a cron expression.
type Scheduler struct {
	cron *cron.Cron
	log  logger.Interface
}

// New registers a crawl job on the given schedule. An empty expression is a
// configuration error; callers skip construction instead.
func New(schedule string, starter Starter, opts crawler.Options, log logger.Interface) (*Scheduler, error) {
	log = log.WithComponent("scheduler")
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		err := starter.Start(context.Background(), opts)
		switch {
		case errors.Is(err, crawler.ErrCrawlRunning):
			log.Info("Scheduled crawl skipped, one is already running")
		case err != nil:
			log.Error("Scheduled crawl failed to start", "error", err)
		default:
			log.Info("Scheduled crawl started", "schedule", schedule)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid crawl schedule %q: %w", schedule, err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

// Start begins firing the schedule.
func (s *Scheduler) Start() {
	s.log.Info("Crawl scheduler started")
	s.cron.Start()
}

// Stop halts the schedule and waits for a running trigger callback.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Crawl scheduler stopped")
}
