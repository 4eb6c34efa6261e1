package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openengine/openengine/internal/crawler"
	"github.com/openengine/openengine/internal/logger"
	"github.com/openengine/openengine/internal/scheduler"
)

type countingStarter struct {
	calls atomic.Int64
	err   error
}

func (s *countingStarter) Start(context.Context, crawler.Options) error {
	s.calls.Add(1)
	return s.err
}

func TestNew_InvalidSchedule(t *testing.T) {
	_, err := scheduler.New("not a cron expr", &countingStarter{}, crawler.Options{}, logger.NewNoOp())
	assert.ErrorContains(t, err, "invalid crawl schedule")
}

func TestScheduler_TriggersCrawls(t *testing.T) {
	starter := &countingStarter{}
	s, err := scheduler.New("@every 50ms", starter, crawler.Options{}, logger.NewNoOp())
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return starter.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_SkipsWhileCrawlRunning(t *testing.T) {
	// ErrCrawlRunning from the manager is an expected outcome, not a
	// failure; the scheduler keeps firing.
	starter := &countingStarter{err: crawler.ErrCrawlRunning}
	s, err := scheduler.New("@every 50ms", starter, crawler.Options{}, logger.NewNoOp())
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return starter.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}
