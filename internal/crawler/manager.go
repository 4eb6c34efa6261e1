package crawler

import (
	"context"
	"errors"
	"sync"

	"github.com/openengine/openengine/internal/logger"
	"github.com/openengine/openengine/internal/metrics"
)

// ErrCrawlRunning is returned by Start while a crawl is active.
var ErrCrawlRunning = errors.New("crawl already running")

// ErrNoCrawl is returned by Stop and TogglePause when no crawl is active.
var ErrNoCrawl = errors.New("no crawl running")

// Manager guards the single active crawl. The admin API and the cron
// scheduler both start crawls through it; lifecycle signals address
// whichever crawl is active.
type Manager struct {
	mu           sync.Mutex
	orchestrator *Orchestrator
	metrics      *metrics.Metrics
	log          logger.Interface
	ctrl         *Controller
	messages     *Messages
	drainDone    chan struct{}
}

// NewManager creates a manager around the given orchestrator.
func NewManager(o *Orchestrator, m *metrics.Metrics, log logger.Interface) *Manager {
	return &Manager{
		orchestrator: o,
		metrics:      m,
		log:          log.WithComponent("crawl-manager"),
	}
}

// Start launches a crawl in the background. Only one crawl may be active;
// a second Start returns ErrCrawlRunning.
func (m *Manager) Start(ctx context.Context, opts Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctrl != nil && m.ctrl.State() != StateEnded {
		return ErrCrawlRunning
	}

	ctrl := NewController()
	messages := NewMessages(0)
	drainDone := make(chan struct{})

	m.ctrl = ctrl
	m.messages = messages
	m.drainDone = drainDone

	go m.drain(messages, drainDone)
	go func() {
		if err := m.orchestrator.Run(ctx, ctrl, messages, opts); err != nil {
			m.log.Error("Crawl failed", "error", err)
		}
		// Both workers have exited; make the signals reflect that and
		// stop the message drain.
		ctrl.Stop()
		close(drainDone)
	}()

	m.log.Info("Crawl started",
		"max_iterations", opts.MaxIterations,
		"whitelist_patterns", len(opts.Whitelist))

	return nil
}

// drain moves worker status messages into the structured log until the
// crawl finishes.
func (m *Manager) drain(messages *Messages, done <-chan struct{}) {
	for {
		select {
		case msg := <-messages.C():
			m.log.Info(msg)
		case <-done:
			for _, msg := range messages.Drain() {
				m.log.Info(msg)
			}
			return
		}
	}
}

// Stop latches the End signal on the active crawl.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctrl == nil || m.ctrl.State() == StateEnded {
		return ErrNoCrawl
	}
	m.ctrl.Stop()
	return nil
}

// TogglePause flips the Pause signal on the active crawl and returns the
// resulting state.
func (m *Manager) TogglePause() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctrl == nil || m.ctrl.State() == StateEnded {
		return StateEnded, ErrNoCrawl
	}

	state := m.ctrl.TogglePause()
	switch state {
	case StatePaused:
		m.metrics.CrawlState.Set(metrics.StatePaused)
	case StateRunning:
		m.metrics.CrawlState.Set(metrics.StateRunning)
	case StateEnded:
	}

	return state, nil
}

// State reports the lifecycle state of the active crawl, or StateEnded when
// none is active.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctrl == nil {
		return StateEnded
	}
	return m.ctrl.State()
}
