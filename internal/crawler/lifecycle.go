// Package crawler implements the crawl/index pipeline: the lifecycle
// controller, the Fetcher and Processor workers, the Orchestrator that wires
// them together, and the Manager that guards the single active crawl.
package crawler

import (
	"sync"
)

// State is the lifecycle state shared by both workers.
type State int

const (
	// StateRunning means workers proceed through their iterations.
	StateRunning State = iota
	// StatePaused means workers block at their next iteration boundary.
	StatePaused
	// StateEnded is terminal; workers exit at their next boundary.
	StateEnded
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Controller is the control plane of one crawl. The admin side flips it with
// TogglePause and latches it with Stop; each worker observes it at its own
// iteration boundary with Check and AwaitResume. A single mutex plus
// condition variable means two toggles in quick succession net out correctly
// even if no worker observed the first one.
type Controller struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state State
	done  chan struct{}
}

// NewController creates a controller in the Running state.
func NewController() *Controller {
	c := &Controller{done: make(chan struct{})}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Check is the non-blocking part of the iteration prologue.
func (c *Controller) Check() State {
	return c.State()
}

// AwaitResume blocks while the controller is Paused and returns the state
// that ended the wait: Running after a resume, Ended after Stop.
func (c *Controller) AwaitResume() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.state == StatePaused {
		c.cond.Wait()
	}
	return c.state
}

// TogglePause flips Running to Paused and Paused back to Running. It is the
// admin's single "flip" action. After End it does nothing and returns
// StateEnded.
func (c *Controller) TogglePause() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateRunning:
		c.state = StatePaused
	case StatePaused:
		c.state = StateRunning
		c.cond.Broadcast()
	case StateEnded:
	}

	return c.state
}

// Stop latches the Ended state and wakes every waiter, including workers
// blocked in AwaitResume and dequeues watching Done. Idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateEnded {
		return
	}
	c.state = StateEnded
	c.cond.Broadcast()
	close(c.done)
}

// Done returns a channel closed when the crawl ends. Queue dequeues select
// on it so Stop wakes blocked workers.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}
