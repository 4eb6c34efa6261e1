package crawler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openengine/openengine/internal/crawler"
)

func TestController_StartsRunning(t *testing.T) {
	ctrl := crawler.NewController()

	assert.Equal(t, crawler.StateRunning, ctrl.State())
	assert.Equal(t, crawler.StateRunning, ctrl.Check())
}

func TestController_TogglePauseFlips(t *testing.T) {
	ctrl := crawler.NewController()

	assert.Equal(t, crawler.StatePaused, ctrl.TogglePause())
	assert.Equal(t, crawler.StatePaused, ctrl.State())

	assert.Equal(t, crawler.StateRunning, ctrl.TogglePause())
	assert.Equal(t, crawler.StateRunning, ctrl.State())
}

func TestController_DoubleToggleNetsOut(t *testing.T) {
	ctrl := crawler.NewController()

	// Two flips with no worker observing either must leave the crawl
	// running, not stuck paused.
	ctrl.TogglePause()
	ctrl.TogglePause()

	assert.Equal(t, crawler.StateRunning, ctrl.State())
}

func TestController_AwaitResumeBlocksWhilePaused(t *testing.T) {
	ctrl := crawler.NewController()
	ctrl.TogglePause()

	resumed := make(chan crawler.State, 1)
	go func() {
		resumed <- ctrl.AwaitResume()
	}()

	select {
	case <-resumed:
		t.Fatal("AwaitResume returned while still paused")
	case <-time.After(50 * time.Millisecond):
	}

	ctrl.TogglePause()

	select {
	case state := <-resumed:
		assert.Equal(t, crawler.StateRunning, state)
	case <-time.After(time.Second):
		t.Fatal("AwaitResume did not wake on resume")
	}
}

func TestController_StopWakesPausedWaiter(t *testing.T) {
	ctrl := crawler.NewController()
	ctrl.TogglePause()

	resumed := make(chan crawler.State, 1)
	go func() {
		resumed <- ctrl.AwaitResume()
	}()

	time.Sleep(20 * time.Millisecond)
	ctrl.Stop()

	select {
	case state := <-resumed:
		assert.Equal(t, crawler.StateEnded, state)
	case <-time.After(time.Second):
		t.Fatal("AwaitResume did not wake on Stop")
	}
}

func TestController_StopIsTerminalAndIdempotent(t *testing.T) {
	ctrl := crawler.NewController()

	ctrl.Stop()
	require.Equal(t, crawler.StateEnded, ctrl.State())

	// A second Stop must not panic on the closed done channel.
	ctrl.Stop()

	// Toggle after End is a no-op.
	assert.Equal(t, crawler.StateEnded, ctrl.TogglePause())
	assert.Equal(t, crawler.StateEnded, ctrl.State())

	select {
	case <-ctrl.Done():
	default:
		t.Fatal("Done channel not closed after Stop")
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "running", crawler.StateRunning.String())
	assert.Equal(t, "paused", crawler.StatePaused.String())
	assert.Equal(t, "ended", crawler.StateEnded.String())
}
