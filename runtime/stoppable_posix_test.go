//go:build !windows

package runtime

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStopOnSignal(t *testing.T) {
	var s LifeCycleTracker
	stop := StopOnSignal(&s, syscall.SIGUSR1)
	defer stop()

	// Delivered to this process, which now handles SIGUSR1
	assert.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))
	select {
	case <-s.StoppingGracefully.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("expected StopGracefully on first signal")
	}
	assert.False(t, s.StoppingNow.IsDone())

	assert.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))
	select {
	case <-s.StoppingNow.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("expected StopNow on second signal")
	}
	stop()
}
